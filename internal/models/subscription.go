package models

import (
	"fmt"
	"time"
)

// Единицы измерения окна действия подписки.
const (
	ExpiryUnitDay  = "day"
	ExpiryUnitHour = "hour"
)

// Subscription представляет подписку магазина: за Amount покупатель получает
// доступ ко всем файлам магазина на окно ExpiryAmount единиц ExpiryUnit.
// У магазина может быть не более одной подписки.
type Subscription struct {
	ID           int
	Amount       int    // Цена подписки
	ExpiryAmount int    // Длина окна действия
	ExpiryUnit   string // "day" или "hour"
	StoreID      int
	CreatedDate  time.Time
	UpdatedDate  time.Time
}

// ExpiryWindow возвращает окно действия подписки как time.Duration.
func (s Subscription) ExpiryWindow() time.Duration {
	if s.ExpiryUnit == ExpiryUnitHour {
		return time.Duration(s.ExpiryAmount) * time.Hour
	}
	return time.Duration(s.ExpiryAmount) * 24 * time.Hour
}

// ExpiryString возвращает окно действия в виде строки, например "3 day".
func (s Subscription) ExpiryString() string {
	return fmt.Sprintf("%d %s", s.ExpiryAmount, s.ExpiryUnit)
}
