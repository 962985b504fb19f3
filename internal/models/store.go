package models

import "time"

// Store представляет магазин, принадлежащий ровно одному пользователю.
// Удаление пользователя каскадно удаляет магазин вместе с товарами и подпиской.
type Store struct {
	ID            int
	OwnerUID      string // UID пользователя-владельца
	OwnerUsername string // Имя владельца, заполняется при чтении
	CreatedDate   time.Time
	UpdatedDate   time.Time
}

// Категории товаров. Список фиксированный, записи создаются миграцией.
const (
	CategoryAthletic    = "athletic"
	CategoryEducational = "educational"
	CategoryScientific  = "scientific"
	CategoryPolitical   = "political"
	CategoryCultural    = "cultural"
	CategoryHistorical  = "historical"
)

// CategoryNames перечисляет допустимые имена категорий.
var CategoryNames = []string{
	CategoryAthletic,
	CategoryEducational,
	CategoryScientific,
	CategoryPolitical,
	CategoryCultural,
	CategoryHistorical,
}

// IsValidCategory сообщает, входит ли name в фиксированный набор категорий.
func IsValidCategory(name string) bool {
	for _, c := range CategoryNames {
		if c == name {
			return true
		}
	}
	return false
}
