// Package entitlement реализует чистые функции авторизации скачивания файлов.
//
// Решение принимается по владельцу магазина, флагу бесплатности файла
// и содержимому корзины покупателя: купленный товар, купленный файл
// или действующая подписка магазина дают доступ к ссылке на скачивание.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// DenialMessage возвращается покупателю вместо ссылки, когда доступ не разрешён.
const DenialMessage = "to download this file, you should first pay for this file or buy its product"

// SubscriptionActive сообщает, действует ли купленная подписка в момент now.
// Окно действия полуоткрытое: [purchased_at, purchased_at+window).
func SubscriptionActive(ps models.PurchasedSubscription, now time.Time) bool {
	expiry := ps.PurchasedAt.Add(ps.ExpiryWindow())
	return now.UTC().Before(expiry.UTC())
}

// Request описывает входные данные решения о выдаче ссылки.
type Request struct {
	RequesterUID  string       // UID запрашивающего пользователя
	StoreOwnerUID string       // UID владельца магазина файла
	StoreID       int          // Магазин, которому принадлежит файл
	File          models.File  // Запрошенный файл
	Cart          *models.Cart // Корзина покупателя, nil если корзины нет
	Now           time.Time
}

// Allowed решает, может ли пользователь скачать файл.
//
// Владелец магазина и бесплатные файлы разрешены всегда. Иначе доступ даёт
// купленный родительский товар, купленный файл или действующая подписка
// магазина. Пустая и отсутствующая корзина трактуются одинаково.
func Allowed(req Request) bool {
	if req.RequesterUID == req.StoreOwnerUID || req.File.IsFree {
		return true
	}
	if req.Cart == nil {
		return false
	}

	boughtProduct := req.Cart.HasProduct(req.File.ProductID)
	boughtFile := req.Cart.HasFile(req.File.ID)

	hasActiveSubscription := false
	if ps, ok := req.Cart.FindSubscription(req.StoreID); ok {
		hasActiveSubscription = SubscriptionActive(ps, req.Now)
	}

	return boughtProduct || boughtFile || hasActiveSubscription
}
