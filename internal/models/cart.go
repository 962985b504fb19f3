package models

import "time"

// PurchasedSubscription — подписка в корзине вместе с отметкой времени её покупки.
// Отметка своя у каждой подписки, повторная покупка после истечения её обновляет.
type PurchasedSubscription struct {
	Subscription
	PurchasedAt time.Time
}

// Cart представляет корзину пользователя. Создаётся лениво при первой покупке.
// Наборы купленных ID хранятся как множества: повторная покупка не добавляет дубликат.
type Cart struct {
	ID            int
	UserUID       string
	ProductIDs    map[int]struct{} // Купленные товары
	FileIDs       map[int]struct{} // Купленные файлы
	Subscriptions []PurchasedSubscription
	CreatedDate   time.Time
	UpdatedDate   time.Time
}

// HasProduct сообщает, куплен ли товар с данным ID.
func (c *Cart) HasProduct(id int) bool {
	if c == nil || c.ProductIDs == nil {
		return false
	}
	_, ok := c.ProductIDs[id]
	return ok
}

// HasFile сообщает, куплен ли файл с данным ID.
func (c *Cart) HasFile(id int) bool {
	if c == nil || c.FileIDs == nil {
		return false
	}
	_, ok := c.FileIDs[id]
	return ok
}

// FindSubscription возвращает купленную подписку указанного магазина.
func (c *Cart) FindSubscription(storeID int) (PurchasedSubscription, bool) {
	if c == nil {
		return PurchasedSubscription{}, false
	}
	for _, ps := range c.Subscriptions {
		if ps.StoreID == storeID {
			return ps, true
		}
	}
	return PurchasedSubscription{}, false
}
