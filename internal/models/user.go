// Package models содержит доменные структуры магазина цифровых товаров:
// пользователей, магазины, товары, файлы, подписки и корзины.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	CreatedDate  time.Time // Дата создания записи
	UpdatedDate  time.Time // Дата последнего обновления
}

// Profile хранит дополнительные сведения о пользователе.
// Флаг IsOwner открывает доступ к управлению магазином.
type Profile struct {
	ID          int
	UserUID     string
	IsOwner     bool
	PhoneNumber *string // Телефон, может отсутствовать
	CreatedDate time.Time
	UpdatedDate time.Time
}
