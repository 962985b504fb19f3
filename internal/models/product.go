package models

import "time"

// Product представляет товар магазина. Цена может отсутствовать,
// если товар бесплатный — в этом случае она игнорируется бизнес-логикой.
type Product struct {
	ID          int
	Name        string
	Price       *int // Цена в минимальных единицах, nil для бесплатных товаров
	IsFree      bool
	StoreID     int
	Categories  []string // Имена категорий из фиксированного набора
	CreatedDate time.Time
	UpdatedDate time.Time
}

// File представляет загруженный файл, принадлежащий товару.
// Path хранит путь к содержимому в файловом хранилище.
type File struct {
	ID          int
	Name        *string // Имя, заданное владельцем; nil если использовано имя загруженного файла
	Path        string
	Price       *int
	IsFree      bool
	ProductID   int
	CreatedDate time.Time
	UpdatedDate time.Time
}
