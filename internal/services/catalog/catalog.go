// Package catalog реализует витрину магазина для покупателей: списки и
// карточки товаров, файлов, подписок и магазинов в сокращённых проекциях.
//
// Служебные поля записей наружу не отдаются. Карточка файла содержит либо
// ссылку на скачивание, либо текст отказа — решение принимает entitlement.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/digital-store/internal/cache"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/services/entitlement"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные витрине.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetCartByUser(ctx context.Context, userUID string) (*models.Cart, error)

	ListAllProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	ListFilesByProduct(ctx context.Context, productID int) ([]*models.File, error)

	ListAllFiles(ctx context.Context, limit, offset int) ([]*models.File, error)
	ReadFile(ctx context.Context, id int) (*models.File, error)

	ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	ReadSubscriptionByStore(ctx context.Context, storeID int) (*models.Subscription, error)

	ListStores(ctx context.Context, limit, offset int) ([]*models.Store, error)
	GetStore(ctx context.Context, id int) (*models.Store, error)
	ListProductsByStore(ctx context.Context, storeID, limit, offset int) ([]*models.Product, error)
}

// MediaURL строит публичную ссылку на содержимое файла.
type MediaURL interface {
	URL(path string) string
}

// Cache описывает методы кеширования карточек витрины.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service реализует операции витрины.
type Service struct {
	repo    Repository
	media   MediaURL
	cache   Cache
	baseURL string
	log     *slog.Logger
	now     func() time.Time
}

// New создает новый экземпляр Service. baseURL используется для построения
// абсолютных ссылок каталога и скачивания.
func New(repo Repository, mediaURL MediaURL, c Cache, baseURL string, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		media:   mediaURL,
		cache:   c,
		baseURL: baseURL,
		log:     log,
		now:     time.Now,
	}
}

// ProductListItem — строка списка товаров.
type ProductListItem struct {
	URL    string `json:"url"`
	Name   string `json:"product_name"`
	IsFree bool   `json:"is_free"`
}

// ProductDetail — карточка товара.
type ProductDetail struct {
	Name       string   `json:"product_name"`
	Price      *int     `json:"product_price"`
	Categories []string `json:"product_category"`
	FileURLs   []string `json:"file_products"`
}

// FileListItem — строка списка файлов.
type FileListItem struct {
	URL    string  `json:"url"`
	Name   *string `json:"file_name"`
	IsFree bool    `json:"is_free"`
}

// FileDetail — карточка файла. FileData содержит либо абсолютную ссылку
// на скачивание, либо текст отказа.
type FileDetail struct {
	Name     *string `json:"file_name"`
	FileData string  `json:"file_data"`
	Price    *int    `json:"file_price"`
}

// SubscriptionListItem — строка списка подписок.
type SubscriptionListItem struct {
	URL      string `json:"url"`
	StoreURL string `json:"store_subscription"`
}

// SubscriptionDetail — карточка подписки.
type SubscriptionDetail struct {
	Amount     int    `json:"amount"`
	ExpiryDate string `json:"expiry_date"` // Окно действия, например "3 day"
}

// StoreDetail — карточка магазина: владелец и ссылки на товары и подписку.
type StoreDetail struct {
	ProductURLs     []string `json:"products_store"`
	SubscriptionURL *string  `json:"subscription"`
	Owner           string   `json:"owner"`
}

// CartView — корзина пользователя в ответе витрины.
type CartView struct {
	ProductIDs    []int              `json:"bought_products"`
	FileIDs       []int              `json:"bought_files"`
	Subscriptions []CartSubscription `json:"bought_subscriptions"`
}

// CartSubscription — подписка корзины с собственной отметкой времени покупки.
type CartSubscription struct {
	SubscriptionID int       `json:"subscription_id"`
	PurchasedAt    time.Time `json:"date_of_buying"`
}

func (s *Service) productURL(id int) string {
	return fmt.Sprintf("%s/api/v1/catalog/products/%d", s.baseURL, id)
}

func (s *Service) fileURL(id int) string {
	return fmt.Sprintf("%s/api/v1/catalog/files/%d", s.baseURL, id)
}

func (s *Service) subscriptionURL(id int) string {
	return fmt.Sprintf("%s/api/v1/catalog/subscriptions/%d", s.baseURL, id)
}

func (s *Service) storeURL(id int) string {
	return fmt.Sprintf("%s/api/v1/catalog/stores/%d", s.baseURL, id)
}

// ListProducts возвращает список товаров для покупателей.
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]ProductListItem, error) {
	const op = "catalog.ListProducts"
	products, err := s.repo.ListAllProducts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		result = append(result, ProductListItem{
			URL:    s.productURL(p.ID),
			Name:   p.Name,
			IsFree: p.IsFree,
		})
	}
	return result, nil
}

// ProductDetail возвращает карточку товара, используя кеш.
func (s *Service) ProductDetail(ctx context.Context, id int) (*ProductDetail, error) {
	const op = "catalog.ProductDetail"

	key := cache.ProductKey(id)
	var cached ProductDetail
	if found, err := s.cacheGet(key, &cached); err == nil && found {
		return &cached, nil
	}

	product, err := s.repo.ReadProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	files, err := s.repo.ListFilesByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	detail := &ProductDetail{
		Name:       product.Name,
		Price:      product.Price,
		Categories: product.Categories,
		FileURLs:   make([]string, 0, len(files)),
	}
	for _, f := range files {
		detail.FileURLs = append(detail.FileURLs, s.fileURL(f.ID))
	}
	s.cacheSet(key, detail)
	return detail, nil
}

// ListFiles возвращает список файлов для покупателей.
func (s *Service) ListFiles(ctx context.Context, limit, offset int) ([]FileListItem, error) {
	const op = "catalog.ListFiles"
	files, err := s.repo.ListAllFiles(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]FileListItem, 0, len(files))
	for _, f := range files {
		result = append(result, FileListItem{
			URL:    s.fileURL(f.ID),
			Name:   f.Name,
			IsFree: f.IsFree,
		})
	}
	return result, nil
}

// FileDetail возвращает карточку файла с решением о выдаче ссылки.
// Карточка зависит от запрашивающего пользователя и не кешируется.
func (s *Service) FileDetail(ctx context.Context, username string, id int) (*FileDetail, error) {
	const op = "catalog.FileDetail"

	file, err := s.repo.ReadFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	product, err := s.repo.ReadProduct(ctx, file.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	store, err := s.repo.GetStore(ctx, product.StoreID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.repo.GetCartByUser(ctx, user.UID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fileData := entitlement.DenialMessage
	allowed := entitlement.Allowed(entitlement.Request{
		RequesterUID:  user.UID,
		StoreOwnerUID: store.OwnerUID,
		StoreID:       store.ID,
		File:          *file,
		Cart:          cart,
		Now:           s.now(),
	})
	if allowed {
		fileData = s.baseURL + s.media.URL(file.Path)
	}

	return &FileDetail{
		Name:     file.Name,
		FileData: fileData,
		Price:    file.Price,
	}, nil
}

// ListSubscriptions возвращает список подписок для покупателей.
func (s *Service) ListSubscriptions(ctx context.Context, limit, offset int) ([]SubscriptionListItem, error) {
	const op = "catalog.ListSubscriptions"
	subs, err := s.repo.ListAllSubscriptions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]SubscriptionListItem, 0, len(subs))
	for _, sub := range subs {
		result = append(result, SubscriptionListItem{
			URL:      s.subscriptionURL(sub.ID),
			StoreURL: s.storeURL(sub.StoreID),
		})
	}
	return result, nil
}

// SubscriptionDetail возвращает карточку подписки, используя кеш.
func (s *Service) SubscriptionDetail(ctx context.Context, id int) (*SubscriptionDetail, error) {
	const op = "catalog.SubscriptionDetail"

	key := cache.SubscriptionKey(id)
	var cached SubscriptionDetail
	if found, err := s.cacheGet(key, &cached); err == nil && found {
		return &cached, nil
	}

	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	detail := &SubscriptionDetail{
		Amount:     sub.Amount,
		ExpiryDate: sub.ExpiryString(),
	}
	s.cacheSet(key, detail)
	return detail, nil
}

// ListStores возвращает карточки всех магазинов.
func (s *Service) ListStores(ctx context.Context, limit, offset int) ([]StoreDetail, error) {
	const op = "catalog.ListStores"
	stores, err := s.repo.ListStores(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]StoreDetail, 0, len(stores))
	for _, store := range stores {
		detail, err := s.storeDetail(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *detail)
	}
	return result, nil
}

// StoreDetail возвращает карточку магазина.
func (s *Service) StoreDetail(ctx context.Context, id int) (*StoreDetail, error) {
	const op = "catalog.StoreDetail"
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	detail, err := s.storeDetail(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return detail, nil
}

func (s *Service) storeDetail(ctx context.Context, store *models.Store) (*StoreDetail, error) {
	products, err := s.repo.ListProductsByStore(ctx, store.ID, 100, 0)
	if err != nil {
		return nil, err
	}
	detail := &StoreDetail{
		ProductURLs: make([]string, 0, len(products)),
		Owner:       store.OwnerUsername,
	}
	for _, p := range products {
		detail.ProductURLs = append(detail.ProductURLs, s.productURL(p.ID))
	}

	sub, err := s.repo.ReadSubscriptionByStore(ctx, store.ID)
	if err == nil {
		url := s.subscriptionURL(sub.ID)
		detail.SubscriptionURL = &url
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return detail, nil
}

// Cart возвращает корзину запрашивающего пользователя.
// Отсутствующая корзина отдаётся как пустая.
func (s *Service) Cart(ctx context.Context, username string) (*CartView, error) {
	const op = "catalog.Cart"
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := &CartView{
		ProductIDs:    []int{},
		FileIDs:       []int{},
		Subscriptions: []CartSubscription{},
	}
	cart, err := s.repo.GetCartByUser(ctx, user.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for id := range cart.ProductIDs {
		view.ProductIDs = append(view.ProductIDs, id)
	}
	for id := range cart.FileIDs {
		view.FileIDs = append(view.FileIDs, id)
	}
	sort.Ints(view.ProductIDs)
	sort.Ints(view.FileIDs)
	for _, ps := range cart.Subscriptions {
		view.Subscriptions = append(view.Subscriptions, CartSubscription{
			SubscriptionID: ps.ID,
			PurchasedAt:    ps.PurchasedAt,
		})
	}
	return view, nil
}

func (s *Service) cacheGet(key string, result any) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	found, err := s.cache.Get(key, result)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
		return false, err
	}
	return found, nil
}

func (s *Service) cacheSet(key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, value, time.Hour); err != nil {
		s.log.Warn("failed to cache catalog detail", slog.String("key", key), sl.Err(err))
	}
}
