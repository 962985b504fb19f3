// Package inventory реализует управление ассортиментом магазина владельцем:
// создание магазина, товары, загрузка файлов и подписка магазина.
//
// Все операции привязаны к магазину запрашивающего владельца: чужие записи
// не видны и возвращаются как отсутствующие, а не как отказ в доступе.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/magabrotheeeer/digital-store/internal/cache"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/storage/media"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Ошибки валидации загрузки файла.
var (
	// ErrNameHasExtension — имя файла не должно содержать расширение.
	ErrNameHasExtension = errors.New("you should not write the file format in the name field")
	// ErrPriceRequired — платному файлу нужна цена.
	ErrPriceRequired = errors.New("you should fill price or is_free field")
	// ErrBadExtension — расширение загружаемого файла не входит в допустимый список.
	ErrBadExtension = errors.New("file extension is not allowed")
)

// Repository определяет методы хранилища, нужные для управления ассортиментом.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateStore(ctx context.Context, ownerUID string) (int, error)
	GetStoreByOwner(ctx context.Context, ownerUID string) (*models.Store, error)

	CreateProduct(ctx context.Context, product models.Product) (int, error)
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	UpdateProduct(ctx context.Context, product models.Product, id int) (int, error)
	RemoveProduct(ctx context.Context, id int) (int, error)
	ListProductsByStore(ctx context.Context, storeID, limit, offset int) ([]*models.Product, error)

	CreateFile(ctx context.Context, file models.File) (int, error)
	ReadFile(ctx context.Context, id int) (*models.File, error)
	UpdateFile(ctx context.Context, file models.File, id int) (int, error)
	UpdateFilePath(ctx context.Context, id int, path string) error
	RemoveFile(ctx context.Context, id int) (int, error)
	ListFilesByStore(ctx context.Context, storeID, limit, offset int) ([]*models.File, error)
	ListFilesByProduct(ctx context.Context, productID int) ([]*models.File, error)

	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription, id int) (int, error)
	RemoveSubscription(ctx context.Context, id int) (int, error)
}

// MediaStore определяет файловое хранилище загружаемых файлов.
type MediaStore interface {
	Save(src io.Reader, originalName string) (string, error)
	Rename(path, newName string) (string, error)
	Remove(path string) error
}

// Cache описывает методы для инвалидирования кеша каталога.
type Cache interface {
	Invalidate(key string) error
}

// Service реализует операции владельца над ассортиментом магазина.
type Service struct {
	repo  Repository
	media MediaStore
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, mediaStore MediaStore, c Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		media: mediaStore,
		cache: c,
		log:   log,
	}
}

// ownStore возвращает магазин владельца по его username.
func (s *Service) ownStore(ctx context.Context, username string) (*models.Store, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.GetStoreByOwner(ctx, user.UID)
}

// CreateStore создаёт магазин для владельца. Повторный вызов возвращает ошибку
// уникальности: у пользователя может быть только один магазин.
func (s *Service) CreateStore(ctx context.Context, username string) (int, error) {
	const op = "inventory.CreateStore"
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateStore(ctx, user.UID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created store", slog.Int("id", id), slog.String("owner", username))
	return id, nil
}

// ProductInput — входные данные создания или обновления товара.
type ProductInput struct {
	Name       string
	Price      *int
	IsFree     bool
	Categories []string
}

// CreateProduct добавляет товар в магазин владельца и возвращает его ID.
func (s *Service) CreateProduct(ctx context.Context, username string, input ProductInput) (int, error) {
	const op = "inventory.CreateProduct"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, category := range input.Categories {
		if !models.IsValidCategory(category) {
			return 0, fmt.Errorf("%s: unknown category %q", op, category)
		}
	}

	product := models.Product{
		Name:       input.Name,
		Price:      input.Price,
		IsFree:     input.IsFree,
		StoreID:    store.ID,
		Categories: input.Categories,
	}
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created product", slog.Int("id", id))
	return id, nil
}

// ReadProduct возвращает товар владельца. Чужой товар отсутствует в выборке.
func (s *Service) ReadProduct(ctx context.Context, username string, id int) (*models.Product, error) {
	const op = "inventory.ReadProduct"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	product, err := s.repo.ReadProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if product.StoreID != store.ID {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return product, nil
}

// UpdateProduct обновляет товар владельца.
func (s *Service) UpdateProduct(ctx context.Context, username string, id int, input ProductInput) error {
	const op = "inventory.UpdateProduct"
	if _, err := s.ReadProduct(ctx, username, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, category := range input.Categories {
		if !models.IsValidCategory(category) {
			return fmt.Errorf("%s: unknown category %q", op, category)
		}
	}

	product := models.Product{
		Name:       input.Name,
		Price:      input.Price,
		IsFree:     input.IsFree,
		Categories: input.Categories,
	}
	if _, err := s.repo.UpdateProduct(ctx, product, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.ProductKey(id))
	return nil
}

// RemoveProduct удаляет товар владельца вместе с файлами.
// Содержимое файлов удаляется из файлового хранилища до удаления строк.
func (s *Service) RemoveProduct(ctx context.Context, username string, id int) error {
	const op = "inventory.RemoveProduct"
	if _, err := s.ReadProduct(ctx, username, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	files, err := s.repo.ListFilesByProduct(ctx, id)
	if err == nil {
		for _, f := range files {
			if err := s.media.Remove(f.Path); err != nil {
				s.log.Warn("failed to remove stored payload", sl.Err(err))
			}
		}
	}

	if _, err := s.repo.RemoveProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.ProductKey(id))
	return nil
}

// ListProducts возвращает товары магазина владельца с пагинацией.
func (s *Service) ListProducts(ctx context.Context, username string, limit, offset int) ([]*models.Product, error) {
	const op = "inventory.ListProducts"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	products, err := s.repo.ListProductsByStore(ctx, store.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *Service) invalidate(key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
	}
}

// normalizeUploadName проверяет явное имя файла и признак необходимости
// переименования сохранённого содержимого.
func normalizeUploadName(explicitName *string, originalFilename string) (name *string, shouldRename bool, err error) {
	if explicitName == nil || *explicitName == "" {
		derived := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
		return &derived, false, nil
	}
	if strings.Contains(*explicitName, ".") {
		return nil, false, ErrNameHasExtension
	}
	return explicitName, true, nil
}

// normalizePricing применяет правило бесплатности: бесплатный файл или файл
// бесплатного товара теряет цену и помечается бесплатным, платному файлу
// без цены отказывается с ErrPriceRequired.
func normalizePricing(price *int, isFree, productIsFree bool) (*int, bool, error) {
	if isFree || productIsFree {
		return nil, true, nil
	}
	if price == nil {
		return nil, false, ErrPriceRequired
	}
	return price, false, nil
}

// UploadInput — входные данные загрузки или обновления файла.
type UploadInput struct {
	Name             *string   // Явное имя без расширения, может отсутствовать
	Payload          io.Reader // Содержимое загружаемого файла
	OriginalFilename string    // Имя загруженного файла с расширением
	Price            *int
	IsFree           bool
	ProductID        int
}

// UploadFile сохраняет новый файл владельца: проверяет расширение и имя,
// применяет правило бесплатности, записывает содержимое в хранилище,
// создаёт строку и лишь после её сохранения переименовывает содержимое,
// если владелец задал имя явно.
func (s *Service) UploadFile(ctx context.Context, username string, input UploadInput) (int, error) {
	const op = "inventory.UploadFile"

	if !media.IsAllowedExtension(input.OriginalFilename) {
		return 0, ErrBadExtension
	}
	name, shouldRename, err := normalizeUploadName(input.Name, input.OriginalFilename)
	if err != nil {
		return 0, err
	}

	product, err := s.ReadProduct(ctx, username, input.ProductID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	price, isFree, err := normalizePricing(input.Price, input.IsFree, product.IsFree)
	if err != nil {
		return 0, err
	}

	path, err := s.media.Save(input.Payload, input.OriginalFilename)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	file := models.File{
		Name:      name,
		Path:      path,
		Price:     price,
		IsFree:    isFree,
		ProductID: input.ProductID,
	}
	id, err := s.repo.CreateFile(ctx, file)
	if err != nil {
		if rmErr := s.media.Remove(path); rmErr != nil {
			s.log.Warn("failed to remove orphan payload", sl.Err(rmErr))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if shouldRename {
		s.renameStored(ctx, id, path, *name)
	}
	// Карточка товара содержит ссылки на его файлы.
	s.invalidate(cache.ProductKey(input.ProductID))
	s.log.Info("uploaded file", slog.Int("id", id))
	return id, nil
}

// UpdateFile обновляет файл владельца, заменяя содержимое. Прежнее содержимое
// удаляется из хранилища после записи нового.
func (s *Service) UpdateFile(ctx context.Context, username string, id int, input UploadInput) error {
	const op = "inventory.UpdateFile"

	existing, err := s.readOwnFile(ctx, username, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !media.IsAllowedExtension(input.OriginalFilename) {
		return ErrBadExtension
	}
	name, shouldRename, err := normalizeUploadName(input.Name, input.OriginalFilename)
	if err != nil {
		return err
	}

	product, err := s.ReadProduct(ctx, username, input.ProductID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	price, isFree, err := normalizePricing(input.Price, input.IsFree, product.IsFree)
	if err != nil {
		return err
	}

	path, err := s.media.Save(input.Payload, input.OriginalFilename)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	file := models.File{
		Name:      name,
		Path:      path,
		Price:     price,
		IsFree:    isFree,
		ProductID: input.ProductID,
	}
	if _, err := s.repo.UpdateFile(ctx, file, id); err != nil {
		if rmErr := s.media.Remove(path); rmErr != nil {
			s.log.Warn("failed to remove orphan payload", sl.Err(rmErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if existing.Path != path {
		if err := s.media.Remove(existing.Path); err != nil {
			s.log.Warn("failed to remove replaced payload", sl.Err(err))
		}
	}
	if shouldRename {
		s.renameStored(ctx, id, path, *name)
	}
	s.invalidate(cache.ProductKey(input.ProductID))
	if existing.ProductID != input.ProductID {
		s.invalidate(cache.ProductKey(existing.ProductID))
	}
	return nil
}

// RemoveFile удаляет файл владельца вместе с содержимым в хранилище.
func (s *Service) RemoveFile(ctx context.Context, username string, id int) error {
	const op = "inventory.RemoveFile"
	existing, err := s.readOwnFile(ctx, username, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.media.Remove(existing.Path); err != nil {
		s.log.Warn("failed to remove stored payload", sl.Err(err))
	}
	if _, err := s.repo.RemoveFile(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.ProductKey(existing.ProductID))
	return nil
}

// ReadFile возвращает файл владельца.
func (s *Service) ReadFile(ctx context.Context, username string, id int) (*models.File, error) {
	const op = "inventory.ReadFile"
	file, err := s.readOwnFile(ctx, username, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return file, nil
}

// ListFiles возвращает файлы магазина владельца с пагинацией.
func (s *Service) ListFiles(ctx context.Context, username string, limit, offset int) ([]*models.File, error) {
	const op = "inventory.ListFiles"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	files, err := s.repo.ListFilesByStore(ctx, store.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return files, nil
}

func (s *Service) readOwnFile(ctx context.Context, username string, id int) (*models.File, error) {
	file, err := s.repo.ReadFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ReadProduct(ctx, username, file.ProductID); err != nil {
		return nil, err
	}
	return file, nil
}

// renameStored переименовывает сохранённое содержимое после сохранения строки,
// чтобы при сбое строка продолжала ссылаться на существующий путь.
func (s *Service) renameStored(ctx context.Context, id int, path, name string) {
	renamed, err := s.media.Rename(path, name)
	if err != nil {
		s.log.Warn("failed to rename stored payload", sl.Err(err))
		return
	}
	if renamed == path {
		return
	}
	if err := s.repo.UpdateFilePath(ctx, id, renamed); err != nil {
		s.log.Warn("failed to update file path after rename", sl.Err(err))
	}
}

// SubscriptionInput — входные данные подписки магазина.
type SubscriptionInput struct {
	Amount       int
	ExpiryAmount int
	ExpiryUnit   string // "day" или "hour"
}

// CreateSubscription добавляет подписку магазина владельца.
func (s *Service) CreateSubscription(ctx context.Context, username string, input SubscriptionInput) (int, error) {
	const op = "inventory.CreateSubscription"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sub := models.Subscription{
		Amount:       input.Amount,
		ExpiryAmount: input.ExpiryAmount,
		ExpiryUnit:   input.ExpiryUnit,
		StoreID:      store.ID,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created subscription", slog.Int("id", id))
	return id, nil
}

// ReadSubscription возвращает подписку магазина владельца.
func (s *Service) ReadSubscription(ctx context.Context, username string, id int) (*models.Subscription, error) {
	const op = "inventory.ReadSubscription"
	store, err := s.ownStore(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.StoreID != store.ID {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return sub, nil
}

// UpdateSubscription обновляет подписку магазина владельца.
func (s *Service) UpdateSubscription(ctx context.Context, username string, id int, input SubscriptionInput) error {
	const op = "inventory.UpdateSubscription"
	if _, err := s.ReadSubscription(ctx, username, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sub := models.Subscription{
		Amount:       input.Amount,
		ExpiryAmount: input.ExpiryAmount,
		ExpiryUnit:   input.ExpiryUnit,
	}
	if _, err := s.repo.UpdateSubscription(ctx, sub, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.SubscriptionKey(id))
	return nil
}

// RemoveSubscription удаляет подписку магазина владельца.
func (s *Service) RemoveSubscription(ctx context.Context, username string, id int) error {
	const op = "inventory.RemoveSubscription"
	if _, err := s.ReadSubscription(ctx, username, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.RemoveSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.SubscriptionKey(id))
	return nil
}
