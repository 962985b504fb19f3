// Package purchase реализует бизнес-логику покупки товаров, файлов и подписок.
//
// Покупка идемпотентна: повторная попытка купить уже купленную вещь не меняет
// состояние корзины и возвращает сообщение "already bought". Отмена ничего
// не мутирует — завершённая покупка не отменяется, ответ только информирует.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/digital-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/services/entitlement"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Kind — вид покупаемой вещи.
type Kind string

// Виды покупаемых вещей.
const (
	KindProduct      Kind = "product"
	KindFile         Kind = "file"
	KindSubscription Kind = "subscription"
)

// Подтверждения, принимаемые шагом покупки.
const (
	ConfirmBuy    = "buy"
	ConfirmCancel = "cancel"
)

// Repository определяет методы хранилища, нужные для покупки.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetCartByUser(ctx context.Context, userUID string) (*models.Cart, error)
	GetOrCreateCart(ctx context.Context, userUID string) (int, error)
	AddCartProduct(ctx context.Context, cartID, productID int) (bool, error)
	AddCartFile(ctx context.Context, cartID, fileID int) (bool, error)
	GetCartSubscription(ctx context.Context, cartID, subscriptionID int) (*models.PurchasedSubscription, error)
	UpsertCartSubscription(ctx context.Context, cartID, subscriptionID int, purchasedAt time.Time) error
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	ReadFile(ctx context.Context, id int) (*models.File, error)
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
}

// EventPublisher публикует события успешных покупок.
type EventPublisher interface {
	PublishPurchase(event rabbitmq.PurchaseEvent) error
}

// Service реализует переходы buy/cancel для всех видов покупок.
type Service struct {
	repo      Repository
	publisher EventPublisher // nil, если публикация событий не настроена
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый Service. publisher может быть nil.
func New(repo Repository, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Apply выполняет действие confirmation над вещью kind с данным ID для
// пользователя username и возвращает сообщение для покупателя.
func (s *Service) Apply(ctx context.Context, username string, kind Kind, id int, confirmation string) (string, error) {
	const op = "purchase.Apply"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch kind {
	case KindProduct:
		return s.applyProduct(ctx, user.UID, username, id, confirmation)
	case KindFile:
		return s.applyFile(ctx, user.UID, username, id, confirmation)
	case KindSubscription:
		return s.applySubscription(ctx, user.UID, username, id, confirmation)
	default:
		return "", fmt.Errorf("%s: unknown kind %q", op, kind)
	}
}

func (s *Service) applyProduct(ctx context.Context, userUID, username string, id int, confirmation string) (string, error) {
	const op = "purchase.applyProduct"

	if _, err := s.repo.ReadProduct(ctx, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	cartID, err := s.repo.GetOrCreateCart(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if confirmation == ConfirmBuy {
		added, err := s.repo.AddCartProduct(ctx, cartID, id)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !added {
			return "You have already bought this product", nil
		}
		s.publishEvent(username, KindProduct, id)
		return "You bought this product successfully", nil
	}

	cart, err := s.cartState(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if cart.HasProduct(id) {
		return "You have already bought this product", nil
	}
	return "You canceled buying this product", nil
}

func (s *Service) applyFile(ctx context.Context, userUID, username string, id int, confirmation string) (string, error) {
	const op = "purchase.applyFile"

	if _, err := s.repo.ReadFile(ctx, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	cartID, err := s.repo.GetOrCreateCart(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if confirmation == ConfirmBuy {
		added, err := s.repo.AddCartFile(ctx, cartID, id)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !added {
			return "You have already bought this file", nil
		}
		s.publishEvent(username, KindFile, id)
		return "You bought this file successfully", nil
	}

	cart, err := s.cartState(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if cart.HasFile(id) {
		return "You have already bought this file", nil
	}
	return "You canceled buying this file", nil
}

// applySubscription различает три состояния: подписка не куплена, куплена и
// действует, куплена и истекла. Истёкшую подписку можно купить заново —
// отметка времени её покупки обновляется, чужие подписки не затрагиваются.
func (s *Service) applySubscription(ctx context.Context, userUID, username string, id int, confirmation string) (string, error) {
	const op = "purchase.applySubscription"

	if _, err := s.repo.ReadSubscription(ctx, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	cartID, err := s.repo.GetOrCreateCart(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	owned, err := s.repo.GetCartSubscription(ctx, cartID, id)
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	active := owned != nil && entitlement.SubscriptionActive(*owned, s.now())

	if confirmation == ConfirmBuy {
		if active {
			return "You have already bought this subscription", nil
		}
		if err := s.repo.UpsertCartSubscription(ctx, cartID, id, s.now().UTC()); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		s.publishEvent(username, KindSubscription, id)
		return "You bought this subscription successfully", nil
	}

	if active {
		return "You have already bought this subscription", nil
	}
	return "You canceled buying this subscription", nil
}

func (s *Service) cartState(ctx context.Context, userUID string) (*models.Cart, error) {
	cart, err := s.repo.GetCartByUser(ctx, userUID)
	if err != nil {
		if isNotFound(err) {
			return &models.Cart{}, nil
		}
		return nil, err
	}
	return cart, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func (s *Service) publishEvent(username string, kind Kind, id int) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.PurchaseEvent{
		Username:   username,
		Kind:       string(kind),
		ItemID:     id,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishPurchase(event); err != nil {
		s.log.Warn("failed to publish purchase event", sl.Err(err))
	}
}
