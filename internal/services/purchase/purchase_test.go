package purchase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/digital-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepositoryMock) GetCartByUser(ctx context.Context, userUID string) (*models.Cart, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *RepositoryMock) GetOrCreateCart(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *RepositoryMock) AddCartProduct(ctx context.Context, cartID, productID int) (bool, error) {
	args := m.Called(ctx, cartID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *RepositoryMock) AddCartFile(ctx context.Context, cartID, fileID int) (bool, error) {
	args := m.Called(ctx, cartID, fileID)
	return args.Bool(0), args.Error(1)
}

func (m *RepositoryMock) GetCartSubscription(ctx context.Context, cartID, subscriptionID int) (*models.PurchasedSubscription, error) {
	args := m.Called(ctx, cartID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchasedSubscription), args.Error(1)
}

func (m *RepositoryMock) UpsertCartSubscription(ctx context.Context, cartID, subscriptionID int, purchasedAt time.Time) error {
	args := m.Called(ctx, cartID, subscriptionID, purchasedAt)
	return args.Error(0)
}

func (m *RepositoryMock) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepositoryMock) ReadFile(ctx context.Context, id int) (*models.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.File), args.Error(1)
}

func (m *RepositoryMock) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishPurchase(event rabbitmq.PurchaseEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepositoryMock, publisher *PublisherMock, now time.Time) *Service {
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	svc := New(repo, pub, newNoopLogger())
	svc.now = func() time.Time { return now }
	return svc
}

var testUser = &models.User{UID: "user-uid", Username: "buyer"}

func TestApply_BuyProduct(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		added       bool
		wantMessage string
		wantEvent   bool
	}{
		{
			name:        "первая покупка товара",
			added:       true,
			wantMessage: "You bought this product successfully",
			wantEvent:   true,
		},
		{
			name:        "повторная покупка товара",
			added:       false,
			wantMessage: "You have already bought this product",
			wantEvent:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			publisher := new(PublisherMock)

			repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()
			repo.On("ReadProduct", mock.Anything, 7).Return(&models.Product{ID: 7}, nil).Once()
			repo.On("GetOrCreateCart", mock.Anything, "user-uid").Return(3, nil).Once()
			repo.On("AddCartProduct", mock.Anything, 3, 7).Return(tt.added, nil).Once()
			if tt.wantEvent {
				publisher.On("PublishPurchase", mock.Anything).Return(nil).Once()
			}

			svc := newService(repo, publisher, now)
			msg, err := svc.Apply(context.Background(), "buyer", KindProduct, 7, ConfirmBuy)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestApply_CancelProduct(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		cart        *models.Cart
		cartErr     error
		wantMessage string
	}{
		{
			name:        "отмена непокупавшегося товара",
			cart:        &models.Cart{},
			wantMessage: "You canceled buying this product",
		},
		{
			name: "отмена уже купленного товара ничего не меняет",
			cart: &models.Cart{
				ProductIDs: map[int]struct{}{7: {}},
			},
			wantMessage: "You have already bought this product",
		},
		{
			name:        "отмена без корзины",
			cartErr:     repository.ErrNotFound,
			wantMessage: "You canceled buying this product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)

			repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()
			repo.On("ReadProduct", mock.Anything, 7).Return(&models.Product{ID: 7}, nil).Once()
			repo.On("GetOrCreateCart", mock.Anything, "user-uid").Return(3, nil).Once()
			if tt.cartErr != nil {
				repo.On("GetCartByUser", mock.Anything, "user-uid").Return(nil, tt.cartErr).Once()
			} else {
				repo.On("GetCartByUser", mock.Anything, "user-uid").Return(tt.cart, nil).Once()
			}

			svc := newService(repo, nil, now)
			msg, err := svc.Apply(context.Background(), "buyer", KindProduct, 7, ConfirmCancel)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
			// Отмена не должна трогать состояние корзины.
			repo.AssertNotCalled(t, "AddCartProduct", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestApply_BuyFile(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(RepositoryMock)
	publisher := new(PublisherMock)

	repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()
	repo.On("ReadFile", mock.Anything, 5).Return(&models.File{ID: 5}, nil).Once()
	repo.On("GetOrCreateCart", mock.Anything, "user-uid").Return(3, nil).Once()
	repo.On("AddCartFile", mock.Anything, 3, 5).Return(true, nil).Once()
	publisher.On("PublishPurchase", mock.MatchedBy(func(e rabbitmq.PurchaseEvent) bool {
		return e.Kind == "file" && e.ItemID == 5 && e.Username == "buyer"
	})).Return(nil).Once()

	svc := newService(repo, publisher, now)
	msg, err := svc.Apply(context.Background(), "buyer", KindFile, 5, ConfirmBuy)

	require.NoError(t, err)
	assert.Equal(t, "You bought this file successfully", msg)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestApply_Subscription(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{ID: 9, StoreID: 1, Amount: 300, ExpiryAmount: 3, ExpiryUnit: models.ExpiryUnitDay}

	activeOwned := &models.PurchasedSubscription{
		Subscription: *sub,
		PurchasedAt:  now.Add(-24 * time.Hour),
	}
	expiredOwned := &models.PurchasedSubscription{
		Subscription: *sub,
		PurchasedAt:  now.Add(-96 * time.Hour),
	}

	tests := []struct {
		name         string
		confirmation string
		owned        *models.PurchasedSubscription
		wantMessage  string
		wantUpsert   bool
	}{
		{
			name:         "первая покупка подписки",
			confirmation: ConfirmBuy,
			owned:        nil,
			wantMessage:  "You bought this subscription successfully",
			wantUpsert:   true,
		},
		{
			name:         "покупка при действующей подписке",
			confirmation: ConfirmBuy,
			owned:        activeOwned,
			wantMessage:  "You have already bought this subscription",
			wantUpsert:   false,
		},
		{
			name:         "повторная покупка истекшей подписки обновляет отметку",
			confirmation: ConfirmBuy,
			owned:        expiredOwned,
			wantMessage:  "You bought this subscription successfully",
			wantUpsert:   true,
		},
		{
			name:         "отмена при действующей подписке",
			confirmation: ConfirmCancel,
			owned:        activeOwned,
			wantMessage:  "You have already bought this subscription",
			wantUpsert:   false,
		},
		{
			name:         "отмена истекшей подписки не покупает заново",
			confirmation: ConfirmCancel,
			owned:        expiredOwned,
			wantMessage:  "You canceled buying this subscription",
			wantUpsert:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			publisher := new(PublisherMock)

			repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()
			repo.On("ReadSubscription", mock.Anything, 9).Return(sub, nil).Once()
			repo.On("GetOrCreateCart", mock.Anything, "user-uid").Return(3, nil).Once()
			if tt.owned != nil {
				repo.On("GetCartSubscription", mock.Anything, 3, 9).Return(tt.owned, nil).Once()
			} else {
				repo.On("GetCartSubscription", mock.Anything, 3, 9).Return(nil, repository.ErrNotFound).Once()
			}
			if tt.wantUpsert {
				repo.On("UpsertCartSubscription", mock.Anything, 3, 9, now.UTC()).Return(nil).Once()
				publisher.On("PublishPurchase", mock.Anything).Return(nil).Once()
			}

			svc := newService(repo, publisher, now)
			msg, err := svc.Apply(context.Background(), "buyer", KindSubscription, 9, tt.confirmation)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
			if !tt.wantUpsert {
				repo.AssertNotCalled(t, "UpsertCartSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestApply_UnknownKind(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()

	svc := newService(repo, nil, time.Now())
	_, err := svc.Apply(context.Background(), "buyer", Kind("car"), 1, ConfirmBuy)

	assert.Error(t, err)
}

func TestApply_PublisherFailureDoesNotFailPurchase(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(RepositoryMock)
	publisher := new(PublisherMock)

	repo.On("GetUserByUsername", mock.Anything, "buyer").Return(testUser, nil).Once()
	repo.On("ReadProduct", mock.Anything, 7).Return(&models.Product{ID: 7}, nil).Once()
	repo.On("GetOrCreateCart", mock.Anything, "user-uid").Return(3, nil).Once()
	repo.On("AddCartProduct", mock.Anything, 3, 7).Return(true, nil).Once()
	publisher.On("PublishPurchase", mock.Anything).Return(assert.AnError).Once()

	svc := newService(repo, publisher, now)
	msg, err := svc.Apply(context.Background(), "buyer", KindProduct, 7, ConfirmBuy)

	require.NoError(t, err)
	assert.Equal(t, "You bought this product successfully", msg)
}
