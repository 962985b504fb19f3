package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

func paidFile(id, productID int) models.File {
	price := 100
	return models.File{ID: id, ProductID: productID, Price: &price}
}

func subscriptionOf(storeID, days int, purchasedAt time.Time) models.PurchasedSubscription {
	return models.PurchasedSubscription{
		Subscription: models.Subscription{
			ID:           1,
			StoreID:      storeID,
			Amount:       300,
			ExpiryAmount: days,
			ExpiryUnit:   models.ExpiryUnitDay,
		},
		PurchasedAt: purchasedAt,
	}
}

func TestAllowed(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{
			name: "владелец магазина скачивает свой файл",
			req: Request{
				RequesterUID:  "owner-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart:          nil,
				Now:           now,
			},
			want: true,
		},
		{
			name: "бесплатный файл доступен без корзины",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          models.File{ID: 5, ProductID: 7, IsFree: true},
				Cart:          nil,
				Now:           now,
			},
			want: true,
		},
		{
			name: "платный файл без корзины недоступен",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart:          nil,
				Now:           now,
			},
			want: false,
		},
		{
			name: "пустая корзина не дает доступа",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart:          &models.Cart{},
				Now:           now,
			},
			want: false,
		},
		{
			name: "купленный товар открывает его файлы",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					ProductIDs: map[int]struct{}{7: {}},
				},
				Now: now,
			},
			want: true,
		},
		{
			name: "купленный файл доступен сам по себе",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					FileIDs: map[int]struct{}{5: {}},
				},
				Now: now,
			},
			want: true,
		},
		{
			name: "чужой купленный товар не открывает этот файл",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					ProductIDs: map[int]struct{}{8: {}},
				},
				Now: now,
			},
			want: false,
		},
		{
			name: "действующая подписка магазина открывает файл",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					Subscriptions: []models.PurchasedSubscription{
						subscriptionOf(1, 3, now.Add(-48*time.Hour)),
					},
				},
				Now: now,
			},
			want: true,
		},
		{
			name: "подписка другого магазина не действует",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					Subscriptions: []models.PurchasedSubscription{
						subscriptionOf(2, 3, now.Add(-time.Hour)),
					},
				},
				Now: now,
			},
			want: false,
		},
		{
			name: "истекшая подписка не дает доступа",
			req: Request{
				RequesterUID:  "user-uid",
				StoreOwnerUID: "owner-uid",
				StoreID:       1,
				File:          paidFile(5, 7),
				Cart: &models.Cart{
					Subscriptions: []models.PurchasedSubscription{
						subscriptionOf(1, 3, now.Add(-73*time.Hour)),
					},
				},
				Now: now,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.req))
		})
	}
}

func TestSubscriptionActive_Window(t *testing.T) {
	purchased := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := subscriptionOf(1, 3, purchased)

	// Окно полуоткрытое: ровно через 72 часа подписка уже не действует.
	assert.True(t, SubscriptionActive(sub, purchased))
	assert.True(t, SubscriptionActive(sub, purchased.Add(72*time.Hour-time.Second)))
	assert.False(t, SubscriptionActive(sub, purchased.Add(72*time.Hour)))
	assert.False(t, SubscriptionActive(sub, purchased.Add(100*time.Hour)))
}

func TestSubscriptionActive_HourUnit(t *testing.T) {
	purchased := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := models.PurchasedSubscription{
		Subscription: models.Subscription{
			ID:           2,
			StoreID:      1,
			Amount:       50,
			ExpiryAmount: 5,
			ExpiryUnit:   models.ExpiryUnitHour,
		},
		PurchasedAt: purchased,
	}

	assert.True(t, SubscriptionActive(sub, purchased.Add(4*time.Hour)))
	assert.False(t, SubscriptionActive(sub, purchased.Add(5*time.Hour)))
}

func TestDenialMessage(t *testing.T) {
	assert.Equal(t,
		"to download this file, you should first pay for this file or buy its product",
		DenialMessage)
}
