package buy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/services/purchase"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Apply(ctx context.Context, username string, kind purchase.Kind, id int, confirmation string) (string, error) {
	args := m.Called(ctx, username, kind, id, confirmation)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, body any, id, username string) *http.Request {
	t.Helper()

	var bodyBytes []byte
	var err error
	switch v := body.(type) {
	case string:
		bodyBytes = []byte(v)
	default:
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodPut, "/catalog/products/"+id, bytes.NewReader(bodyBytes))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	if username != "" {
		ctx = context.WithValue(ctx, middlewarectx.User, username)
	}
	return req.WithContext(ctx)
}

func TestBuyHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		id             string
		username       string
		mockMessage    string
		mockErr        error
		wantMockCall   bool
		wantStatusCode int
		wantMessage    string
		wantError      string
	}{
		{
			name:           "successful buy",
			body:           Request{Confirmation: "buy"},
			id:             "7",
			username:       "buyer",
			mockMessage:    "You bought this product successfully",
			wantMockCall:   true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "You bought this product successfully",
		},
		{
			name:           "repeat buy",
			body:           Request{Confirmation: "buy"},
			id:             "7",
			username:       "buyer",
			mockMessage:    "You have already bought this product",
			wantMockCall:   true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "You have already bought this product",
		},
		{
			name:           "cancel",
			body:           Request{Confirmation: "cancel"},
			id:             "7",
			username:       "buyer",
			mockMessage:    "You canceled buying this product",
			wantMockCall:   true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "You canceled buying this product",
		},
		{
			name:           "buy_confirmation is the wire field name",
			body:           `{"buy_confirmation": "buy"}`,
			id:             "7",
			username:       "buyer",
			mockMessage:    "You bought this product successfully",
			wantMockCall:   true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "You bought this product successfully",
		},
		{
			name:           "unnamed confirmation field is ignored",
			body:           `{"confirmation": "buy"}`,
			id:             "7",
			username:       "buyer",
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Confirmation is a required field",
		},
		{
			name:           "unknown confirmation",
			body:           Request{Confirmation: "maybe"},
			id:             "7",
			username:       "buyer",
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Confirmation must be one of: buy cancel",
		},
		{
			name:           "bad id",
			body:           Request{Confirmation: "buy"},
			id:             "abc",
			username:       "buyer",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "failed to decode id from url",
		},
		{
			name:           "missing user in context",
			body:           Request{Confirmation: "buy"},
			id:             "7",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "item not found",
			body:           Request{Confirmation: "buy"},
			id:             "999",
			username:       "buyer",
			mockErr:        repository.ErrNotFound,
			wantMockCall:   true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.wantMockCall {
				serviceMock.On("Apply", mock.Anything, tt.username, purchase.KindProduct,
					mock.Anything, mock.Anything,
				).Return(tt.mockMessage, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock, purchase.KindProduct)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, newRequest(t, tt.body, tt.id, tt.username))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantMessage, data["message"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
