package catalogread

import (
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
	"github.com/magabrotheeeer/digital-store/internal/services/catalog"
	"github.com/magabrotheeeer/digital-store/internal/services/entitlement"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ProductDetail(ctx context.Context, id int) (*catalog.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductDetail), args.Error(1)
}

func (m *ServiceMock) FileDetail(ctx context.Context, username string, id int) (*catalog.FileDetail, error) {
	args := m.Called(ctx, username, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.FileDetail), args.Error(1)
}

func (m *ServiceMock) SubscriptionDetail(ctx context.Context, id int) (*catalog.SubscriptionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SubscriptionDetail), args.Error(1)
}

func (m *ServiceMock) StoreDetail(ctx context.Context, id int) (*catalog.StoreDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.StoreDetail), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(id, username string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/catalog/files/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	if username != "" {
		ctx = context.WithValue(ctx, middlewarectx.User, username)
	}
	return req.WithContext(ctx)
}

func TestCatalogReadHandler_FileDetail(t *testing.T) {
	t.Run("buyer without purchase sees denial text", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("FileDetail", mock.Anything, "buyer", 5).
			Return(&catalog.FileDetail{FileData: entitlement.DenialMessage}, nil).Once()

		handler := New(newNoopLogger(), serviceMock, KindFile)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("5", "buyer"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		data := got["data"].(map[string]any)
		file := data["file"].(map[string]any)
		assert.Equal(t,
			"to download this file, you should first pay for this file or buy its product",
			file["file_data"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("entitled buyer sees download link", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("FileDetail", mock.Anything, "buyer", 5).
			Return(&catalog.FileDetail{FileData: "http://localhost:8080/media/mysong2.mp3"}, nil).Once()

		handler := New(newNoopLogger(), serviceMock, KindFile)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("5", "buyer"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		data := got["data"].(map[string]any)
		file := data["file"].(map[string]any)
		assert.Equal(t, "http://localhost:8080/media/mysong2.mp3", file["file_data"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("missing user in context", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		handler := New(newNoopLogger(), serviceMock, KindFile)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("5", ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("file not found", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("FileDetail", mock.Anything, "buyer", 999).
			Return(nil, repository.ErrNotFound).Once()

		handler := New(newNoopLogger(), serviceMock, KindFile)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("999", "buyer"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCatalogReadHandler_ProductDetail(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("ProductDetail", mock.Anything, 7).
		Return(&catalog.ProductDetail{Name: "album", Categories: []string{"cultural"}}, nil).Once()

	handler := New(newNoopLogger(), serviceMock, KindProduct)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest("7", "buyer"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	data := got["data"].(map[string]any)
	product := data["product"].(map[string]any)
	assert.Equal(t, "album", product["product_name"])
	serviceMock.AssertExpectations(t)
}
