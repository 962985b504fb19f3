// Package cataloglist реализует HTTP-обработчик списков каталога для покупателей.
//
// Один обработчик обслуживает товары, файлы, подписки и магазины: вид
// задаётся при создании.
package cataloglist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/catalog"
)

// Виды списков каталога.
const (
	KindProducts      = "products"
	KindFiles         = "files"
	KindSubscriptions = "subscriptions"
	KindStores        = "stores"
)

// Service описывает интерфейс витрины для списков.
type Service interface {
	ListProducts(ctx context.Context, limit, offset int) ([]catalog.ProductListItem, error)
	ListFiles(ctx context.Context, limit, offset int) ([]catalog.FileListItem, error)
	ListSubscriptions(ctx context.Context, limit, offset int) ([]catalog.SubscriptionListItem, error)
	ListStores(ctx context.Context, limit, offset int) ([]catalog.StoreDetail, error)
}

// Handler управляет HTTP-запросами на списки каталога одного вида.
type Handler struct {
	log     *slog.Logger
	service Service
	kind    string
}

// New создает новый Handler для списков вида kind.
func New(log *slog.Logger, service Service, kind string) *Handler {
	return &Handler{log: log, service: service, kind: kind}
}

// ServeHTTP godoc
// @Summary Список вещей каталога
// @Description Возвращает список товаров, файлов, подписок или магазинов.
// @Tags Catalog
// @Produce  json
// @Param limit query int false "Максимум записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]any "Список вещей"
// @Security BearerAuth
// @Router /catalog/{kind} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.cataloglist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", h.kind),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	var (
		items any
		err   error
	)
	switch h.kind {
	case KindProducts:
		items, err = h.service.ListProducts(r.Context(), limit, offset)
	case KindFiles:
		items, err = h.service.ListFiles(r.Context(), limit, offset)
	case KindSubscriptions:
		items, err = h.service.ListSubscriptions(r.Context(), limit, offset)
	case KindStores:
		items, err = h.service.ListStores(r.Context(), limit, offset)
	default:
		log.Error("unknown catalog kind")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
		return
	}
	if err != nil {
		log.Error("failed to list catalog items", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list catalog items"))
		return
	}

	log.Info("catalog items listed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		h.kind: items,
	}))
}
