// Package catalogread реализует HTTP-обработчик карточек каталога для покупателей.
//
// Один обработчик обслуживает товары, файлы, подписки и магазины: вид
// задаётся при создании. Карточка файла зависит от запрашивающего
// пользователя — вместо ссылки на скачивание он может получить отказ.
package catalogread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/catalog"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Виды карточек каталога.
const (
	KindProduct      = "product"
	KindFile         = "file"
	KindSubscription = "subscription"
	KindStore        = "store"
)

// Service описывает интерфейс витрины для карточек.
type Service interface {
	ProductDetail(ctx context.Context, id int) (*catalog.ProductDetail, error)
	FileDetail(ctx context.Context, username string, id int) (*catalog.FileDetail, error)
	SubscriptionDetail(ctx context.Context, id int) (*catalog.SubscriptionDetail, error)
	StoreDetail(ctx context.Context, id int) (*catalog.StoreDetail, error)
}

// Handler управляет HTTP-запросами на карточки каталога одного вида.
type Handler struct {
	log     *slog.Logger
	service Service
	kind    string
}

// New создает новый Handler для карточек вида kind.
func New(log *slog.Logger, service Service, kind string) *Handler {
	return &Handler{log: log, service: service, kind: kind}
}

// ServeHTTP godoc
// @Summary Карточка вещи каталога
// @Description Возвращает карточку товара, файла, подписки или магазина.
// @Tags Catalog
// @Produce  json
// @Param id path int true "ID вещи"
// @Success 200 {object} map[string]any "Карточка вещи"
// @Failure 404 {object} response.ErrorResponse "Вещь не найдена"
// @Security BearerAuth
// @Router /catalog/{kind}/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.catalogread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", h.kind),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var detail any
	switch h.kind {
	case KindProduct:
		detail, err = h.service.ProductDetail(r.Context(), id)
	case KindFile:
		username, ok := r.Context().Value(middlewarectx.User).(string)
		if !ok || username == "" {
			log.Error("username not found in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		detail, err = h.service.FileDetail(r.Context(), username, id)
	case KindSubscription:
		detail, err = h.service.SubscriptionDetail(r.Context(), id)
	case KindStore:
		detail, err = h.service.StoreDetail(r.Context(), id)
	default:
		log.Error("unknown catalog kind")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
		return
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("item not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to read catalog item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read catalog item"))
		return
	}

	log.Info("catalog item read", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		h.kind: detail,
	}))
}
