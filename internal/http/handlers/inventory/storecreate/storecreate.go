// Package storecreate реализует HTTP-обработчик создания магазина владельцем.
//
// У владельца может быть только один магазин: повторная попытка создания
// завершается ошибкой.
package storecreate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики создания магазина.
type Service interface {
	CreateStore(ctx context.Context, username string) (int, error)
}

// Handler управляет HTTP-запросами на создание магазина.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать магазин
// @Description Создает магазин для текущего владельца. Возвращает ID записи.
// @Tags Store
// @Produce  json
// @Success 200 {object} map[string]any "Магазин создан"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /store [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.storecreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.CreateStore(r.Context(), username)
	if err != nil {
		log.Error("failed to create store", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create store"))
		return
	}

	log.Info("store created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"store_id": id,
	}))
}
