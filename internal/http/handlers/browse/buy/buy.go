// Package buy реализует HTTP-обработчик шага покупки в каталоге.
//
// Один обработчик обслуживает товары, файлы и подписки: вид вещи задаётся
// при создании. Подключается и к PUT, и к PATCH — семантика одинаковая.
// Тело запроса содержит подтверждение "buy" или "cancel", ответ — сообщение
// для покупателя.
package buy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/purchase"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Request — подтверждение шага покупки.
type Request struct {
	Confirmation string `json:"buy_confirmation" validate:"required,oneof=buy cancel"`
}

// Service описывает интерфейс бизнес-логики покупки.
type Service interface {
	Apply(ctx context.Context, username string, kind purchase.Kind, id int, confirmation string) (string, error)
}

// Handler управляет HTTP-запросами шага покупки для одного вида вещей.
type Handler struct {
	log      *slog.Logger
	service  Service
	kind     purchase.Kind
	validate *validator.Validate
}

// New создает новый Handler для вещей вида kind.
func New(log *slog.Logger, service Service, kind purchase.Kind) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		kind:     kind,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Купить или отменить покупку
// @Description Выполняет шаг покупки вещи каталога. Покупка идемпотентна.
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Param id path int true "ID вещи"
// @Param request body Request true "Подтверждение: buy или cancel"
// @Success 200 {object} map[string]any "Сообщение о результате"
// @Failure 404 {object} response.ErrorResponse "Вещь не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /catalog/{kind}/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.buy"
	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", string(h.kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	msg, err := h.service.Apply(r.Context(), username, h.kind, id, req.Confirmation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("item not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to apply purchase step", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process purchase"))
		return
	}

	log.Info("purchase step applied", slog.Int("id", id), slog.String("message", msg))
	render.JSON(w, r, response.OKWithMessage(msg))
}
