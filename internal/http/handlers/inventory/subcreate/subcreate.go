// Package subcreate реализует HTTP-обработчик добавления подписки магазина.
//
// У магазина может быть только одна подписка: повторная попытка создания
// завершается ошибкой.
package subcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/inventory"
)

// Request — входные данные новой подписки магазина.
type Request struct {
	Amount       int    `json:"amount" validate:"required,gt=0"`
	ExpiryAmount int    `json:"expiry_amount" validate:"required,gt=0"`
	ExpiryUnit   string `json:"expiry_unit" validate:"required,oneof=day hour"`
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	CreateSubscription(ctx context.Context, username string, input inventory.SubscriptionInput) (int, error)
}

// Handler управляет HTTP-запросами на создание подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить подписку магазина
// @Description Создает подписку магазина текущего владельца. Возвращает ID записи.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные подписки"
// @Success 200 {object} map[string]any "Подписка создана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.subcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.CreateSubscription(r.Context(), username, inventory.SubscriptionInput{
		Amount:       req.Amount,
		ExpiryAmount: req.ExpiryAmount,
		ExpiryUnit:   req.ExpiryUnit,
	})
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription_id": id,
	}))
}
