// Package productcreate реализует HTTP-обработчик добавления товара в магазин.
//
// Handler принимает JSON с данными товара, валидирует их и создает запись
// в магазине текущего владельца.
package productcreate

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

// Request — входные данные нового товара.
type Request struct {
	Name       string   `json:"product_name" validate:"required,min=1,max=150"`
	Price      *int     `json:"product_price,omitempty" validate:"omitempty,gt=0"`
	IsFree     bool     `json:"is_free"`
	Categories []string `json:"product_category" validate:"dive,oneof=athletic educational scientific political cultural historical"`
}

// Service описывает интерфейс бизнес-логики создания товара.
type Service interface {
	CreateProduct(ctx context.Context, username string, input inventory.ProductInput) (int, error)
}

// Handler управляет HTTP-запросами на создание товара.
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
// @Summary Добавить товар
// @Description Создает товар в магазине текущего владельца. Возвращает ID записи.
// @Tags Products
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового товара"
// @Success 200 {object} map[string]any "Товар создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /products [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.productcreate"
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

	id, err := h.service.CreateProduct(r.Context(), username, inventory.ProductInput{
		Name:       req.Name,
		Price:      req.Price,
		IsFree:     req.IsFree,
		Categories: req.Categories,
	})
	if err != nil {
		log.Error("failed to create product", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create product"))
		return
	}

	log.Info("product created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"product_id": id,
	}))
}
