// Package cartread реализует HTTP-обработчик просмотра корзины покупателя.
//
// Корзина видна только её владельцу. Отсутствующая корзина отдаётся пустой.
package cartread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/catalog"
)

// Service описывает интерфейс бизнес-логики просмотра корзины.
type Service interface {
	Cart(ctx context.Context, username string) (*catalog.CartView, error)
}

// Handler управляет HTTP-запросами на просмотр корзины.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Корзина пользователя
// @Description Возвращает купленные товары, файлы и подписки текущего пользователя.
// @Tags Cart
// @Produce  json
// @Success 200 {object} map[string]any "Содержимое корзины"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /cart [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.cartread"
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

	cart, err := h.service.Cart(r.Context(), username)
	if err != nil {
		log.Error("failed to read cart", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read cart"))
		return
	}

	log.Info("cart read", slog.String("username", username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"cart": cart,
	}))
}
