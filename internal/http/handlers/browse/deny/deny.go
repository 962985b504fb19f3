// Package deny реализует HTTP-обработчик DELETE-запросов покупателей к каталогу.
//
// Удалять записи каталога может только владелец через маршруты управления,
// поэтому покупатель получает отказ.
package deny

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/response"
)

// Handler отвечает отказом на удаление для одного вида вещей каталога.
type Handler struct {
	log  *slog.Logger
	kind string
}

// New создает новый Handler для вещей вида kind.
func New(log *slog.Logger, kind string) *Handler {
	return &Handler{log: log, kind: kind}
}

// ServeHTTP godoc
// @Summary Отказ в удалении
// @Description Покупатель не может удалять записи каталога, ответ только информирует.
// @Tags Catalog
// @Produce  json
// @Success 200 {object} response.Response "Нет прав на удаление"
// @Security BearerAuth
// @Router /catalog/{kind}/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.deny"
	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", h.kind),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Info("delete denied for customer")
	render.JSON(w, r, response.OKWithMessage(
		fmt.Sprintf("You do not have the permission to delete this %s", h.kind),
	))
}
