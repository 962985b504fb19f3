// Package selectstep реализует HTTP-обработчик POST-запросов к спискам каталога.
//
// Покупка возможна только на странице конкретной вещи, поэтому POST на список
// отвечает подсказкой выбрать её.
package selectstep

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/response"
)

// Handler отвечает подсказкой для одного вида вещей каталога.
type Handler struct {
	log  *slog.Logger
	kind string
}

// New создает новый Handler для вещей вида kind.
func New(log *slog.Logger, kind string) *Handler {
	return &Handler{log: log, kind: kind}
}

// ServeHTTP godoc
// @Summary Подсказка выбора вещи
// @Description Напоминает, что покупка выполняется на странице конкретной вещи.
// @Tags Catalog
// @Produce  json
// @Success 200 {object} map[string]any "Подсказка"
// @Security BearerAuth
// @Router /catalog/{kind} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.browse.selectstep"
	log := h.log.With(
		slog.String("op", op),
		slog.String("kind", h.kind),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Info("select hint issued")
	render.JSON(w, r, response.OKWithMessage(
		fmt.Sprintf("Please select an exact %s to buy", h.kind),
	))
}
