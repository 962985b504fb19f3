// Package fileremove реализует HTTP-обработчик удаления файла владельцем.
//
// Вместе с записью удаляется содержимое файла в хранилище.
package fileremove

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
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики удаления файла.
type Service interface {
	RemoveFile(ctx context.Context, username string, id int) error
}

// Handler управляет HTTP-запросами на удаление файла.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить файл
// @Description Удаляет файл магазина текущего владельца вместе с содержимым.
// @Tags Files
// @Produce  json
// @Param id path int true "ID файла"
// @Success 200 {object} map[string]any "Файл удален"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.fileremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.RemoveFile(r.Context(), username, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("file not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
			return
		}
		log.Error("failed to remove file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove file"))
		return
	}

	log.Info("file removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithMessage("file removed successfully"))
}
