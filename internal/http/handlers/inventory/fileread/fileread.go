// Package fileread реализует HTTP-обработчик получения файла владельцем по ID.
package fileread

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
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики чтения файла.
type Service interface {
	ReadFile(ctx context.Context, username string, id int) (*models.File, error)
}

// Handler обрабатывает запросы на получение файла по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить файл
// @Description Возвращает файл магазина текущего владельца по ID.
// @Tags Files
// @Produce  json
// @Param id path int true "ID файла"
// @Success 200 {object} map[string]any "Данные файла"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.fileread"
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

	file, err := h.service.ReadFile(r.Context(), username, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("file not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
			return
		}
		log.Error("failed to read file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read file"))
		return
	}

	log.Info("file read", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"file": file,
	}))
}
