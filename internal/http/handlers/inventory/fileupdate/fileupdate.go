// Package fileupdate реализует HTTP-обработчик замены файла владельцем.
//
// Обработчик подключается и к PUT, и к PATCH: оба метода принимают полную
// multipart-форму и переписывают запись вместе с содержимым файла.
package fileupdate

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/fileupload"
	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/inventory"
)

// Service описывает интерфейс бизнес-логики замены файла.
type Service interface {
	UpdateFile(ctx context.Context, username string, id int, input inventory.UploadInput) error
}

// Handler управляет HTTP-запросами на замену файла.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Заменить файл
// @Description Переписывает файл магазина текущего владельца вместе с содержимым.
// @Tags Files
// @Accept  multipart/form-data
// @Produce  json
// @Param id path int true "ID файла"
// @Success 200 {object} map[string]any "Файл обновлен"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /files/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.fileupdate"
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

	input, err := fileupload.ParseForm(r)
	if err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.UpdateFile(r.Context(), username, id, *input); err != nil {
		fileupload.WriteServiceError(w, r, log, err, "could not update file")
		return
	}

	log.Info("file updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithMessage("file updated successfully"))
}
