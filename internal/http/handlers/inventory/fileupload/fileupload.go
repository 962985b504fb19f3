// Package fileupload реализует HTTP-обработчик загрузки файла владельцем.
//
// Handler принимает multipart/form-data с содержимым файла и его описанием.
// Имя указывается без расширения, расширение берется из загруженного файла
// и проверяется по допустимому списку. Платному файлу обязательна цена.
package fileupload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/inventory"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

const maxUploadSize = 512 << 20

// Service описывает интерфейс бизнес-логики загрузки файла.
type Service interface {
	UploadFile(ctx context.Context, username string, input inventory.UploadInput) (int, error)
}

// Handler управляет HTTP-запросами на загрузку файла.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Загрузить файл
// @Description Сохраняет файл товара в магазине текущего владельца.
// @Tags Files
// @Accept  multipart/form-data
// @Produce  json
// @Param file_data formData file true "Содержимое файла"
// @Param product_id formData int true "ID товара"
// @Param file_name formData string false "Имя без расширения"
// @Param file_price formData int false "Цена"
// @Param is_free formData bool true "Файл бесплатный"
// @Success 200 {object} map[string]any "Файл сохранен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /files [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inventory.fileupload"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	input, err := ParseForm(r)
	if err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	log.Info("multipart form parsed", slog.Int("product_id", input.ProductID))

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.UploadFile(r.Context(), username, *input)
	if err != nil {
		WriteServiceError(w, r, log, err, "could not upload file")
		return
	}

	log.Info("file uploaded", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"file_id": id,
	}))
}

// ParseForm разбирает multipart-форму загрузки файла в UploadInput.
// Закрытие содержимого файла остаётся за http-сервером вместе с телом запроса.
func ParseForm(r *http.Request) (*inventory.UploadInput, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	payload, header, err := r.FormFile("file_data")
	if err != nil {
		return nil, errors.New("file_data is required")
	}

	productID, err := strconv.Atoi(r.FormValue("product_id"))
	if err != nil {
		return nil, errors.New("product_id is required")
	}

	input := &inventory.UploadInput{
		Payload:          payload,
		OriginalFilename: header.Filename,
		ProductID:        productID,
	}
	if v := r.FormValue("file_name"); v != "" {
		input.Name = &v
	}
	if v := r.FormValue("file_price"); v != "" {
		price, err := strconv.Atoi(v)
		if err != nil || price <= 0 {
			return nil, errors.New("file_price must be a positive number")
		}
		input.Price = &price
	}
	v := r.FormValue("is_free")
	if v == "" {
		return nil, errors.New("is_free is required")
	}
	isFree, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errors.New("is_free must be a boolean")
	}
	input.IsFree = isFree
	return input, nil
}

// WriteServiceError переводит ошибки бизнес-логики файлов в HTTP-ответ.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, inventory.ErrNameHasExtension),
		errors.Is(err, inventory.ErrPriceRequired),
		errors.Is(err, inventory.ErrBadExtension):
		log.Error("upload rejected", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		log.Error("record not found", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
	default:
		log.Error(fallback, sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(fallback))
	}
}
