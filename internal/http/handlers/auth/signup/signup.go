// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// Handler принимает JSON с именем пользователя, двумя паролями и признаком
// владельца магазина, проверяет совпадение паролей и создаёт пользователя
// вместе с профилем.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
	"github.com/magabrotheeeer/digital-store/internal/services/auth"
)

// Request — входные данные для регистрации.
type Request struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Password1   string  `json:"password1" validate:"required,min=6"`
	Password2   string  `json:"password2" validate:"required,min=6"`
	IsOwner     bool    `json:"is_owner"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Signup(ctx context.Context, username, password1, password2 string, isOwner bool, phoneNumber *string) (string, error)
}

// Handler управляет HTTP-запросами на регистрацию.
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
// @Summary Зарегистрировать пользователя
// @Description Создает пользователя и профиль. Пароли должны совпадать.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные регистрации"
// @Success 200 {object} map[string]any "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или пароли не совпадают"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"
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
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	uid, err := h.service.Signup(r.Context(), req.Username, req.Password1, req.Password2, req.IsOwner, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordsMismatch) {
			log.Error("passwords do not match")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("passwords must match"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.String("uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"username": req.Username,
		"message":  "you signed up successfully",
	}))
}
