package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/digital-store/internal/http/response"
	"github.com/magabrotheeeer/digital-store/internal/lib/sl"
)

// OwnerChecker определяет интерфейс проверки, владеет ли пользователь магазином.
type OwnerChecker interface {
	IsStoreOwner(ctx context.Context, username string) (bool, error)
}

// OwnerOnlyMiddleware закрывает маршруты управления каталогом от обычных
// покупателей. Пользователь без профиля владельца получает 403 Forbidden.
func OwnerOnlyMiddleware(auth OwnerChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OwnerOnlyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			username, ok := r.Context().Value(User).(string)
			if !ok || username == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			isOwner, err := auth.IsStoreOwner(r.Context(), username)
			if err != nil {
				log.Error("failed to check owner profile", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !isOwner {
				log.Error("access denied: not a store owner",
					slog.String("username", username))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("only store owners can manage inventory"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
