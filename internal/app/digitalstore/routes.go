// Package digitalstore предоставляет маршруты для основного приложения.
package digitalstore

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/digital-store/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/buy"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/cartread"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/cataloglist"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/catalogread"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/deny"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/browse/selectstep"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/filelist"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/fileread"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/fileremove"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/fileupdate"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/fileupload"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/productcreate"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/productlist"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/productread"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/productremove"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/productupdate"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/storecreate"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/subcreate"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/subread"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/subremove"
	"github.com/magabrotheeeer/digital-store/internal/http/handlers/inventory/subupdate"
	"github.com/magabrotheeeer/digital-store/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/digital-store/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/digital-store/internal/services/catalog"
	inventoryservice "github.com/magabrotheeeer/digital-store/internal/services/inventory"
	purchaseservice "github.com/magabrotheeeer/digital-store/internal/services/purchase"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	inventoryService *inventoryservice.Service,
	catalogService *catalogservice.Service,
	purchaseService *purchaseservice.Service,
	mediaRoot string,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/signup", signup.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/refresh", refresh.New(logger, authService).ServeHTTP)

		// Витрина и корзина: доступны любому вошедшему пользователю
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Route("/catalog", func(r chi.Router) {
				registerBuyable(r, logger, catalogService, purchaseService,
					"products", cataloglist.KindProducts, catalogread.KindProduct, purchaseservice.KindProduct)
				registerBuyable(r, logger, catalogService, purchaseService,
					"files", cataloglist.KindFiles, catalogread.KindFile, purchaseservice.KindFile)
				registerBuyable(r, logger, catalogService, purchaseService,
					"subscriptions", cataloglist.KindSubscriptions, catalogread.KindSubscription, purchaseservice.KindSubscription)

				r.Get("/stores", cataloglist.New(logger, catalogService, cataloglist.KindStores).ServeHTTP)
				r.Get("/stores/{id}", catalogread.New(logger, catalogService, catalogread.KindStore).ServeHTTP)
			})

			r.Get("/cart", cartread.New(logger, catalogService).ServeHTTP)
		})

		// Управление ассортиментом: только для владельцев магазинов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.OwnerOnlyMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/store", storecreate.New(logger, inventoryService).ServeHTTP)

			r.Post("/products", productcreate.New(logger, inventoryService).ServeHTTP)
			r.Get("/products", productlist.New(logger, inventoryService).ServeHTTP)
			r.Get("/products/{id}", productread.New(logger, inventoryService).ServeHTTP)
			r.Put("/products/{id}", productupdate.New(logger, inventoryService).ServeHTTP)
			r.Patch("/products/{id}", productupdate.New(logger, inventoryService).ServeHTTP)
			r.Delete("/products/{id}", productremove.New(logger, inventoryService).ServeHTTP)

			r.Post("/files", fileupload.New(logger, inventoryService).ServeHTTP)
			r.Get("/files", filelist.New(logger, inventoryService).ServeHTTP)
			r.Get("/files/{id}", fileread.New(logger, inventoryService).ServeHTTP)
			r.Put("/files/{id}", fileupdate.New(logger, inventoryService).ServeHTTP)
			r.Patch("/files/{id}", fileupdate.New(logger, inventoryService).ServeHTTP)
			r.Delete("/files/{id}", fileremove.New(logger, inventoryService).ServeHTTP)

			r.Post("/subscriptions", subcreate.New(logger, inventoryService).ServeHTTP)
			r.Get("/subscriptions/{id}", subread.New(logger, inventoryService).ServeHTTP)
			r.Put("/subscriptions/{id}", subupdate.New(logger, inventoryService).ServeHTTP)
			r.Patch("/subscriptions/{id}", subupdate.New(logger, inventoryService).ServeHTTP)
			r.Delete("/subscriptions/{id}", subremove.New(logger, inventoryService).ServeHTTP)
		})
	})

	// Содержимое файлов: ссылки выдает витрина после проверки прав
	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaRoot)))
	r.Handle("/media/*", fileServer)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// registerBuyable подключает полный набор маршрутов покупаемого вида каталога:
// список с подсказкой выбора, карточку, шаг покупки и отказ в удалении.
func registerBuyable(r chi.Router, logger *slog.Logger,
	catalogService *catalogservice.Service,
	purchaseService *purchaseservice.Service,
	path, listKind, readKind string, buyKind purchaseservice.Kind,
) {
	r.Get("/"+path, cataloglist.New(logger, catalogService, listKind).ServeHTTP)
	r.Post("/"+path, selectstep.New(logger, readKind).ServeHTTP)
	r.Get("/"+path+"/{id}", catalogread.New(logger, catalogService, readKind).ServeHTTP)
	r.Put("/"+path+"/{id}", buy.New(logger, purchaseService, buyKind).ServeHTTP)
	r.Patch("/"+path+"/{id}", buy.New(logger, purchaseService, buyKind).ServeHTTP)
	r.Delete("/"+path+"/{id}", deny.New(logger, readKind).ServeHTTP)
}
