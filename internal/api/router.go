package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/storefront-backend/internal/api/handlers"
	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
	"github.com/baharkarakas/storefront-backend/internal/middleware"
	"github.com/baharkarakas/storefront-backend/internal/models"
	"github.com/baharkarakas/storefront-backend/internal/services"
)

type RouterDeps struct {
	Log  *slog.Logger
	Prod bool

	Users   *services.UserService
	Catalog *services.CatalogService
	Ratings *services.RatingService
	Carts   *services.CartService
	Stats   *services.StatsService

	// Limiter may be nil to disable rate limiting.
	Limiter     middleware.Limiter
	RateWindow  time.Duration
	MaxUpload   int64
	CORSOrigins []string
}

func NewRouter(d RouterDeps) http.Handler {
	errs := httpx.Errors{Log: d.Log, Prod: d.Prod}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logging(d.Log),
		middleware.Recover(errs),
		middleware.HTTPMetrics,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.TokenHeader},
		ExposedHeaders: []string{httpx.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Users, errs)
	productH := handlers.NewProductHandler(d.Catalog, d.Ratings, d.MaxUpload, errs)
	cartH := handlers.NewCartHandler(d.Carts, errs)
	profileH := handlers.NewProfileHandler(d.Users, errs)
	adminH := handlers.NewAdminHandler(d.Stats, d.Catalog, d.Log, errs)
	imageH := handlers.NewImageHandler(d.Catalog, errs)

	authn := middleware.Authenticate(d.Users, errs)
	adminOnly := middleware.RequireRole(errs, models.RoleAdmin)
	anyUser := middleware.RequireRole(errs, models.RoleUser, models.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.Limiter, d.RateWindow, d.Log))

		// ---------- public ----------
		r.Post("/signup", authH.Signup)
		r.Post("/login", authH.Login)
		r.Get("/allproducts", productH.List)
		r.Get("/newcollections", productH.NewCollections)
		r.Get("/product/{id}", productH.Get)
		r.Get("/images/*", imageH.Serve)

		// ---------- signed in ----------
		r.Group(func(r chi.Router) {
			r.Use(authn, anyUser)
			r.Post("/product/{id}/rate", productH.Rate)

			r.Post("/getcart", cartH.Get)
			r.Post("/addtocart", cartH.Add)
			r.Post("/removefromcart", cartH.Remove)
			r.Put("/updatecart", cartH.Update)
			r.Delete("/clearcart", cartH.Clear)
			r.Post("/prunecart", cartH.Prune)

			r.Get("/profile", profileH.Get)
			r.Put("/profile", profileH.Update)
			r.Put("/changepassword", profileH.ChangePassword)
		})

		// ---------- admin ----------
		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Post("/addproduct", productH.Create)
			r.Put("/product/{id}", productH.Update)
			r.Delete("/product/{id}", productH.Delete)
			r.Get("/admin/stats", adminH.Stats)
			r.Post("/admin/products/import", adminH.ImportProducts)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})
	return r
}
