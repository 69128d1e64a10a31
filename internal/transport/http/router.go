package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/metrics"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/handlers"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/middleware"
)

// Именованные permissions административных маршрутов.
const (
	PermUsersRead   = "users.read"
	PermUsersManage = "users.manage"
	PermRolesManage = "roles.manage"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Metrics  *metrics.Collector  // nil выключает сбор метрик запросов
	Gatherer prometheus.Gatherer // nil выключает /metrics
	Ready    func() bool         // readiness для /healthz; nil отключает проверку
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, mailCfg config.MailConfig, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, mailCfg)

	registerOperational(root, opts)
	registerRoutes(root, h, svc)

	return root
}

// registerOperational — служебные эндпойнты: liveness, readiness, метрики.
func registerOperational(r chi.Router, opts Options) {
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if opts.Ready != nil && !opts.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, svc *service.Service) {
	authn := middleware.Authenticate(svc)
	authnOpt := middleware.AuthenticateOptional(svc)

	// auth: публичная часть.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/refresh", h.Refresh)
	r.Get("/auth/verify-email", h.VerifyEmail)
	r.Post("/auth/resend-verification", h.ResendVerification)

	// auth: под сессией.
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/auth", h.CurrentUser)
		r.Post("/auth/signout", h.Signout)
	})

	// users: закрыто permissions.
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.With(middleware.RequirePermission(svc, PermUsersRead)).Get("/users", h.ListUsers)
		r.With(middleware.RequirePermission(svc, PermUsersRead)).Get("/users/{id}", h.GetUser)
		r.With(middleware.RequirePermission(svc, PermUsersManage)).Post("/users", h.CreateUser)
		r.With(middleware.RequirePermission(svc, PermUsersManage)).Patch("/users/{id}", h.UpdateUser)
		r.With(middleware.RequirePermission(svc, PermUsersManage)).Delete("/users/{id}", h.DeleteUser)
	})

	// roles и permissions.
	r.Group(func(r chi.Router) {
		r.Use(authn, middleware.RequirePermission(svc, PermRolesManage))
		r.Get("/roles", h.ListRoles)
		r.Post("/roles", h.CreateRole)
		r.Get("/roles/{id}", h.GetRole)
		r.Put("/roles/{id}", h.UpdateRole)
		r.Delete("/roles/{id}", h.DeleteRole)
		r.Get("/permissions", h.ListPermissions)
		r.Post("/permissions", h.CreatePermission)
	})

	// locations и меню: владелец под сессией.
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/locations", h.ListLocations)
		r.Post("/locations", h.CreateLocation)
		r.Get("/locations/{id}", h.GetLocation)
		r.Patch("/locations/{id}", h.RenameLocation)
		r.Delete("/locations/{id}", h.DeleteLocation)
		r.Get("/locations/{id}/orders", h.ListOrders)
		r.Patch("/menus/{id}", h.UpdateMenu)
		r.Post("/menus/{id}/articles", h.CreateArticle)
		r.Get("/menus/{id}/categories", h.ListCategories)
		r.Post("/menus/{id}/categories", h.CreateCategory)
		r.Delete("/menus/{id}/categories/{categoryID}", h.DeleteCategory)
		r.Patch("/articles/{id}", h.UpdateArticle)
		r.Delete("/articles/{id}", h.DeleteArticle)
		r.Patch("/orders/{id}", h.SetOrderStatus)
	})

	// публичная витрина и гостевые заказы.
	r.Get("/locations/slug/{slug}", h.GetLocationBySlug)
	r.With(authnOpt).Get("/menus/{id}/articles", h.ListArticles)
	r.Post("/orders", h.PlaceOrder)
}
