package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/api/handlers"
	"github.com/veritum/veritum-pro/internal/api/middleware"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/catalog"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/identity"
	"github.com/veritum/veritum-pro/internal/lawsuits"
	"github.com/veritum/veritum-pro/internal/permissions"
	"github.com/veritum/veritum-pro/internal/storage"
	"github.com/veritum/veritum-pro/internal/tenant"
	"github.com/veritum/veritum-pro/internal/users"
	"github.com/veritum/veritum-pro/pkg/crypto"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB              *gorm.DB
	Redis           *redis.Client
	Logger          *slog.Logger
	JWTService      *auth.JWTService
	AuthService     *auth.Service
	OAuthService    *auth.OAuthService
	Encryptor       *crypto.Encryptor
	TenantService   *tenant.Service
	CatalogSnapshot *catalog.Snapshot
	AIGateway       *ai.Gateway
	Storage         storage.Storage
	AsynqClient     *asynq.Client
	CookieDomain    string
	AllowedOrigins  []string
	RateLimitReqs   int
	RateLimitSecs   int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services shared by the handlers
	loader := identity.NewLoader(cfg.DB)
	resolver := permissions.NewResolver(cfg.DB)
	lawsuitService := lawsuits.NewService(cfg.DB)
	planService := billing.NewPlanService(cfg.DB)
	subscriptionService := billing.NewSubscriptionService(cfg.DB)
	catalogService := catalog.NewService(cfg.DB, cfg.Redis)
	userService := users.NewService(cfg.DB)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.OAuthService)
	meHandler := handlers.NewMeHandler(cfg.DB, loader, resolver, cfg.TenantService)
	credentialsHandler := handlers.NewCredentialsHandler(cfg.TenantService, cfg.CookieDomain)
	modulesHandler := handlers.NewModulesHandler(loader, resolver)
	lawsuitsHandler := handlers.NewLawsuitsHandler(lawsuitService)
	plansHandler := handlers.NewPlansHandler(planService, subscriptionService)
	suitesHandler := handlers.NewSuitesHandler(catalogService, cfg.CatalogSnapshot)
	usersHandler := handlers.NewUsersHandler(userService)
	aiHandler := handlers.NewAIHandler(cfg.DB, cfg.AIGateway, cfg.TenantService, cfg.AsynqClient)
	avatarHandler := handlers.NewAvatarHandler(cfg.DB, cfg.Storage)
	emailHandler := handlers.NewEmailSettingsHandler(cfg.DB, cfg.Encryptor)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/oauth/url", authHandler.OAuthURL)
		r.Post("/auth/oauth/exchange", authHandler.OAuthExchange)
		r.Get("/plans", plansHandler.ListPublic)
		r.Get("/suites", suitesHandler.ListPublic)
		r.Get("/schema", handlers.Schema)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Post("/auth/reset", authHandler.CompleteReset)

			r.Get("/me", meHandler.Me)
			r.Get("/me/preferences", meHandler.GetPreferences)
			r.Put("/me/preferences", meHandler.UpdatePreferences)
			r.Post("/me/avatar", avatarHandler.Upload)

			r.Put("/me/credentials", credentialsHandler.Put)
			r.Delete("/me/credentials", credentialsHandler.Delete)

			r.Get("/modules", modulesHandler.List)
			r.Get("/modules/{key}", modulesHandler.Get)

			r.Route("/lawsuits", func(r chi.Router) {
				r.Get("/", lawsuitsHandler.List)
				r.Post("/", lawsuitsHandler.Create)
				r.Get("/{id}", lawsuitsHandler.Get)
				r.Put("/{id}", lawsuitsHandler.Update)
				r.Put("/{id}/status", lawsuitsHandler.UpdateStatus)
				r.Post("/{id}/archive", lawsuitsHandler.Archive)
			})

			r.Post("/subscriptions", plansHandler.Subscribe)
			r.Get("/subscriptions/current", plansHandler.CurrentSubscription)
			r.Delete("/subscriptions/current", plansHandler.CancelSubscription)

			r.Route("/ai", func(r chi.Router) {
				r.Post("/draft", aiHandler.Draft)
				r.Post("/predict", aiHandler.PredictOutcome)
				r.Post("/sentiment", aiHandler.AnalyzeSentiment)
				r.Post("/translate", aiHandler.Translate)
				r.Post("/translate-plain", aiHandler.TranslatePlain)
				r.Post("/translate/batch", aiHandler.TranslateBatch)
				r.Get("/jobs/{id}", aiHandler.GetJob)
			})

			// Administration
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleOwner, models.RoleAdmin))

				r.Route("/admin/plans", func(r chi.Router) {
					r.Get("/", plansHandler.ListAll)
					r.Post("/", plansHandler.Create)
					r.Get("/{id}", plansHandler.Get)
					r.Put("/{id}", plansHandler.Update)
					r.Delete("/{id}", plansHandler.Delete)
					r.Put("/{id}/permissions", plansHandler.ReplaceGrants)
				})

				r.Route("/admin/suites", func(r chi.Router) {
					r.Get("/", suitesHandler.ListAll)
					r.Post("/", suitesHandler.Create)
					r.Get("/{id}", suitesHandler.Get)
					r.Put("/{id}", suitesHandler.Update)
					r.Delete("/{id}", suitesHandler.Delete)
					r.Post("/{id}/features", suitesHandler.CreateFeature)
					r.Delete("/features/{featureID}", suitesHandler.DeleteFeature)
				})

				r.Route("/admin/users", func(r chi.Router) {
					r.Get("/", usersHandler.List)
					r.Post("/operators", usersHandler.CreateOperator)
					r.Get("/{id}", usersHandler.Get)
					r.Put("/{id}", usersHandler.Update)
					r.Put("/{id}/plan", usersHandler.AssignPlan)
					r.Post("/{id}/deactivate", usersHandler.Deactivate)
					r.Post("/{id}/reactivate", usersHandler.Reactivate)
				})

				r.Get("/admin/email-settings", emailHandler.Get)
				r.Put("/admin/email-settings", emailHandler.Put)
			})
		})
	})

	return &Router{r}
}
