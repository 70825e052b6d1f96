package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/safetube/safetube-backend/internal/api/handlers"
	"github.com/safetube/safetube-backend/internal/api/middleware"
	"github.com/safetube/safetube-backend/internal/audit"
	"github.com/safetube/safetube-backend/internal/auth"
	"github.com/safetube/safetube-backend/internal/cache"
	"github.com/safetube/safetube-backend/internal/config"
	"github.com/safetube/safetube-backend/internal/filter"
	"github.com/safetube/safetube-backend/internal/queue"
	"github.com/safetube/safetube-backend/internal/webhook"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	redisCache := cache.NewCache(rt.redis)
	store := filter.NewStore(rt.db)
	cachedRules := filter.NewCachedSource(store, redisCache, rt.cfg.Filter.SnapshotTTL)
	engine := filter.NewEngine(cachedRules, filter.NewMatcher())

	auditSvc := audit.NewService(rt.db)
	tasks := queue.NewClient(rt.cfg.Redis)
	webhookSvc := webhook.NewService(rt.db, tasks)
	rulesSvc := filter.NewService(store, cachedRules, auditSvc, webhookSvc)

	authSvc := auth.NewService(rt.cfg.Auth, redisCache)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		authH := handlers.NewAuthHandler(authSvc)
		r.Post("/auth/pin", authH.VerifyPIN)

		// Device endpoints: filtering must work without the parent PIN.
		filterH := handlers.NewFilterHandler(engine, store)
		r.Route("/filter", func(r chi.Router) {
			r.Post("/videos", filterH.FilterVideos)
			r.Post("/search", filterH.CheckSearch)
			r.Get("/stats", filterH.Stats)
			r.Get("/channels/{channelID}/blocked", filterH.ChannelBlocked)
		})

		// Parent endpoints: rule and webhook management.
		rulesH := handlers.NewRulesHandler(rulesSvc)
		webhookH := handlers.NewWebhookHandler(webhookSvc)
		r.Group(func(r chi.Router) {
			r.Use(authSvc.RequireParent)

			r.Route("/filters", func(r chi.Router) {
				r.Route("/terms", func(r chi.Router) {
					r.Get("/", rulesH.ListTerms)
					r.Post("/", rulesH.CreateTerm)
					r.Put("/{id}", rulesH.UpdateTerm)
					r.Delete("/{id}", rulesH.DeleteTerm)
					r.Patch("/{id}/enabled", rulesH.SetTermEnabled)
				})
				r.Route("/keywords", func(r chi.Router) {
					r.Get("/", rulesH.ListKeywords)
					r.Post("/", rulesH.CreateKeyword)
					r.Put("/{id}", rulesH.UpdateKeyword)
					r.Delete("/{id}", rulesH.DeleteKeyword)
					r.Patch("/{id}/enabled", rulesH.SetKeywordEnabled)
				})
				r.Route("/channels", func(r chi.Router) {
					r.Get("/", rulesH.ListChannels)
					r.Post("/", rulesH.CreateChannel)
					r.Delete("/{id}", rulesH.DeleteChannel)
					r.Delete("/by-channel-id/{channelID}", rulesH.DeleteChannelByChannelID)
					r.Patch("/{id}/enabled", rulesH.SetChannelEnabled)
				})
			})

			r.Route("/webhooks", func(r chi.Router) {
				r.Post("/", webhookH.Create)
				r.Get("/", webhookH.List)
				r.Delete("/{id}", webhookH.Delete)
			})
		})
	})

	return r
}
