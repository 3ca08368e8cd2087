package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicescribe/voicescribe/internal/api/handlers"
	"github.com/voicescribe/voicescribe/internal/api/middleware"
	"github.com/voicescribe/voicescribe/internal/cache"
	"github.com/voicescribe/voicescribe/internal/history"
	"github.com/voicescribe/voicescribe/internal/pipeline"
)

type Router struct {
	mux     *chi.Mux
	db      *pgxpool.Pool
	redis   *redis.Client
	pipe    *pipeline.Pipeline
	cache   *cache.TranscriptCache
	history *history.Store
	models  handlers.ModelIDs
}

func NewRouter(pipe *pipeline.Pipeline, tc *cache.TranscriptCache, hs *history.Store, db *pgxpool.Pool, rdb *redis.Client, models handlers.ModelIDs) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		db:      db,
		redis:   rdb,
		pipe:    pipe,
		cache:   tc,
		history: hs,
		models:  models,
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

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Pipeline endpoints
	t := handlers.NewTranscribeHandler(rt.pipe, rt.cache, rt.history, rt.models)
	r.Route("/api", func(r chi.Router) {
		r.Post("/full", t.FullPipeline)
		r.Get("/history", t.History)
	})

	return r
}
