package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nzvengeance/gw2style/internal/backend"
	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/equipment"
	"github.com/nzvengeance/gw2style/internal/filters"
	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/models"
	"github.com/nzvengeance/gw2style/internal/skins"
	syncsvc "github.com/nzvengeance/gw2style/internal/sync"
	"github.com/nzvengeance/gw2style/internal/tagging"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// --- Dependencies ---

type TagGenerator interface {
	Generate(ctx context.Context, characterName, tabName, apiKey string) (*tagging.Result, error)
}

type SkinIndex interface {
	Search(query, skinType string, limit int) []models.SnapshotSkin
	ByType(skinType string) []models.SnapshotSkin
	Info() skins.Info
}

type PostSource interface {
	ListPosts(ctx context.Context, page, limit int) (*models.PostPage, error)
	PopularPosts(ctx context.Context, page, limit int) (*models.PostPage, error)
	SearchPosts(ctx context.Context, q backend.SearchQuery) (*models.PostPage, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
}

type EquipmentResolver interface {
	Resolve(ctx context.Context, items []models.EquipmentItem) (*equipment.Display, error)
}

type SkinSyncer interface {
	Status(ctx context.Context) syncsvc.Status
	SyncSkins(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type SyncHistory interface {
	GetLatestSyncHistory(ctx context.Context, limit int) ([]models.SyncHistory, error)
}

// Deps are the services the API is built on. Vocabulary defaults to
// filters.DefaultVocabulary.
type Deps struct {
	Tagger     TagGenerator
	Skins      SkinIndex
	Posts      PostSource
	Equipment  EquipmentResolver
	Sync       SkinSyncer
	History    SyncHistory
	DB         Pinger
	Vocabulary *filters.Vocabulary
}

type Server struct {
	cfg        *config.Config
	deps       Deps
	vocab      *filters.Vocabulary
	tagLimiter *rate.Limiter
	startedAt  time.Time
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	vocab := deps.Vocabulary
	if vocab == nil {
		vocab = filters.DefaultVocabulary()
	}
	return &Server{
		cfg:        cfg,
		deps:       deps,
		vocab:      vocab,
		tagLimiter: newPerMinuteLimiter(cfg.TagRequestsPerMin),
		startedAt:  time.Now(),
	}
}

// newPerMinuteLimiter allows n requests a minute with bursts of n. n <= 0
// disables limiting.
func newPerMinuteLimiter(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthCheck)
		r.Get("/status", s.getStatus)

		// Wardrobe skin search
		r.Route("/skins", func(r chi.Router) {
			r.Get("/", s.searchSkins)
			r.Get("/info", s.skinInfo)
		})

		// Tag generation
		r.Route("/tags", func(r chi.Router) {
			r.With(s.rateLimitTags).Post("/generate", s.generateTags)
			r.Post("/categorize", s.categorizeTags)
		})

		// Gallery filters
		r.Route("/filters", func(r chi.Router) {
			r.Get("/", s.listFilters)
			r.Get("/normalize", s.normalizeFilters)
			r.Post("/toggle", s.toggleFilter)
		})

		// Posts backend
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.listPosts)
			r.Get("/popular", s.popularPosts)
			r.Get("/search", s.searchPosts)
			r.Get("/{id}", s.getPost)
			r.Get("/{id}/equipment", s.getPostEquipment)
		})

		r.Post("/equipment/resolve", s.resolveEquipment)

		// Sync management
		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", s.getSyncStatus)
			r.Post("/skins", s.triggerSkinSync)
		})
	})

	return r
}

// --- Middleware ---

func (s *Server) rateLimitTags(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.tagLimiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded - please wait before generating more tags")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Health & Status ---

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.deps.DB.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"skin_store":     s.cfg.SkinStore,
	}
	if s.deps.Skins != nil {
		status["skins"] = s.deps.Skins.Info()
	}
	if s.deps.Sync != nil {
		status["sync"] = s.deps.Sync.Status(r.Context())
	}
	writeJSON(w, http.StatusOK, status)
}

// --- Sync ---

func (s *Server) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}
	if s.deps.Sync != nil {
		resp["scheduler"] = s.deps.Sync.Status(r.Context())
	}
	if s.deps.History != nil {
		history, err := s.deps.History.GetLatestSyncHistory(r.Context(), 10)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["history"] = history
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) triggerSkinSync(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sync == nil {
		writeError(w, http.StatusServiceUnavailable, "Skin sync not configured")
		return
	}
	if s.deps.Sync.Status(r.Context()).Running {
		writeError(w, http.StatusConflict, syncsvc.ErrSyncInProgress.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := s.deps.Sync.SyncSkins(ctx); err != nil {
			log.Error().Err(err).Msg("manual skin sync failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Skin sync started",
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps service errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error, action string) {
	var gwErr *gw2.UpstreamError
	var beErr *backend.UpstreamError

	switch {
	case errors.Is(err, tagging.ErrMissingInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, equipment.ErrEmptyBlob):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, action+" timed out")
	case errors.As(err, &gwErr):
		log.Warn().Err(err).Str("endpoint", gwErr.Endpoint).Int("status", gwErr.StatusCode).Msg(action + " failed upstream")
		writeError(w, http.StatusBadGateway, gwErr.Error())
	case errors.As(err, &beErr):
		log.Warn().Err(err).Str("endpoint", beErr.Endpoint).Int("status", beErr.StatusCode).Msg(action + " failed upstream")
		writeError(w, http.StatusBadGateway, beErr.Error())
	default:
		log.Error().Err(err).Msg(action + " failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
