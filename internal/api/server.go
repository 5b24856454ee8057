package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/auth"
	"github.com/privasee/footprint/internal/config"
	"github.com/privasee/footprint/internal/lookup"
	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/ner"
	"github.com/privasee/footprint/internal/notifications"
	"github.com/privasee/footprint/internal/pii"
	"github.com/privasee/footprint/internal/queue"
	"github.com/privasee/footprint/internal/reports"
	"github.com/privasee/footprint/internal/scan"
	"github.com/privasee/footprint/internal/scheduler"
	"github.com/privasee/footprint/internal/store"
)

type Server struct {
	cfg    *config.Config
	router *chi.Mux
	store  *store.Store
	http   *http.Server
	logger *slog.Logger

	authService *auth.Service
	userStore   auth.UserStore

	queue   *queue.Queue
	workers []*queue.Worker
	runner  *scan.Runner

	analyzer *ner.Analyzer

	scheduler      *scheduler.Scheduler
	schedulerStore scheduler.Store

	reportGenerator *reports.Generator

	notificationService *notifications.Service
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(cfg *config.Config, opts ...ServerOption) (*Server, error) {
	st, err := store.New(store.Config{
		DSN:          cfg.Database.DSN(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.userStore = auth.NewPostgresUserStore(st.DB())
	s.authService = auth.NewService(auth.Config{
		JWTSecret:          cfg.Auth.JWTSecret,
		AccessTokenExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.Auth.RefreshTokenExpiry,
	}, s.userStore)

	s.queue, err = queue.New(queue.Config{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing queue: %w", err)
	}

	s.notificationService = notifications.NewService(notifications.Config{
		MinRiskLevel: cfg.Notifications.MinRiskLevel,
		Slack: notifications.SlackConfig{
			WebhookURL: cfg.Notifications.Slack.WebhookURL,
			Channel:    cfg.Notifications.Slack.Channel,
			Username:   "Footprint Bot",
			Enabled:    cfg.Notifications.Slack.Enabled,
		},
		Email: notifications.EmailConfig{
			SMTPHost: cfg.Notifications.Email.SMTPHost,
			SMTPPort: cfg.Notifications.Email.SMTPPort,
			Username: cfg.Notifications.Email.Username,
			Password: cfg.Notifications.Email.Password,
			From:     cfg.Notifications.Email.From,
			To:       cfg.Notifications.Email.To,
			Enabled:  cfg.Notifications.Email.Enabled,
		},
	}, s.logger)

	s.runner = scan.NewRunner(st, s.breachLookup(), lookup.NewSyntheticExposures(), s.notificationService, s.logger)

	for i := 0; i < cfg.Queue.Workers; i++ {
		s.workers = append(s.workers, queue.NewWorker(queue.WorkerConfig{
			Queue:        s.queue,
			Store:        st,
			Runner:       s.runner,
			PollInterval: cfg.Queue.PollInterval,
			JobTimeout:   cfg.Queue.JobTimeout,
		}))
	}

	var remote *ner.Client
	if cfg.NER.Enabled && cfg.NER.InferenceURL != "" {
		remote = ner.NewClient(cfg.NER.InferenceURL, cfg.NER.APIToken, cfg.NER.Timeout)
	}
	s.analyzer = ner.NewAnalyzer(remote, pii.New(), cfg.NER.MinConfidence, s.logger)

	s.schedulerStore = scheduler.NewPostgresStore(st.DB())
	s.scheduler = scheduler.NewScheduler(s.schedulerStore, s.logger)
	s.registerSchedulerHandlers()

	s.reportGenerator = reports.NewGenerator()

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// breachLookup picks the breach source from config. Live mode still
// carries the synthetic generator as a fallback so an upstream outage
// degrades instead of failing scans.
func (s *Server) breachLookup() lookup.BreachLookup {
	if s.cfg.Lookup.Mode == "live" {
		hibp := lookup.NewHIBPClient(s.cfg.Lookup.HIBPBaseURL, s.cfg.Lookup.HIBPAPIKey, s.cfg.Lookup.Timeout)
		return lookup.NewFallbackBreachLookup(hibp, lookup.NewSyntheticBreaches(), s.logger)
	}
	return lookup.NewSyntheticBreaches()
}

func (s *Server) registerSchedulerHandlers() {
	handlers := &scheduler.DefaultHandlers{
		RescanFunc: func(ctx context.Context, targetEmail string) error {
			return s.rescanTarget(ctx, targetEmail)
		},
		DigestFunc: func(ctx context.Context, cfg map[string]string) error {
			counts, err := s.store.GetDigestCounts(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				return err
			}
			return s.notificationService.NotifyDailyDigest(ctx, notifications.DigestStats{
				Period:         "24h",
				ScansRun:       counts.ScansRun,
				FailedScans:    counts.FailedScans,
				CriticalScans:  counts.CriticalScans,
				HighRiskScans:  counts.HighRiskScans,
				NewBreaches:    counts.NewBreaches,
				TotalExposures: counts.NewExposures,
			})
		},
		CleanupFunc: func(ctx context.Context, olderThan time.Duration) error {
			deleted, err := s.store.DeleteScansOlderThan(ctx, olderThan)
			if err != nil {
				return err
			}
			s.logger.Info("cleaned up old scans", "deleted", deleted)
			return nil
		},
	}
	handlers.Register(s.scheduler)
}

// rescanTarget enqueues a fresh scan for every user who previously
// scanned the target email. Driven by the rescan_target scheduled job.
func (s *Server) rescanTarget(ctx context.Context, targetEmail string) error {
	userIDs, err := s.store.ListUserIDsByTarget(ctx, targetEmail)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		scanRecord := &models.FootprintScan{
			UserID:      userID,
			ScanType:    models.ScanTypeFull,
			TargetEmail: targetEmail,
		}
		if err := s.store.CreateScan(ctx, scanRecord); err != nil {
			return err
		}
		job := &queue.Job{
			ScanID:   scanRecord.ID,
			UserID:   userID,
			ScanType: scanRecord.ScanType,
		}
		if err := s.queue.EnqueueScanJob(ctx, job); err != nil {
			return err
		}
	}

	s.logger.Info("scheduled rescan enqueued", "target", targetEmail, "users", len(userIDs))
	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.corsMiddleware())
}

func (s *Server) corsMiddleware() func(http.Handler) http.Handler {
	allowOrigin := s.cfg.Server.CORSAllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
		s.logger.Warn("CORS Allow-Origin set to '*' - configure server.cors_allow_origin in production")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readyCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)

			r.Post("/auth/logout", s.logout)
			r.Get("/auth/me", s.getCurrentUser)

			r.Get("/consent", s.getConsent)
			r.Put("/consent", s.updateConsent)

			r.Route("/scans", func(r chi.Router) {
				r.Get("/", s.listScans)
				r.Post("/", s.createScan)
				r.Get("/{scanID}", s.getScan)
				r.Delete("/{scanID}", s.deleteScan)
				r.Post("/{scanID}/breaches", s.checkBreaches)
				r.Get("/{scanID}/breaches", s.listBreaches)
				r.Post("/{scanID}/social", s.scanSocial)
				r.Get("/{scanID}/social", s.listSocialExposures)
				r.Post("/{scanID}/assess", s.assessScan)
				r.Post("/{scanID}/recommendations", s.generateRecommendations)
			})

			r.Post("/analyze", s.analyzeText)
			r.Route("/analyses", func(r chi.Router) {
				r.Get("/", s.listAnalyses)
				r.Get("/{analysisID}", s.getAnalysis)
			})

			r.Get("/dashboard/summary", s.getDashboardSummary)
			r.Get("/reports/privacy", s.getPrivacyReport)

			r.Route("/queue", func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin))
				r.Get("/stats", s.getQueueStats)
				r.Get("/jobs/{jobID}", s.getJobProgress)
				r.Get("/workers", s.getActiveWorkers)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin))
				r.Get("/", s.listScheduledJobs)
				r.Post("/", s.createScheduledJob)
				r.Get("/{jobID}", s.getScheduledJob)
				r.Put("/{jobID}", s.updateScheduledJob)
				r.Delete("/{jobID}", s.deleteScheduledJob)
				r.Post("/{jobID}/run", s.runScheduledJobNow)
				r.Get("/{jobID}/executions", s.getJobExecutions)
			})
		})
	})
}

func (s *Server) Run(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		s.logger.Error("failed to start scheduler", "error", err)
	}

	for _, w := range s.workers {
		if err := w.Start(ctx); err != nil {
			s.logger.Error("failed to start worker", "worker_id", w.ID(), "error", err)
		}
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.scheduler.Stop()
		for _, w := range s.workers {
			w.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
	Meta    *apiMeta    `json:"meta,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiMeta struct {
	Total  int `json:"total,omitempty"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondJSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *apiMeta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	})
}

// userIDFromRequest resolves the authenticated user's ID from the JWT
// claims placed on the context by the auth middleware.
func userIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) readyCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "db_unavailable", "Database not available")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
