package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"weatherdash/logger"
	"weatherdash/manager"
	"weatherdash/metrics"
	"weatherdash/view"
)

type Options struct {
	SessionTTL     time.Duration
	AllowedOrigins []string
}

type Server struct {
	sessions *sessions
	origins  []string
	now      func() time.Time
}

// New returns a dashboard server; factory builds the Dashboard for each new
// browser session.
func New(factory func() *manager.Dashboard, opts Options) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		sessions: newSessions(opts.SessionTTL, factory),
		origins:  origins,
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Post("/locate", s.handleLocate)
	r.Post("/day/{ts}", s.handleSelectDay)
	r.Post("/back", s.handleBack)
	r.Get("/api/state", s.handleState)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.sessions.janitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("weatherdash started", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Infow("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

// actionContext keeps upstream calls alive when the browser drops the
// connection; the HTTP client timeout still bounds them.
func actionContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.get(w, r)

	// A session can also be created by an action after eviction, so the
	// initial load keys off the dashboard state rather than the cookie.
	_, idle := sess.dashboard.State().(manager.Idle)
	if idle {
		sess.dashboard.Start(actionContext(r))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := view.HTML(w, sess.dashboard.Snapshot(), view.HTMLOptions{Now: s.now(), Geolocate: idle})
	if err != nil {
		logger.Errorw("render dashboard", "error", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	sess, _ := s.sessions.get(w, r)
	sess.dashboard.Search(actionContext(r), r.FormValue("q"))
	redirectHome(w, r)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	lat, err := strconv.ParseFloat(r.FormValue("lat"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lat parameter"})
		return
	}
	lon, err := strconv.ParseFloat(r.FormValue("lon"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lon parameter"})
		return
	}

	sess, _ := s.sessions.get(w, r)
	sess.dashboard.Locate(actionContext(r), lat, lon)
	redirectHome(w, r)
}

func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(chi.URLParam(r, "ts"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day timestamp"})
		return
	}

	sess, _ := s.sessions.get(w, r)
	if _, err := sess.dashboard.SelectDay(actionContext(r), ts); err != nil {
		if errors.Is(err, manager.ErrNoSuchDay) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "day is not in the current forecast"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.get(w, r)
	sess.dashboard.Back()
	redirectHome(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.lookup(r)
	if !ok {
		writeJSON(w, http.StatusOK, manager.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, sess.dashboard.Snapshot())
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
