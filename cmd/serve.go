package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
)

// DegradedHeader lists the auxiliary sources missing from a response.
const DegradedHeader = "X-HealthMap-Unavailable"

var servePort int

// viewServer serves read-only views of freshly loaded snapshots. Every
// request triggers its own load.
type viewServer struct {
	loader     snapshotLoader
	monitoring config.MonitoringConfig
	now        func() time.Time
}

// newRouter wires the view routes. gatherer backs /metrics.
func newRouter(l snapshotLoader, gatherer prometheus.Gatherer, origins []string, mcfg config.MonitoringConfig) http.Handler {
	s := &viewServer{loader: l, monitoring: mcfg, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{DegradedHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/areas", s.handleAreas)
		r.Get("/correlations", s.handleCorrelations)
	})
	r.Get("/export/{kind}", s.handleExport)

	return r
}

// snapshot loads src and writes the failure response itself when the
// primary source is down.
func (s *viewServer) snapshot(w http.ResponseWriter, r *http.Request, src dashboard.Sources) (*dashboard.Snapshot, bool) {
	snap, err := load(r.Context(), s.loader, src)
	if err != nil {
		zap.L().Warn("view load failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return nil, false
	}
	if snap.Degraded() {
		w.Header().Set(DegradedHeader, strings.Join(sourceNames(snap.Failed), ","))
	}
	return snap, true
}

func (s *viewServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r, dashboard.DashboardSources())
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(snap, s.monitoring))
}

func (s *viewServer) handleAreas(w http.ResponseWriter, r *http.Request) {
	src := dashboard.AnalyticsSources()
	if d := r.URL.Query().Get("days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil || days <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		src = dashboard.SignalsSources(days)
	}

	snap, ok := s.snapshot(w, r, src)
	if !ok {
		return
	}
	level, err := aggregate.ParseLevelFilter(r.URL.Query().Get("level"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newSignalsView(snap, level))
}

func (s *viewServer) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r, dashboard.AnalyticsSources())
	if !ok {
		return
	}
	matched, _ := strconv.ParseBool(r.URL.Query().Get("matched"))
	writeJSON(w, http.StatusOK, correlations(snap, matched))
}

func (s *viewServer) handleExport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !validExportKind(kind) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown export kind %q", kind)})
		return
	}

	q := r.URL.Query()
	var priorities []string
	if p := q.Get("priority"); p != "" {
		priorities = strings.Split(p, ",")
	}
	filter, err := parseAssessmentFilter(priorities, q.Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key, err := aggregate.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	snap, ok := s.snapshot(w, r, dashboard.ReportSources())
	if !ok {
		return
	}
	file, err := renderExport(snap, kind, exportOptions{Filter: filter, Sort: key}, s.now())
	if err != nil {
		zap.L().Error("render export failed", zap.String("kind", kind), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func validExportKind(kind string) bool {
	for _, k := range exportKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newMetricsRegistry returns a registry with the Go runtime and process
// collectors registered.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP view server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		client, err := newClient("serve")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := newMetricsRegistry()
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(newMetricsLoader(client, reg), reg, cfg.Server.AllowedOrigins, cfg.Monitoring),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("backend", cfg.Backend.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
