package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/vhi-dashboard/internal/dashboard"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the view service behind the routes.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Table(ctx context.Context, q domain.Query) ([]domain.TableRow, error)
	Weekly(ctx context.Context, q domain.Query) ([]domain.YearSeries, error)
	Comparison(ctx context.Context, q domain.Query) ([]domain.RegionBox, error)
	Regions() []domain.Region
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	ClearCache() bool
}

// Server exposes the control panel, the JSON API, rendered charts, exports
// and the health, readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server routing every dashboard endpoint.
func NewServer(addr string, dash Dashboard, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:   dash,
		logger: logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePanel)

	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/table", s.handleTable)
		r.Get("/table.csv", s.handleTableExport(exportCSV))
		r.Get("/table.xlsx", s.handleTableExport(exportXLSX))
		r.Get("/weekly", s.handleWeekly)
		r.Get("/comparison", s.handleComparison)
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/cache/clear", s.handleCacheClear)
	})

	r.Get("/charts/weekly.{format}", s.handleWeeklyChart)
	r.Get("/charts/comparison.{format}", s.handleComparisonChart)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(dash))
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
