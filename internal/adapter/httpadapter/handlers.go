package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/vhi-dashboard/internal/chart"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/export"
	"github.com/go-chi/chi/v5"
)

type tableResponse struct {
	Query domain.Query      `json:"query"`
	Count int               `json:"count"`
	Rows  []domain.TableRow `json:"rows"`
}

type weeklyResponse struct {
	Query  domain.Query        `json:"query"`
	Series []domain.YearSeries `json:"series"`
}

type comparisonResponse struct {
	Query   domain.Query       `json:"query"`
	Regions []domain.RegionBox `json:"regions"`
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.dash.Regions())
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	rows, err := s.dash.Table(r.Context(), q)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, tableResponse{Query: q, Count: len(rows), Rows: rows})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	series, err := s.dash.Weekly(r.Context(), q)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, weeklyResponse{Query: q, Series: series})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	boxes, err := s.dash.Comparison(r.Context(), q)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, comparisonResponse{Query: q, Regions: boxes})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]bool{"cleared": s.dash.ClearCache()})
}

// exportFormat writes table rows in one download format.
type exportFormat struct {
	ext         string
	contentType string
	write       func(io.Writer, []domain.TableRow, domain.Indicator) error
}

var (
	exportCSV  = exportFormat{ext: "csv", contentType: "text/csv; charset=utf-8", write: export.CSV}
	exportXLSX = exportFormat{
		ext:         "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		write:       export.XLSX,
	}
)

func (s *Server) handleTableExport(f exportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := s.query(w, r)
		if !ok {
			return
		}
		rows, err := s.dash.Table(r.Context(), q)
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		// Buffer so an encoding failure can still become an error response.
		var buf bytes.Buffer
		if err := f.write(&buf, rows, q.Indicator); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", f.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "vhi_table."+f.ext))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) handleWeeklyChart(w http.ResponseWriter, r *http.Request) {
	format, q, ok := s.chartRequest(w, r)
	if !ok {
		return
	}
	series, err := s.dash.Weekly(r.Context(), q)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeChart(w, r, format, func(out io.Writer) error {
		return chart.Weekly(out, series, q.Indicator, format)
	})
}

func (s *Server) handleComparisonChart(w http.ResponseWriter, r *http.Request) {
	format, q, ok := s.chartRequest(w, r)
	if !ok {
		return
	}
	boxes, err := s.dash.Comparison(r.Context(), q)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeChart(w, r, format, func(out io.Writer) error {
		return chart.Comparison(out, boxes, q.Indicator, format)
	})
}

func (s *Server) chartRequest(w http.ResponseWriter, r *http.Request) (chart.Format, domain.Query, bool) {
	format, err := chart.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return "", domain.Query{}, false
	}
	q, ok := s.query(w, r)
	return format, q, ok
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, format chart.Format, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("render chart: %w", err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// query parses the filter parameters, answering 400 on a malformed value.
func (s *Server) query(w http.ResponseWriter, r *http.Request) (domain.Query, bool) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return domain.Query{}, false
	}
	return q, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
