package httpadapter

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
)

//go:embed templates/panel.html
var templateFS embed.FS

var panelTemplate = template.Must(template.ParseFS(templateFS, "templates/panel.html"))

// panelRowLimit caps the rows rendered into the HTML table. The exports
// always carry the full view.
const panelRowLimit = 1000

type panelData struct {
	Query      domain.Query
	Indicators []domain.Indicator
	Regions    []string
	Rows       []domain.TableRow
	Total      int
	Truncated  bool
	Params     template.URL
	Error      string

	YearMin, YearMax int
	WeekMin, WeekMax int
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}

	data := panelData{
		Query:      q,
		Indicators: domain.Indicators,
		Regions:    append([]string{domain.AllRegions}, regionNames(s.dash.Regions())...),
		Params:     template.URL(encodeQuery(q).Encode()), //nolint:gosec // values are URL-encoded
		YearMin:    domain.YearMin,
		YearMax:    domain.YearMax,
		WeekMin:    domain.WeekMin,
		WeekMax:    domain.WeekMax,
	}

	status := http.StatusOK
	rows, err := s.dash.Table(r.Context(), q)
	if err != nil {
		s.logger.Error("panel view failed", "error", err)
		status = http.StatusInternalServerError
		data.Error = err.Error()
	} else {
		data.Total = len(rows)
		if len(rows) > panelRowLimit {
			rows = rows[:panelRowLimit]
			data.Truncated = true
		}
		data.Rows = rows
	}

	var buf bytes.Buffer
	if err := panelTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func regionNames(regions []domain.Region) []string {
	out := make([]string, len(regions))
	for i, reg := range regions {
		out[i] = reg.Name
	}
	return out
}
