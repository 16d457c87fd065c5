package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/export"
	"github.com/santican/clinic-intake/internal/observability/metrics"
	"github.com/santican/clinic-intake/internal/stats"
)

// StatsHandler serves the department statistics report.
type StatsHandler struct {
	svc     *stats.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStatsHandler creates the statistics handler.
func NewStatsHandler(svc *stats.Service, m *metrics.Metrics, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Report)
	r.Get("/export", h.Export)
	r.Get("/print", h.Print)
	r.Delete("/", h.DeleteFiltered)
	return r
}

// parseFilter reads department, month and year query parameters. Month and
// year accept "all" or empty as no selection.
func parseFilter(r *http.Request) (stats.Filter, bool) {
	f := stats.Filter{Department: r.URL.Query().Get("department")}

	if raw := strings.ToLower(r.URL.Query().Get("month")); raw != "" && raw != stats.FilterAll {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			return f, false
		}
		f.Month = n
	}
	if raw := strings.ToLower(r.URL.Query().Get("year")); raw != "" && raw != stats.FilterAll {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, false
		}
		f.Year = n
	}
	return f, true
}

// Report handles GET /stats?department=...&month=...&year=...
func (h *StatsHandler) Report(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(r)
	if !ok {
		jsonError(w, "invalid month or year", http.StatusBadRequest)
		return
	}

	rep, fromCache, err := h.svc.Report(r.Context(), f)
	if err != nil {
		h.logger.Error("stats report failed", zap.Error(err))
		jsonError(w, "failed to build statistics", http.StatusInternalServerError)
		return
	}

	h.metrics.StatsQueries.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"header":    stats.ReportHeader,
		"rows":      rep.Rows(),
		"fromCache": fromCache,
	})
}

// Export handles GET /stats/export?department=...&month=...&year=...
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(r)
	if !ok {
		jsonError(w, "invalid month or year", http.StatusBadRequest)
		return
	}

	rep, _, err := h.svc.Report(r.Context(), f)
	if err != nil {
		jsonError(w, "failed to build statistics", http.StatusInternalServerError)
		return
	}

	h.metrics.Exports.WithLabelValues("stats_csv").Inc()
	writeCSV(w, rep.Filename(), rep.CSV())
}

// Print handles GET /stats/print?department=...&month=...&year=...
func (h *StatsHandler) Print(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(r)
	if !ok {
		jsonError(w, "invalid month or year", http.StatusBadRequest)
		return
	}

	rep, _, err := h.svc.Report(r.Context(), f)
	if err != nil {
		jsonError(w, "failed to build statistics", http.StatusInternalServerError)
		return
	}

	html, err := export.PrintTable(export.TableDocument{
		Title:  "Department Statistics",
		Header: stats.ReportHeader,
		Rows:   rep.Rows(),
	})
	if err != nil {
		jsonError(w, "failed to render print document", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("stats_print").Inc()
	writeHTML(w, html)
}

// DeleteFiltered handles DELETE /stats?department=...&month=...&year=...
// It removes every record the same selection would aggregate.
func (h *StatsHandler) DeleteFiltered(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		jsonError(w, "confirmation required", http.StatusBadRequest)
		return
	}
	f, ok := parseFilter(r)
	if !ok {
		jsonError(w, "invalid month or year", http.StatusBadRequest)
		return
	}

	n, err := h.svc.DeleteFiltered(r.Context(), f)
	if err != nil {
		h.logger.Error("filtered delete failed", zap.Error(err))
		jsonError(w, "failed to delete records", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordsDeleted.Add(float64(n))
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
