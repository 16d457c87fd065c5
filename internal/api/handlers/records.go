package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/api/middleware"
	"github.com/santican/clinic-intake/internal/observability/metrics"
	"github.com/santican/clinic-intake/internal/records"
	"github.com/santican/clinic-intake/internal/store"
)

// RecordsHandler serves the self-service viewer and the admin browser.
type RecordsHandler struct {
	viewer  *records.Viewer
	admin   *records.Admin
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRecordsHandler creates the records handler.
func NewRecordsHandler(viewer *records.Viewer, admin *records.Admin, m *metrics.Metrics, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{viewer: viewer, admin: admin, metrics: m, logger: logger}
}

// ViewerRoutes returns the self-service routes. All of them require a valid
// type query parameter and operate on the requesting user's own records.
func (h *RecordsHandler) ViewerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequirePatientType)
	r.Get("/", h.ViewerList)
	r.Get("/export", h.ViewerExport)
	r.Get("/stats", h.ViewerStats)
	r.Get("/print", h.ViewerPrint)
	r.Delete("/", h.ViewerDeleteAll)
	r.Delete("/{id}", h.ViewerDelete)
	return r
}

// AdminRoutes returns the cross-user browser routes. The optional type query
// parameter filters; it is not required here.
func (h *RecordsHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.AdminList)
	r.Get("/export", h.AdminExport)
	r.Get("/history", h.AdminHistory)
	r.Get("/print", h.AdminPrint)
	r.Get("/{id}/print", h.AdminPrintRecord)
	r.Delete("/", h.AdminDeleteAll)
	r.Delete("/{id}", h.AdminDelete)
	return r
}

// ViewerList handles GET /records?type=...
func (h *RecordsHandler) ViewerList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cols, rows, err := h.viewer.Table(middleware.GetUsername(ctx), middleware.GetPatientType(ctx))
	if err != nil {
		h.logger.Error("viewer list failed", zap.Error(err))
		jsonError(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols, "rows": rows})
}

// ViewerExport handles GET /records/export?type=...
func (h *RecordsHandler) ViewerExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename, csv, err := h.viewer.ExportCSV(middleware.GetUsername(ctx), middleware.GetPatientType(ctx))
	if err != nil {
		jsonError(w, "failed to export records", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("viewer_csv").Inc()
	writeCSV(w, filename, csv)
}

// ViewerStats handles GET /records/stats?type=...
func (h *RecordsHandler) ViewerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename, csv, err := h.viewer.UserStats(middleware.GetUsername(ctx), middleware.GetPatientType(ctx))
	if err != nil {
		jsonError(w, "failed to build statistics", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("viewer_stats").Inc()
	writeCSV(w, filename, csv)
}

// ViewerPrint handles GET /records/print?type=...
func (h *RecordsHandler) ViewerPrint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	html, err := h.viewer.Print(middleware.GetUsername(ctx), middleware.GetPatientType(ctx))
	if err != nil {
		jsonError(w, "failed to render print document", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("viewer_print").Inc()
	writeHTML(w, html)
}

// ViewerDelete handles DELETE /records/{id}?type=...
func (h *RecordsHandler) ViewerDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.viewer.Delete(r.Context(), id); err != nil {
		h.logger.Error("viewer delete failed", zap.String("id", id), zap.Error(err))
		jsonError(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	h.metrics.RecordsDeleted.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ViewerDeleteAll handles DELETE /records?type=...
func (h *RecordsHandler) ViewerDeleteAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		jsonError(w, "confirmation required", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	n, err := h.viewer.DeleteAll(ctx, middleware.GetUsername(ctx), middleware.GetPatientType(ctx))
	if err != nil {
		jsonError(w, "failed to delete records", http.StatusInternalServerError)
		return
	}
	h.metrics.RecordsDeleted.Add(float64(n))
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func adminFilter(r *http.Request) records.AdminFilter {
	return records.AdminFilter{Type: r.URL.Query().Get("type")}
}

// AdminList handles GET /admin/records[?type=...]
func (h *RecordsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	cols, rows, err := h.admin.Table(r.Context(), adminFilter(r))
	if err != nil {
		h.logger.Error("admin list failed", zap.Error(err))
		jsonError(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols, "rows": rows})
}

// AdminExport handles GET /admin/records/export[?type=...]
func (h *RecordsHandler) AdminExport(w http.ResponseWriter, r *http.Request) {
	filename, csv, err := h.admin.ExportCSV(r.Context(), adminFilter(r))
	if err != nil {
		jsonError(w, "failed to export records", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("admin_csv").Inc()
	writeCSV(w, filename, csv)
}

// AdminHistory handles GET /admin/records/history?name=...
func (h *RecordsHandler) AdminHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.admin.SearchHistory(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		jsonError(w, "failed to search history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// AdminPrint handles GET /admin/records/print[?type=...]
func (h *RecordsHandler) AdminPrint(w http.ResponseWriter, r *http.Request) {
	html, err := h.admin.Print(r.Context(), adminFilter(r))
	if err != nil {
		jsonError(w, "failed to render print document", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("admin_print").Inc()
	writeHTML(w, html)
}

// AdminPrintRecord handles GET /admin/records/{id}/print
func (h *RecordsHandler) AdminPrintRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.admin.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "record not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load record", http.StatusInternalServerError)
		return
	}
	html, err := h.admin.PrintRecord(rec)
	if err != nil {
		jsonError(w, "failed to render print document", http.StatusInternalServerError)
		return
	}
	h.metrics.Exports.WithLabelValues("admin_print").Inc()
	writeHTML(w, html)
}

// AdminDelete handles DELETE /admin/records/{id}
func (h *RecordsHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.admin.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "record not found", http.StatusNotFound)
			return
		}
		h.logger.Error("admin delete failed", zap.String("id", id), zap.Error(err))
		jsonError(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	h.metrics.RecordsDeleted.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// AdminDeleteAll handles DELETE /admin/records[?type=...]. Feedback is
// blanket: the matched count, even when individual deletions failed.
func (h *RecordsHandler) AdminDeleteAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		jsonError(w, "confirmation required", http.StatusBadRequest)
		return
	}
	n, err := h.admin.DeleteAll(r.Context(), adminFilter(r))
	if err != nil {
		jsonError(w, "failed to delete records", http.StatusInternalServerError)
		return
	}
	h.metrics.RecordsDeleted.Add(float64(n))
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
