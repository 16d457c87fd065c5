package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/api/middleware"
	"github.com/santican/clinic-intake/internal/intake"
	"github.com/santican/clinic-intake/internal/observability/metrics"
	"github.com/santican/clinic-intake/internal/schema"
	"github.com/santican/clinic-intake/internal/store"
)

// IntakeHandler serves the intake form schema and accepts submissions.
type IntakeHandler struct {
	engine  *intake.Engine
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewIntakeHandler creates the intake handler.
func NewIntakeHandler(engine *intake.Engine, m *metrics.Metrics, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{engine: engine, metrics: m, logger: logger}
}

// Routes returns the handler routes. All of them require a valid type query
// parameter.
func (h *IntakeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequirePatientType)
	r.Get("/form", h.Form)
	r.Post("/", h.Submit)
	return r
}

// Form handles GET /intake/form?type={employee|guest}: the form schema the
// client renders.
func (h *IntakeHandler) Form(w http.ResponseWriter, r *http.Request) {
	t := middleware.GetPatientType(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"type":   t,
		"fields": schema.FormFields(t),
	})
}

// SubmitResponse is the response for a stored submission.
type SubmitResponse struct {
	ID            string `json:"id"`
	PatientNumber string `json:"patientNumber"`
	Timestamp     string `json:"timestamp"`
}

// Submit handles POST /intake?type={employee|guest}.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sub intake.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// The validated query parameter is authoritative over the body.
	sub.Type = middleware.GetPatientType(ctx)

	rec, err := h.engine.Submit(ctx, middleware.GetUsername(ctx), &sub)
	if err != nil {
		var verr *intake.ValidationError
		switch {
		case errors.As(err, &verr):
			h.metrics.SubmissionsRejected.Inc()
			jsonError(w, verr.Error(), http.StatusBadRequest)
		case errors.Is(err, intake.ErrDuplicate):
			h.metrics.DuplicateSubmissions.Inc()
			jsonError(w, "this submission was already saved", http.StatusConflict)
		case errors.Is(err, store.ErrStoreUnavailable):
			jsonError(w, "record store unavailable", http.StatusServiceUnavailable)
		default:
			h.logger.Error("intake submit failed",
				zap.Error(err),
				zap.String("request_id", middleware.GetRequestID(ctx)))
			jsonError(w, "failed to save record", http.StatusInternalServerError)
		}
		return
	}

	h.metrics.RecordsCreated.Inc()
	writeJSON(w, http.StatusCreated, SubmitResponse{
		ID:            rec.ID,
		PatientNumber: rec.PatientNumber,
		Timestamp:     rec.Timestamp,
	})
}
