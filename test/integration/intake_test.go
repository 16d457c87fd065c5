// Package integration exercises the full intake flow through the HTTP API:
// submit, self-service view, department statistics, filtered deletion.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/api/handlers"
	"github.com/santican/clinic-intake/internal/api/middleware"
	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/intake"
	"github.com/santican/clinic-intake/internal/observability/metrics"
	"github.com/santican/clinic-intake/internal/records"
	"github.com/santican/clinic-intake/internal/stats"
	"github.com/santican/clinic-intake/internal/store"
	"github.com/santican/clinic-intake/pkg/circuitbreaker"
	"github.com/santican/clinic-intake/pkg/idempotency"
)

var (
	integrationMetrics *metrics.Metrics
	metricsOnce        sync.Once
)

type memoryStore struct {
	mu      sync.Mutex
	records []patient.Record
}

func (m *memoryStore) Add(ctx context.Context, rec *patient.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return rec.ID, nil
}

func (m *memoryStore) QueryByField(ctx context.Context, field, value string) ([]patient.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []patient.Record
	for i := range m.records {
		if field == "type" && string(m.records[i].Type) == value {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memoryStore) GetAll(ctx context.Context) ([]patient.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]patient.Record(nil), m.records...), nil
}

func (m *memoryStore) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()

	metricsOnce.Do(func() { integrationMetrics = metrics.New() })

	remote := &memoryStore{}
	cache := store.NewCache(filepath.Join(t.TempDir(), "patients.json"), nil)
	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("integration"), nil)
	require.NoError(t, err)
	resilient := store.NewResilient(remote, cache, breaker, nil)

	logger := zap.NewNop()
	intakeHandler := handlers.NewIntakeHandler(intake.NewEngine(resilient, nil, nil), integrationMetrics, logger)
	recordsHandler := handlers.NewRecordsHandler(
		records.NewViewer(resilient, nil),
		records.NewAdmin(remote, nil),
		integrationMetrics, logger)
	statsHandler := handlers.NewStatsHandler(stats.NewService(resilient, nil), integrationMetrics, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionAuth)
		r.Mount("/intake", intakeHandler.Routes())
		r.Mount("/records", recordsHandler.ViewerRoutes())
		r.Mount("/admin/records", recordsHandler.AdminRoutes())
		r.Mount("/stats", statsHandler.Routes())
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, remote
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("X-Clinic-User", "nurse1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestIntakeFlow(t *testing.T) {
	srv, remote := newTestServer(t)

	submit := `{
		"lastName":"Cruz","firstName":"Ana","patientAge":"34","sex":"F",
		"patientAddress":"Santican","civilStatus":"Single","department":"HR",
		"walkInDate":"2025-03-01","chiefComplaint":"Fever",
		"medication1":"Paracetamol","medication1Qty":"10"
	}`
	resp := do(t, http.MethodPost, srv.URL+"/api/intake?type=employee", submit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created handlers.SubmitResponse
	decode(t, resp, &created)
	assert.True(t, strings.HasPrefix(created.PatientNumber, "EMP-"))
	require.Len(t, remote.records, 1)

	// Self-service view shows the submitter's own record.
	resp = do(t, http.MethodGet, srv.URL+"/api/records?type=employee", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Rows [][]string `json:"rows"`
	}
	decode(t, resp, &view)
	require.Len(t, view.Rows, 1)

	// Second identical walk-in the same day: counted, not merged.
	resp = do(t, http.MethodPost, srv.URL+"/api/intake?type=employee", submit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, http.MethodGet, srv.URL+"/api/stats?department=HR&month=3&year=2025", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		Rows [][]string `json:"rows"`
	}
	decode(t, resp, &report)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, []string{"HR", "Fever", "2", "Paracetamol (10 pcs)", "20", "-", "-"}, report.Rows[0])

	// Filtered deletion removes what the report counted.
	resp = do(t, http.MethodDelete, srv.URL+"/api/stats?department=HR&month=3&year=2025&confirm=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]int
	decode(t, resp, &deleted)
	assert.Equal(t, 2, deleted["deleted"])
	assert.Empty(t, remote.records)
}

func TestIdempotencyKeyGeneration(t *testing.T) {
	key1 := idempotency.GenerateKey("nurse1", "employee", "Cruz, Ana", "2025-03-01", "Fever")
	key2 := idempotency.GenerateKey("Nurse1", "EMPLOYEE", "cruz, ana", "2025-03-01", "FEVER")
	key3 := idempotency.GenerateKey("nurse1", "employee", "Cruz, Ana", "2025-03-02", "Fever")
	key4 := idempotency.GenerateKey("nurse2", "employee", "Cruz, Ana", "2025-03-01", "Fever")

	assert.Equal(t, key1, key2, "key is case-insensitive")
	assert.NotEqual(t, key1, key3, "different date produces different key")
	assert.NotEqual(t, key1, key4, "different user produces different key")
}
