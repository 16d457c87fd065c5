package intake

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/store"
	"github.com/santican/clinic-intake/pkg/circuitbreaker"
	"github.com/santican/clinic-intake/pkg/idempotency"
)

type fakeStore struct {
	mu      sync.Mutex
	records []patient.Record
	addErr  error
}

func (f *fakeStore) Add(ctx context.Context, rec *patient.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	f.records = append(f.records, *rec)
	return rec.ID, nil
}

func (f *fakeStore) QueryByField(ctx context.Context, field, value string) ([]patient.Record, error) {
	return nil, nil
}

func (f *fakeStore) GetAll(ctx context.Context) ([]patient.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]patient.Record(nil), f.records...), nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id string) error { return nil }

type fakeGuard struct {
	seen map[string]json.RawMessage
}

func (g *fakeGuard) Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn idempotency.ProcessFunc) (*idempotency.ProcessResult, error) {
	if g.seen == nil {
		g.seen = make(map[string]json.RawMessage)
	}
	if result, ok := g.seen[key]; ok {
		return &idempotency.ProcessResult{IsNew: false, Result: result}, nil
	}
	result, err := fn(ctx, payload)
	if err != nil {
		return nil, err
	}
	g.seen[key] = result
	return &idempotency.ProcessResult{IsNew: true, Result: result}, nil
}

func newTestEngine(t *testing.T, fake *fakeStore, guard SubmissionGuard) (*Engine, *store.Cache) {
	t.Helper()
	cache := store.NewCache(filepath.Join(t.TempDir(), "patients.json"), nil)
	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("test"), nil)
	require.NoError(t, err)
	eng := NewEngine(store.NewResilient(fake, cache, breaker, nil), guard, nil)
	eng.now = func() time.Time { return time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC) }
	return eng, cache
}

func employeeSubmission() *Submission {
	return &Submission{
		Type:           patient.TypeEmployee,
		LastName:       "Cruz",
		FirstName:      "Ana",
		PatientAge:     "34",
		Sex:            "F",
		PatientAddress: "Santican",
		CivilStatus:    "Single",
		Department:     "HR",
		WalkInDate:     "2025-03-01",
		ChiefComplaint: "Fever",
		Medication1:    "Paracetamol",
		Medication1Qty: "5",
	}
}

func TestSubmitAssemblesRecord(t *testing.T) {
	eng, cache := newTestEngine(t, &fakeStore{}, nil)

	rec, err := eng.Submit(context.Background(), "nurse1", employeeSubmission())
	require.NoError(t, err)

	assert.Equal(t, "Cruz, Ana", rec.PatientName)
	assert.Equal(t, patient.TypeEmployee, rec.Type)
	assert.Equal(t, "HR", rec.Department)
	assert.Equal(t, "Paracetamol (5 pcs)", rec.Medication1)
	assert.Empty(t, rec.Medication2)
	assert.Equal(t, "2025-03-01T08:30:00Z", rec.Timestamp)
	assert.Equal(t, "nurse1", rec.SavedBy)
	assert.Regexp(t, regexp.MustCompile(`^EMP-\d{1,6}$`), rec.PatientNumber)
	assert.NotEmpty(t, rec.ID)

	// Mirrored to the cache for the self-service viewer.
	cached, err := cache.Load()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, rec.ID, cached[0].ID)
}

func TestSubmitGuestSkipsEmployeeFields(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)

	sub := employeeSubmission()
	sub.Type = patient.TypeGuest

	rec, err := eng.Submit(context.Background(), "nurse1", sub)
	require.NoError(t, err)
	assert.Empty(t, rec.Department)
	assert.Empty(t, rec.CivilStatus)
	assert.Regexp(t, regexp.MustCompile(`^GUE-\d{1,6}$`), rec.PatientNumber)
}

func TestSubmitResolvesOverrides(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)

	sub := employeeSubmission()
	sub.Department = "Other"
	sub.OtherDepartment = " Contractor Crew "
	sub.ChiefComplaint = "Other"
	sub.OtherChiefComplaint = "Dizziness"
	sub.Medication1 = "Other"
	sub.OtherMedication1 = "Ibuprofen"
	sub.Medication1Qty = "3"

	rec, err := eng.Submit(context.Background(), "nurse1", sub)
	require.NoError(t, err)
	assert.Equal(t, "Contractor Crew", rec.Department)
	assert.Equal(t, "Dizziness", rec.ChiefComplaint)
	assert.Equal(t, "Ibuprofen (3 pcs)", rec.Medication1)
}

func TestSubmitAnimalBiteComplaint(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)

	sub := employeeSubmission()
	sub.ChiefComplaint = patient.AnimalBiteSentinel
	sub.AnimalType = " Dog "

	rec, err := eng.Submit(context.Background(), "nurse1", sub)
	require.NoError(t, err)
	assert.Equal(t, "Animal Bite - Dog", rec.ChiefComplaint)
}

func TestSubmitAnimalBiteWithoutTypeKeepsSentinel(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)

	sub := employeeSubmission()
	sub.ChiefComplaint = patient.AnimalBiteSentinel

	rec, err := eng.Submit(context.Background(), "nurse1", sub)
	require.NoError(t, err)
	assert.Equal(t, patient.AnimalBiteSentinel, rec.ChiefComplaint)
}

func TestSubmitMissingRequiredFields(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)

	sub := employeeSubmission()
	sub.LastName = ""
	sub.Department = "  "

	_, err := eng.Submit(context.Background(), "nurse1", sub)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"lastName", "department"}, verr.Fields)
}

func TestSubmitMedicationQuantityRules(t *testing.T) {
	t.Run("quantity required when medication chosen", func(t *testing.T) {
		eng, _ := newTestEngine(t, &fakeStore{}, nil)
		sub := employeeSubmission()
		sub.Medication1Qty = ""

		_, err := eng.Submit(context.Background(), "nurse1", sub)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"medication1Qty"}, verr.Fields)
	})

	t.Run("quantity out of range", func(t *testing.T) {
		eng, _ := newTestEngine(t, &fakeStore{}, nil)
		sub := employeeSubmission()
		sub.Medication1Qty = "101"

		_, err := eng.Submit(context.Background(), "nurse1", sub)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("zero quantity still suffixes", func(t *testing.T) {
		eng, _ := newTestEngine(t, &fakeStore{}, nil)
		sub := employeeSubmission()
		sub.Medication1Qty = "0"

		rec, err := eng.Submit(context.Background(), "nurse1", sub)
		require.NoError(t, err)
		assert.Equal(t, "Paracetamol (0 pcs)", rec.Medication1)
	})
}

func TestSubmitInvalidType(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeStore{}, nil)
	sub := employeeSubmission()
	sub.Type = "visitor"

	_, err := eng.Submit(context.Background(), "nurse1", sub)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSubmitDuplicateRejected(t *testing.T) {
	fake := &fakeStore{}
	eng, _ := newTestEngine(t, fake, &fakeGuard{})

	_, err := eng.Submit(context.Background(), "nurse1", employeeSubmission())
	require.NoError(t, err)

	_, err = eng.Submit(context.Background(), "nurse1", employeeSubmission())
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, fake.records, 1)
}

func TestSubmitRemoteFailureStillMirrorsToCache(t *testing.T) {
	fake := &fakeStore{addErr: errors.New("remote down")}
	eng, cache := newTestEngine(t, fake, nil)

	_, err := eng.Submit(context.Background(), "nurse1", employeeSubmission())
	require.Error(t, err)

	cached, cerr := cache.Load()
	require.NoError(t, cerr)
	assert.Len(t, cached, 1)
}
