package stats

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/store"
	"github.com/santican/clinic-intake/pkg/circuitbreaker"
)

type fakeStore struct {
	mu      sync.Mutex
	records []patient.Record
	deleted []string
	getErr  error
}

func (f *fakeStore) Add(ctx context.Context, rec *patient.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return rec.ID, nil
}

func (f *fakeStore) QueryByField(ctx context.Context, field, value string) ([]patient.Record, error) {
	return nil, nil
}

func (f *fakeStore) GetAll(ctx context.Context) ([]patient.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]patient.Record(nil), f.records...), nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestService(t *testing.T, fake *fakeStore) (*Service, *store.Cache) {
	t.Helper()
	cache := store.NewCache(filepath.Join(t.TempDir(), "patients.json"), nil)
	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("test"), nil)
	require.NoError(t, err)
	resilient := store.NewResilient(fake, cache, breaker, nil)
	return NewService(resilient, nil), cache
}

func TestServiceReport(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", Department: "HR", ChiefComplaint: "Fever", WalkInDate: "2025-03-01"},
		{ID: "2", Department: "HR", ChiefComplaint: "Fever", WalkInDate: "2025-03-02"},
	}}
	svc, _ := newTestService(t, fake)

	rep, fromCache, err := svc.Report(context.Background(), Filter{Department: "HR"})
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, rep.Buckets, 1)
	assert.Equal(t, 2, rep.Buckets[0].ComplaintCount)
}

func TestServiceReportFallsBackToCache(t *testing.T) {
	fake := &fakeStore{getErr: errors.New("remote down")}
	svc, cache := newTestService(t, fake)

	require.NoError(t, cache.Append(&patient.Record{
		ID: "1", Department: "HR", ChiefComplaint: "Fever", WalkInDate: "2025-03-01",
	}))

	rep, fromCache, err := svc.Report(context.Background(), Filter{})
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, rep.Buckets, 1)
}

func TestServiceDeleteFiltered(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", Department: "HR", ChiefComplaint: "Fever", WalkInDate: "2025-03-01"},
		{ID: "2", Department: "Security", ChiefComplaint: "Cough", WalkInDate: "2025-03-01"},
		{ID: "3", Department: "HR", ChiefComplaint: "Fever", WalkInDate: "not-a-date"},
	}}
	svc, cache := newTestService(t, fake)
	for i := range fake.records {
		require.NoError(t, cache.Append(&fake.records[i]))
	}

	n, err := svc.DeleteFiltered(context.Background(), Filter{Department: "HR"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"1"}, fake.deleted)

	// The bad-date record survives even though its department matches.
	cached, err := cache.Load()
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "2", cached[0].ID)
	assert.Equal(t, "3", cached[1].ID)
}
