package records

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/store"
)

func TestAdminListFiltersByType(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", Type: patient.TypeEmployee},
		{ID: "2", Type: patient.TypeGuest},
	}}
	admin := NewAdmin(fake, nil)

	all, err := admin.List(context.Background(), AdminFilter{Type: TypeAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	guests, err := admin.List(context.Background(), AdminFilter{Type: "guest"})
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "2", guests[0].ID)
}

func TestAdminTableLegacyFallbacks(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{{
		ID: "1", Type: patient.TypeEmployee,
		// Legacy record shape: old field spellings only.
		Name: "Reyes, Ben", Age: "41", Address: "Basecamp", PatientID: "EMP-7",
		Date: "2024-11-02", MedicationCombined: "Paracetamol, Antacid",
		ChiefComplaint: "Other", OtherChiefComplaint: "Dizziness",
	}}}
	admin := NewAdmin(fake, nil)

	cols, rows, err := admin.Table(context.Background(), AdminFilter{})
	require.NoError(t, err)
	require.Len(t, cols, 12)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "EMP-7", row[0])
	assert.Equal(t, "Reyes, Ben", row[1])
	assert.Equal(t, "41", row[2])
	assert.Equal(t, "Basecamp", row[4])
	assert.Equal(t, "2024-11-02", row[5])
	assert.Equal(t, "Dizziness", row[8])
	assert.Equal(t, "Paracetamol, Antacid", row[10])
	assert.Equal(t, "employee", row[11])
}

func TestAdminDeleteAllBlanketCount(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", Type: patient.TypeGuest},
		{ID: "2", Type: patient.TypeGuest},
	}}
	admin := NewAdmin(fake, nil)

	n, err := admin.DeleteAll(context.Background(), AdminFilter{Type: "guest"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"1", "2"}, fake.deleted)
}

func TestAdminExportCSV(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", Type: patient.TypeGuest, PatientName: "Cruz, Ana"},
	}}
	admin := NewAdmin(fake, nil)

	filename, csv, err := admin.ExportCSV(context.Background(), AdminFilter{})
	require.NoError(t, err)
	assert.Equal(t, "patient_records.csv", filename)
	assert.Contains(t, csv, `"Cruz, Ana"`)
	assert.True(t, strings.HasPrefix(csv, `"Patient ID","Name"`))
}

func TestAdminSearchHistory(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{
		{ID: "1", PatientName: "Cruz, Ana", WalkInDate: "2025-03-01", Medication1: "Paracetamol"},
		{ID: "2", PatientName: "Reyes, Ben", WalkInDate: "2025-03-02"},
		{ID: "3", Name: "Cruzado, Carla", Date: "2024-12-01"},
	}}
	admin := NewAdmin(fake, nil)

	rows, err := admin.SearchHistory(context.Background(), "cruz")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Cruz, Ana", "2025-03-01", "Paracetamol"}, rows[0])
	assert.Equal(t, []string{"Cruzado, Carla", "2024-12-01", ""}, rows[1])

	empty, err := admin.SearchHistory(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestAdminGet(t *testing.T) {
	fake := &fakeStore{records: []patient.Record{{ID: "1", PatientName: "Cruz, Ana"}}}
	admin := NewAdmin(fake, nil)

	rec, err := admin.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Cruz, Ana", rec.PatientName)

	_, err = admin.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminPrintRecord(t *testing.T) {
	admin := NewAdmin(&fakeStore{}, nil)
	html, err := admin.PrintRecord(&patient.Record{
		PatientNumber: "GUE-9", PatientName: "Cruz, Ana", Sex: "F", Type: patient.TypeGuest,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "GUE-9")
	assert.Contains(t, html, "Female")
	assert.Contains(t, html, "<h2>Patient Record</h2>")
}
