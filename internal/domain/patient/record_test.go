package patient

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDepartment(t *testing.T) {
	cases := []struct {
		dept    string
		eff     string
		display string
	}{
		{"HR", "HR", "HR"},
		{"  HR  ", "HR", "HR"},
		{"Safari Camp", "Safari Camp", "Safari Camp"},
		{"Payroll", "Other", "Payroll"},
		{"  Payroll ", "Other", "Payroll"},
		{"", "Other", "Other"},
		{"   ", "Other", "Other"},
		{"hr", "Other", "hr"}, // membership is case-sensitive
	}
	for _, tc := range cases {
		r := &Record{Department: tc.dept}
		assert.Equal(t, tc.eff, r.EffectiveDepartment(), "effective for %q", tc.dept)
		assert.Equal(t, tc.display, r.DisplayDepartment(), "display for %q", tc.dept)
	}
}

func TestResolveOtherOverride(t *testing.T) {
	assert.Equal(t, "Sore Eyes", Resolve("Other", "Sore Eyes"))
	assert.Equal(t, "Sore Eyes", Resolve("Other", "  Sore Eyes  "))
	assert.Equal(t, "Other", Resolve("Other", "   "))
	assert.Equal(t, "Fever", Resolve("Fever", "ignored"))
}

func TestWalkInTime(t *testing.T) {
	r := &Record{WalkInDate: "2025-03-14"}
	got, ok := r.WalkInTime()
	assert.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2025, got.Year())

	// Legacy date field fallback.
	r = &Record{Date: "2024-11-02"}
	got, ok = r.WalkInTime()
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	// walkInDate wins over date.
	r = &Record{WalkInDate: "2025-01-05", Date: "2020-06-06"}
	got, ok = r.WalkInTime()
	assert.True(t, ok)
	assert.Equal(t, 2025, got.Year())

	for _, bad := range []string{"", "not-a-date", "13/45/2025"} {
		r = &Record{WalkInDate: bad}
		_, ok = r.WalkInTime()
		assert.False(t, ok, "expected %q to be unparseable", bad)
	}
}

func TestNewPatientNumber(t *testing.T) {
	emp := regexp.MustCompile(`^EMP-\d{1,6}$`)
	gue := regexp.MustCompile(`^GUE-\d{1,6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, emp, NewPatientNumber(TypeEmployee))
		assert.Regexp(t, gue, NewPatientNumber(TypeGuest))
	}
}

func TestNewRecordID(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	re := regexp.MustCompile(`^\d{13}\d{1,3}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := NewRecordID(now.Add(time.Duration(i) * time.Millisecond))
		assert.Regexp(t, re, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDisplayHelpers(t *testing.T) {
	r := &Record{Sex: "M"}
	assert.Equal(t, "Male", r.DisplaySex())
	r.Sex = "F"
	assert.Equal(t, "Female", r.DisplaySex())

	r = &Record{ChiefComplaint: "Other", OtherChiefComplaint: "Sore Eyes"}
	assert.Equal(t, "Sore Eyes", r.DisplayComplaint())

	r = &Record{Name: "Cruz, Ana", PatientName: "ignored"}
	assert.Equal(t, "Cruz, Ana", r.DisplayName())
	r = &Record{PatientName: "Cruz, Ana"}
	assert.Equal(t, "Cruz, Ana", r.DisplayName())

	r = &Record{MedicationCombined: "Paracetamol / Antacid", Medication: "Paracetamol"}
	assert.Equal(t, "Paracetamol / Antacid", r.CombinedMedication())
	r = &Record{Medication: "Paracetamol"}
	assert.Equal(t, "Paracetamol", r.CombinedMedication())
}

func TestParseType(t *testing.T) {
	got, ok := ParseType("employee")
	assert.True(t, ok)
	assert.Equal(t, TypeEmployee, got)

	got, ok = ParseType("guest")
	assert.True(t, ok)
	assert.Equal(t, TypeGuest, got)

	_, ok = ParseType("visitor")
	assert.False(t, ok)
	_, ok = ParseType("")
	assert.False(t, ok)
}
