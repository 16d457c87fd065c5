// Package patient holds the walk-in patient record and the normalization
// rules shared by the intake engine, the record viewers and the statistics
// aggregator.
package patient

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Type classifies a walk-in patient and determines the applicable field schema.
type Type string

const (
	TypeEmployee Type = "employee"
	TypeGuest    Type = "guest"
)

// ParseType validates a raw patient type, typically from a URL parameter.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeEmployee, TypeGuest:
		return Type(raw), true
	}
	return "", false
}

// Sentinel select values that reveal sibling override inputs on the form.
const (
	OtherSentinel      = "Other"
	AnimalBiteSentinel = "Animal Bite (Dog, Cat, Other)"
)

// Record is a walk-in patient intake record. It is created once and never
// updated; deletion is the only mutation. Records live in a document
// collection, so older copies may carry legacy field spellings; those are
// kept as optional fields rather than migrated.
type Record struct {
	ID            string `json:"id"`
	PatientNumber string `json:"patientNumber,omitempty"`
	Type          Type   `json:"type"`

	PatientName    string `json:"patientName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	MiddleName     string `json:"middleName,omitempty"`
	PatientAge     string `json:"patientAge,omitempty"`
	Sex            string `json:"sex,omitempty"`
	PatientAddress string `json:"patientAddress,omitempty"`

	// Employee-only fields.
	CivilStatus string `json:"civilStatus,omitempty"`
	Department  string `json:"department,omitempty"`

	WalkInDate     string `json:"walkInDate,omitempty"`
	ChiefComplaint string `json:"chiefComplaint,omitempty"`
	Medication1    string `json:"medication1,omitempty"`
	Medication2    string `json:"medication2,omitempty"`
	History        string `json:"history,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
	// SavedBy scopes self-service views. Present on cache copies; remote
	// copies written by other clients may lack it.
	SavedBy string `json:"savedBy,omitempty"`

	// Legacy fields found on records written by earlier clients.
	Date                string `json:"date,omitempty"`
	Name                string `json:"name,omitempty"`
	Age                 string `json:"age,omitempty"`
	Address             string `json:"address,omitempty"`
	PatientID           string `json:"patientID,omitempty"`
	Medication          string `json:"medication,omitempty"`
	MedicationCombined  string `json:"medicationCombined,omitempty"`
	MedicationOther     string `json:"medicationOther,omitempty"`
	OtherChiefComplaint string `json:"otherChiefComplaint,omitempty"`
	Medication1Qty      any    `json:"medication1Qty,omitempty"`
	Medication2Qty      any    `json:"medication2Qty,omitempty"`
}

// NewRecordID returns a globally unique record identifier: the creation
// instant in unix milliseconds plus a random suffix.
func NewRecordID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(rand.Intn(1000))
}

// NewPatientNumber returns a system-generated patient number of the form
// EMP-123456 or GUE-123456. It must be generated exactly once per submission
// and reused everywhere the number is shown or stored.
func NewPatientNumber(t Type) string {
	prefix := "GUE"
	if t == TypeEmployee {
		prefix = "EMP"
	}
	return fmt.Sprintf("%s-%d", prefix, rand.Intn(1000000))
}

// Resolve applies the "Other"-override pattern: a select whose stored value
// is the Other sentinel is replaced by its sibling free-text value when one
// was entered. Pure; shared by the form engine, the viewers and exports.
func Resolve(raw, override string) string {
	if raw == OtherSentinel && strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override)
	}
	return raw
}

// DisplayName prefers the legacy name field over patientName, matching the
// cross-user browser.
func (r *Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.PatientName
}

// DisplayComplaint substitutes the legacy sibling override when the stored
// complaint is the bare Other sentinel.
func (r *Record) DisplayComplaint() string {
	return Resolve(r.ChiefComplaint, r.OtherChiefComplaint)
}

// DisplaySingleMedication renders the legacy single-medication field with its
// override substitution.
func (r *Record) DisplaySingleMedication() string {
	return Resolve(r.Medication, r.MedicationOther)
}

// CombinedMedication prefers the combined legacy field, then the single
// legacy field, for admin table and history rendering.
func (r *Record) CombinedMedication() string {
	if r.MedicationCombined != "" {
		return r.MedicationCombined
	}
	return r.Medication
}

// DisplaySex expands the stored M/F code.
func (r *Record) DisplaySex() string {
	switch r.Sex {
	case "M":
		return "Male"
	case "F":
		return "Female"
	}
	return r.Sex
}

var walkInLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
}

// WalkInTime parses the record's walk-in date, falling back to the legacy
// date field. ok is false when neither parses; such records are invisible to
// statistics and filtered deletion but still appear in plain listings.
func (r *Record) WalkInTime() (time.Time, bool) {
	raw := r.WalkInDate
	if raw == "" {
		raw = r.Date
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range walkInLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
