// Package records implements the two record browsing surfaces: the
// self-service viewer over the local cache and the cross-user admin browser
// over the remote store.
package records

import (
	"strings"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/schema"
)

// MedicationCell renders the combined medication column. Current records
// carry medication1/medication2; older ones a combined or single field.
func MedicationCell(r *patient.Record) string {
	var parts []string
	if r.Medication1 != "" {
		parts = append(parts, r.Medication1)
	}
	if r.Medication2 != "" && r.Medication2 != r.Medication1 {
		parts = append(parts, r.Medication2)
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if r.MedicationCombined != "" {
		return r.MedicationCombined
	}
	return r.DisplaySingleMedication()
}

// CellValue renders one table cell for a column id, applying the legacy
// field fallbacks and the Other-override substitutions.
func CellValue(r *patient.Record, colID string) string {
	switch colID {
	case "patientID":
		if r.PatientID != "" {
			return r.PatientID
		}
		return r.PatientNumber
	case "patientName", "name":
		return r.DisplayName()
	case "patientAge", "age":
		if r.PatientAge != "" {
			return r.PatientAge
		}
		return r.Age
	case "sex":
		return r.DisplaySex()
	case "patientAddress", "address":
		if r.PatientAddress != "" {
			return r.PatientAddress
		}
		return r.Address
	case "civilStatus":
		return r.CivilStatus
	case "department":
		return r.Department
	case "walkInDate":
		if r.WalkInDate != "" {
			return r.WalkInDate
		}
		return r.Date
	case "chiefComplaint":
		return r.DisplayComplaint()
	case "history":
		return r.History
	case "medication":
		return MedicationCell(r)
	case "type":
		return string(r.Type)
	case "timestamp":
		return r.Timestamp
	}
	return ""
}

// renderRows maps records onto a column view.
func renderRows(columns []schema.Column, records []patient.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = CellValue(&records[i], col.ID)
		}
		rows = append(rows, row)
	}
	return rows
}

func columnLabels(columns []schema.Column) []string {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Label
	}
	return labels
}
