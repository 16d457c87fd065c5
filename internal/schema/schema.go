// Package schema is the field schema registry: a declarative description of
// the intake form per patient type and of the table/export views, consumed by
// the form engine and the renderers. Schema is data, not code: the form
// engine walks these definitions generically.
package schema

import "github.com/santican/clinic-intake/internal/domain/patient"

// Kind is the input kind of a form field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindRadio  Kind = "radio"
	KindSelect Kind = "select"
)

// Field is one tagged-variant entry of a form schema.
type Field struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	ReadOnly bool     `json:"readonly,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// IsMedication reports whether the field carries a medication select, which
// reveals a required 0-100 piece-count input once any value is chosen.
func (f Field) IsMedication() bool {
	return f.ID == "medication1" || f.ID == "medication2"
}

// DepartmentOptions is the form's department select list. It intentionally
// differs from patient.KnownDepartments: "Guest" is filter-only and "Other"
// is form-only.
var DepartmentOptions = []string{
	"HR", "Finance and Corporate Services", "Life Sciences & Education", "Park Grounds", "Engineering",
	"Security", "Parks and Adventure", "Safari Camp", "Base Camp", "Front Office", "Motorpool",
	"Sales & Marketing", "Office of the VP", "ML-Agri Ventures", "Santican Cattle Station",
	"Tunnel Garden", "Tenants-Outpost", "Tenants-Auntie Anne's", "Tenants-Pizzeria Michelangelo",
	"Tenants-Convenient Store", "Other",
}

// ChiefComplaintOptions is the fixed complaint list plus the Other sentinel.
var ChiefComplaintOptions = []string{
	"Loose Bowel Movement", "Fever", "Cough", "Headache", "Hypogastric Pain",
	"Punctured Wound", "Lacerated Wound", patient.AnimalBiteSentinel, "Colds",
	"Body Pain", "Toothache", "Stomach Discomfort", "Epigastric Pain", patient.OtherSentinel,
}

// MedicationOptions is the fixed drug list plus the Other sentinel, shared by
// both medication selects.
var MedicationOptions = []string{
	"Paracetamol", "Loperamide", "Mefenamic Acid", "Antacid",
	"Cetirizine", "Hyoscine", "Meclizine", patient.OtherSentinel,
}

var commonLeadFields = []Field{
	{ID: "patientNumber", Label: "Patient Number", Kind: KindText, ReadOnly: true},
	{ID: "lastName", Label: "Last Name", Kind: KindText, Required: true},
	{ID: "firstName", Label: "First Name", Kind: KindText, Required: true},
	{ID: "middleName", Label: "Middle Name / Initial", Kind: KindText},
	{ID: "patientAge", Label: "Age", Kind: KindNumber, Required: true},
	{ID: "sex", Label: "Sex", Kind: KindRadio, Options: []string{"M", "F"}, Required: true},
	{ID: "patientAddress", Label: "Address", Kind: KindText, Required: true},
}

var commonTailFields = []Field{
	{ID: "walkInDate", Label: "Walk-in Date", Kind: KindDate, Required: true},
	{ID: "chiefComplaint", Label: "Chief Complaint", Kind: KindSelect, Options: ChiefComplaintOptions, Required: true},
	{ID: "medication1", Label: "Medication 1", Kind: KindSelect, Options: MedicationOptions},
	{ID: "medication2", Label: "Medication 2", Kind: KindSelect, Options: MedicationOptions},
	{ID: "history", Label: "History of Past Illness", Kind: KindText},
}

var employeeOnlyFields = []Field{
	{ID: "civilStatus", Label: "Civil Status", Kind: KindText},
	{ID: "department", Label: "Department", Kind: KindSelect, Options: DepartmentOptions, Required: true},
}

// FormFields returns the intake form schema for a patient type. Employees
// additionally report civil status and department.
func FormFields(t patient.Type) []Field {
	fields := make([]Field, 0, len(commonLeadFields)+len(employeeOnlyFields)+len(commonTailFields))
	fields = append(fields, commonLeadFields...)
	if t == patient.TypeEmployee {
		fields = append(fields, employeeOnlyFields...)
	}
	fields = append(fields, commonTailFields...)
	return fields
}

// Column is one column of a table or CSV view.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var viewerCommonColumns = []Column{
	{ID: "patientName", Label: "Patient Name"},
	{ID: "patientAge", Label: "Age"},
	{ID: "sex", Label: "Sex"},
	{ID: "patientAddress", Label: "Address"},
	{ID: "civilStatus", Label: "Civil Status"},
	{ID: "department", Label: "Department"},
	{ID: "walkInDate", Label: "Walk-in Date"},
	{ID: "chiefComplaint", Label: "Chief Complaint"},
	{ID: "history", Label: "History of Past Illness"},
	{ID: "medication", Label: "Medication"},
}

// ViewerColumns returns the self-service records view for a patient type.
// The guest view drops the employee-only columns; the employee view leads
// with the patient ID.
func ViewerColumns(t patient.Type) []Column {
	if t == patient.TypeEmployee {
		cols := make([]Column, 0, len(viewerCommonColumns)+1)
		cols = append(cols, Column{ID: "patientID", Label: "Patient ID"})
		cols = append(cols, viewerCommonColumns...)
		return cols
	}
	cols := make([]Column, 0, len(viewerCommonColumns))
	for _, c := range viewerCommonColumns {
		if c.ID == "civilStatus" || c.ID == "department" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// AdminColumns is the cross-user browser view, independent of patient type.
var AdminColumns = []Column{
	{ID: "patientID", Label: "Patient ID"},
	{ID: "name", Label: "Name"},
	{ID: "age", Label: "Age"},
	{ID: "sex", Label: "Sex"},
	{ID: "address", Label: "Address"},
	{ID: "walkInDate", Label: "Walk-in Date"},
	{ID: "department", Label: "Department"},
	{ID: "civilStatus", Label: "Civil Status"},
	{ID: "chiefComplaint", Label: "Chief Complaint"},
	{ID: "history", Label: "History"},
	{ID: "medication", Label: "Medication"},
	{ID: "type", Label: "Type"},
}

// HistoryColumns is the name-search result view.
var HistoryColumns = []Column{
	{ID: "name", Label: "Name"},
	{ID: "walkInDate", Label: "Walk-in Date"},
	{ID: "medication", Label: "Medication"},
}
