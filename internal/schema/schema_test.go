package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/santican/clinic-intake/internal/domain/patient"
)

func fieldIDs(fields []Field) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}
	return ids
}

func TestFormFieldsEmployee(t *testing.T) {
	fields := FormFields(patient.TypeEmployee)
	assert.Equal(t, []string{
		"patientNumber", "lastName", "firstName", "middleName", "patientAge",
		"sex", "patientAddress", "civilStatus", "department", "walkInDate",
		"chiefComplaint", "medication1", "medication2", "history",
	}, fieldIDs(fields))

	byID := map[string]Field{}
	for _, f := range fields {
		byID[f.ID] = f
	}
	assert.True(t, byID["patientNumber"].ReadOnly)
	assert.False(t, byID["patientNumber"].Required)
	assert.Equal(t, KindRadio, byID["sex"].Kind)
	assert.Equal(t, []string{"M", "F"}, byID["sex"].Options)
	assert.Equal(t, KindSelect, byID["department"].Kind)
	assert.True(t, byID["department"].Required)
	assert.Equal(t, KindDate, byID["walkInDate"].Kind)
	assert.False(t, byID["medication1"].Required)
	assert.True(t, byID["medication1"].IsMedication())
	assert.True(t, byID["medication2"].IsMedication())
	assert.False(t, byID["chiefComplaint"].IsMedication())
}

func TestFormFieldsGuestDropsEmployeeOnly(t *testing.T) {
	ids := fieldIDs(FormFields(patient.TypeGuest))
	assert.NotContains(t, ids, "civilStatus")
	assert.NotContains(t, ids, "department")
	assert.Contains(t, ids, "chiefComplaint")
	assert.Len(t, ids, 12)
}

func TestOptionListsCarrySentinels(t *testing.T) {
	assert.Contains(t, ChiefComplaintOptions, patient.OtherSentinel)
	assert.Contains(t, ChiefComplaintOptions, patient.AnimalBiteSentinel)
	assert.Contains(t, MedicationOptions, patient.OtherSentinel)
	assert.Contains(t, DepartmentOptions, patient.OtherSentinel)
	assert.Len(t, ChiefComplaintOptions, 14)
	assert.Len(t, MedicationOptions, 8)
	assert.Len(t, DepartmentOptions, 21)
}

func TestViewerColumns(t *testing.T) {
	emp := ViewerColumns(patient.TypeEmployee)
	assert.Equal(t, "patientID", emp[0].ID)
	assert.Len(t, emp, 11)

	guest := ViewerColumns(patient.TypeGuest)
	for _, c := range guest {
		assert.NotEqual(t, "civilStatus", c.ID)
		assert.NotEqual(t, "department", c.ID)
		assert.NotEqual(t, "patientID", c.ID)
	}
	assert.Len(t, guest, 8)
}
