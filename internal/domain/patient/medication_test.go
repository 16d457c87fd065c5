package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMedicationNoMedication(t *testing.T) {
	assert.Nil(t, ParseMedication("", "5"))
	assert.Nil(t, ParseMedication("none", 3))
	assert.Nil(t, ParseMedication("None", nil))
	assert.Nil(t, ParseMedication("Select Medication 1", nil))
	assert.Nil(t, ParseMedication("select medication", "10"))
}

func TestParseMedicationQuantityFromRaw(t *testing.T) {
	got := ParseMedication("Cetirizine", "3")
	require.NotNil(t, got)
	assert.Equal(t, "Cetirizine", got.Name)
	assert.Equal(t, 3, got.Qty)

	got = ParseMedication("Cetirizine", "about 12 pcs")
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Qty)

	got = ParseMedication("Cetirizine", float64(7))
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Qty)
}

func TestParseMedicationQuantityFromNameSuffix(t *testing.T) {
	got := ParseMedication("Paracetamol (5 pcs)", nil)
	require.NotNil(t, got)
	// The embedded suffix is not stripped from the name.
	assert.Equal(t, "Paracetamol (5 pcs)", got.Name)
	assert.Equal(t, 5, got.Qty)

	got = ParseMedication("  Antacid (10 PCS)  ", "")
	require.NotNil(t, got)
	assert.Equal(t, "Antacid (10 PCS)", got.Name)
	assert.Equal(t, 10, got.Qty)
}

func TestParseMedicationDefaultsToOne(t *testing.T) {
	got := ParseMedication("Cetirizine", 0)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Qty)

	got = ParseMedication("Loperamide", nil)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Qty)

	got = ParseMedication("Hyoscine", "no count given")
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Qty)
}

func TestParseMedicationRawQuantityWinsOverSuffix(t *testing.T) {
	got := ParseMedication("Paracetamol (5 pcs)", "8")
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Qty)
}
