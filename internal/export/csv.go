// Package export renders record tables as CSV downloads and printable HTML
// documents.
package export

import (
	"fmt"
	"strings"
)

// CSV renders a header row plus data rows. Every cell is quoted, including
// empty ones, with embedded quotes doubled. Consumers of the exported files
// depend on the uniformly quoted shape, so encoding/csv's conditional quoting
// is not an option here.
func CSV(header []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, header)
	for _, row := range rows {
		b.WriteByte('\n')
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
}

// StatsFilename names a statistics export after its filter:
// Status_{department}_{month}_{year}.csv. The caller passes the filter values
// as displayed, "All" included.
func StatsFilename(department, month, year string) string {
	return fmt.Sprintf("Status_%s_%s_%s.csv", department, month, year)
}

// RecordsFilename names a self-service records export:
// {type}_records_{username}.csv.
func RecordsFilename(patientType, username string) string {
	return fmt.Sprintf("%s_records_%s.csv", patientType, username)
}

// UserStatsFilename names a self-service statistics export:
// {type}_stats_{username}.csv.
func UserStatsFilename(patientType, username string) string {
	return fmt.Sprintf("%s_stats_%s.csv", patientType, username)
}

// AdminRecordsFilename is the fixed name of the cross-user records export.
const AdminRecordsFilename = "patient_records.csv"
