// Package stats turns the flat record set into the department statistics
// report: department and chief complaint counts with medication tallies,
// filtered by department, month and year.
package stats

import (
	"strconv"
	"strings"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/export"
)

// Filter selects the records that feed a report. Department is a known
// department name, FilterAll, or FilterOther; zero Month and Year match any.
type Filter struct {
	Department string
	Month      int
	Year       int
}

// Department filter sentinels.
const (
	FilterAll   = "all"
	FilterOther = "other"
)

// MatchesDate reports whether the record's walk-in date passes the month and
// year selection. Records whose date does not parse never match; they stay
// out of reports and out of filtered deletion, but remain in plain listings.
func (f Filter) MatchesDate(r *patient.Record) bool {
	t, ok := r.WalkInTime()
	if !ok {
		return false
	}
	if f.Month != 0 && int(t.Month()) != f.Month {
		return false
	}
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	return true
}

// MatchesDepartment compares the record's effective department against the
// selection. Every unknown or blank department lives under the other bucket.
func (f Filter) MatchesDepartment(r *patient.Record) bool {
	switch strings.ToLower(f.Department) {
	case "", FilterAll:
		return true
	case FilterOther:
		return r.EffectiveDepartment() == patient.OtherDepartment
	default:
		return r.EffectiveDepartment() == f.Department
	}
}

// Matches combines the date and department selections.
func (f Filter) Matches(r *patient.Record) bool {
	return f.MatchesDate(r) && f.MatchesDepartment(r)
}

// Labels returns the filter values as shown in export filenames.
func (f Filter) Labels() (department, month, year string) {
	department = f.Department
	switch strings.ToLower(department) {
	case "", FilterAll:
		department = "All"
	case FilterOther:
		department = "Other"
	}
	month = "All"
	if f.Month != 0 {
		month = strconv.Itoa(f.Month)
	}
	year = "All Years"
	if f.Year != 0 {
		year = strconv.Itoa(f.Year)
	}
	return department, month, year
}

// Bucket is one (department, complaint) aggregate. Medications are a fixed
// optional pair: each record contributes its parsed medications in order
// until both slots are taken, further contributions are dropped. Counts are
// rendered as slot quantity times complaint count, an approximation that
// assumes uniform dosage per complaint occurrence.
type Bucket struct {
	Department     string
	Complaint      string
	ComplaintCount int
	Med1           *patient.Tally
	Med2           *patient.Tally
}

func (b *Bucket) addMedication(t *patient.Tally) {
	if t == nil {
		return
	}
	if b.Med1 == nil {
		b.Med1 = t
		return
	}
	if b.Med2 == nil {
		b.Med2 = t
	}
}

// Report is the aggregated statistics table for one filter selection.
type Report struct {
	Filter  Filter
	Buckets []*Bucket

	index map[string]*Bucket
}

// Aggregate builds the report. Buckets appear in first-seen order, which
// keeps the rendered table stable for a given record ordering.
func Aggregate(records []patient.Record, f Filter) *Report {
	rep := &Report{Filter: f, index: make(map[string]*Bucket)}

	for i := range records {
		r := &records[i]
		if !f.Matches(r) {
			continue
		}

		dept := r.DisplayDepartment()
		complaint := r.ChiefComplaint
		if strings.TrimSpace(complaint) == "" {
			complaint = "Unknown"
		}

		key := dept + "\x00" + complaint
		b, ok := rep.index[key]
		if !ok {
			b = &Bucket{Department: dept, Complaint: complaint}
			rep.index[key] = b
			rep.Buckets = append(rep.Buckets, b)
		}

		b.ComplaintCount++
		b.addMedication(patient.ParseMedication(r.Medication1, r.Medication1Qty))
		b.addMedication(patient.ParseMedication(r.Medication2, r.Medication2Qty))
	}

	return rep
}

// ReportHeader is the rendered column order of the statistics table.
var ReportHeader = []string{
	"Department", "Chief Complaint", "Complaint Count",
	"Medication 1", "Count", "Medication 2", "Count",
}

// Rows renders each bucket as one table row. The second medication column is
// blanked when the slot is empty, repeats the first medication's name, or is
// the literal placeholder "-".
func (rep *Report) Rows() [][]string {
	rows := make([][]string, 0, len(rep.Buckets))
	for _, b := range rep.Buckets {
		med1, count1 := "-", "-"
		if b.Med1 != nil {
			med1 = b.Med1.Name
			count1 = strconv.Itoa(b.Med1.Qty * b.ComplaintCount)
		}

		med2, count2 := "-", "-"
		if b.Med2 != nil && b.Med2.Name != "-" && (b.Med1 == nil || b.Med2.Name != b.Med1.Name) {
			med2 = b.Med2.Name
			count2 = strconv.Itoa(b.Med2.Qty * b.ComplaintCount)
		}

		rows = append(rows, []string{
			b.Department, b.Complaint, strconv.Itoa(b.ComplaintCount),
			med1, count1, med2, count2,
		})
	}
	return rows
}

// CSV serializes the rendered table, every cell quoted.
func (rep *Report) CSV() string {
	return export.CSV(ReportHeader, rep.Rows())
}

// Filename names the CSV export after the filter selection.
func (rep *Report) Filename() string {
	return export.StatsFilename(rep.Filter.Labels())
}
