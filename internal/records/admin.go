package records

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/export"
	"github.com/santican/clinic-intake/internal/schema"
	"github.com/santican/clinic-intake/internal/store"
)

// AdminFilter selects which patient types the admin browser lists.
// TypeAll (or empty) pools both.
type AdminFilter struct {
	Type string
}

// TypeAll lists both patient types.
const TypeAll = "all"

// Admin is the cross-user browser. It reads the remote store only, without
// the cache fallback: records saved by other users never reach this
// instance's cache, so a cached view would be silently partial. A remote
// outage therefore fails admin listings instead of degrading them. The
// filter is an explicit parameter on every call.
type Admin struct {
	remote store.Store
	logger *zap.Logger
}

// NewAdmin creates the cross-user browser.
func NewAdmin(remote store.Store, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{remote: remote, logger: logger}
}

// List returns all remote records matching the filter.
func (a *Admin) List(ctx context.Context, f AdminFilter) ([]patient.Record, error) {
	t := strings.ToLower(f.Type)
	if t != "" && t != TypeAll {
		records, err := a.remote.QueryByField(ctx, "type", t)
		if err != nil {
			return nil, fmt.Errorf("query records by type: %w", err)
		}
		return records, nil
	}

	records, err := a.remote.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// Table renders the filtered records under the admin columns.
func (a *Admin) Table(ctx context.Context, f AdminFilter) ([]schema.Column, [][]string, error) {
	records, err := a.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return schema.AdminColumns, renderRows(schema.AdminColumns, records), nil
}

// Delete removes one record.
func (a *Admin) Delete(ctx context.Context, id string) error {
	return a.remote.DeleteByID(ctx, id)
}

// DeleteAll removes every record matching the filter. Feedback is blanket:
// the matched count is returned even when individual deletions fail, which
// are only logged.
func (a *Admin) DeleteAll(ctx context.Context, f AdminFilter) (int, error) {
	records, err := a.List(ctx, f)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	deleted, failed := store.BulkDelete(ctx, a.remote, ids, a.logger)
	if failed > 0 {
		a.logger.Warn("admin bulk delete had failures",
			zap.Int("deleted", deleted), zap.Int("failed", failed))
	}
	return len(ids), nil
}

// ExportCSV serializes the filtered records under the fixed admin filename.
func (a *Admin) ExportCSV(ctx context.Context, f AdminFilter) (filename, csv string, err error) {
	_, rows, err := a.Table(ctx, f)
	if err != nil {
		return "", "", err
	}
	return export.AdminRecordsFilename, export.CSV(columnLabels(schema.AdminColumns), rows), nil
}

// SearchHistory returns the visit history of patients whose display name
// contains the query, case-insensitively, rendered under the history columns.
func (a *Admin) SearchHistory(ctx context.Context, query string) ([][]string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	records, err := a.List(ctx, AdminFilter{Type: TypeAll})
	if err != nil {
		return nil, err
	}

	var matched []patient.Record
	for i := range records {
		if strings.Contains(strings.ToLower(records[i].DisplayName()), q) {
			matched = append(matched, records[i])
		}
	}
	return renderRows(schema.HistoryColumns, matched), nil
}

// Print renders the filtered records as a printable table document.
func (a *Admin) Print(ctx context.Context, f AdminFilter) (string, error) {
	cols, rows, err := a.Table(ctx, f)
	if err != nil {
		return "", err
	}
	return export.PrintTable(export.TableDocument{
		Title:  "Patient Records",
		Header: columnLabels(cols),
		Rows:   rows,
	})
}

// PrintRecord renders one record as a label/value print document.
func (a *Admin) PrintRecord(r *patient.Record) (string, error) {
	fields := []export.LabeledValue{
		{Label: "Patient ID", Value: CellValue(r, "patientID")},
		{Label: "Name", Value: r.DisplayName()},
		{Label: "Age", Value: CellValue(r, "age")},
		{Label: "Sex", Value: r.DisplaySex()},
		{Label: "Address", Value: CellValue(r, "address")},
		{Label: "Civil Status", Value: r.CivilStatus},
		{Label: "Department", Value: r.Department},
		{Label: "Walk-in Date", Value: CellValue(r, "walkInDate")},
		{Label: "Chief Complaint", Value: r.DisplayComplaint()},
		{Label: "History of Past Illness", Value: r.History},
		{Label: "Medication", Value: MedicationCell(r)},
		{Label: "Type", Value: string(r.Type)},
	}
	return export.PrintRecord(export.RecordDocument{Title: "Patient Record", Fields: fields})
}

// Get fetches one record by id from the remote store.
func (a *Admin) Get(ctx context.Context, id string) (*patient.Record, error) {
	records, err := a.remote.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, store.ErrNotFound
}
