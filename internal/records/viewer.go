package records

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/export"
	"github.com/santican/clinic-intake/internal/schema"
	"github.com/santican/clinic-intake/internal/store"
)

// Viewer is the self-service records surface. It lists from the local cache
// only, scoped to the records the requesting user saved for one patient
// type. Deletions still go through the resilient store so the remote copy is
// removed too.
type Viewer struct {
	store  *store.Resilient
	logger *zap.Logger
}

// NewViewer creates the self-service viewer.
func NewViewer(st *store.Resilient, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{store: st, logger: logger}
}

func (v *Viewer) owned(username string, t patient.Type) ([]patient.Record, error) {
	cached, err := v.store.Cache().Load()
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	var out []patient.Record
	for i := range cached {
		if cached[i].Type == t && cached[i].SavedBy == username {
			out = append(out, cached[i])
		}
	}
	return out, nil
}

// List returns the user's own cached records for one patient type.
func (v *Viewer) List(username string, t patient.Type) ([]patient.Record, error) {
	return v.owned(username, t)
}

// Table renders the user's records under the per-type viewer columns.
func (v *Viewer) Table(username string, t patient.Type) ([]schema.Column, [][]string, error) {
	records, err := v.owned(username, t)
	if err != nil {
		return nil, nil, err
	}
	cols := schema.ViewerColumns(t)
	return cols, renderRows(cols, records), nil
}

// Delete removes one record, remote and cache.
func (v *Viewer) Delete(ctx context.Context, id string) error {
	return v.store.DeleteByID(ctx, id)
}

// DeleteAll removes every record the user saved for the patient type.
// Returns the number of matched records; per-record remote failures are
// logged, not reported, matching the blanket feedback of the original flow.
func (v *Viewer) DeleteAll(ctx context.Context, username string, t patient.Type) (int, error) {
	records, err := v.owned(username, t)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	deleted, failed := store.BulkDelete(ctx, v.store, ids, v.logger)
	if failed > 0 {
		v.logger.Warn("self-service bulk delete had failures",
			zap.String("username", username),
			zap.Int("deleted", deleted), zap.Int("failed", failed))
	}
	return len(ids), nil
}

// ExportCSV serializes the user's records, viewer columns plus the saved-at
// timestamp, named {type}_records_{username}.csv.
func (v *Viewer) ExportCSV(username string, t patient.Type) (filename, csv string, err error) {
	records, err := v.owned(username, t)
	if err != nil {
		return "", "", err
	}

	cols := append(schema.ViewerColumns(t), schema.Column{ID: "timestamp", Label: "Timestamp"})
	csv = export.CSV(columnLabels(cols), renderRows(cols, records))
	return export.RecordsFilename(string(t), username), csv, nil
}

// UserStats counts the user's own complaint and medication occurrences,
// named {type}_stats_{username}.csv. Counts are occurrences, not pieces.
func (v *Viewer) UserStats(username string, t patient.Type) (filename, csv string, err error) {
	records, err := v.owned(username, t)
	if err != nil {
		return "", "", err
	}

	complaints := make(map[string]int)
	medications := make(map[string]int)
	for i := range records {
		r := &records[i]
		if c := r.DisplayComplaint(); c != "" {
			complaints[c]++
		}
		if r.Medication1 != "" {
			medications[r.Medication1]++
		}
		if r.Medication2 != "" && r.Medication2 != r.Medication1 {
			medications[r.Medication2]++
		}
	}

	rows := make([][]string, 0, len(complaints)+len(medications))
	for _, item := range sortedKeys(complaints) {
		rows = append(rows, []string{"Chief Complaint", item, strconv.Itoa(complaints[item])})
	}
	for _, item := range sortedKeys(medications) {
		rows = append(rows, []string{"Medication", item, strconv.Itoa(medications[item])})
	}

	csv = export.CSV([]string{"Category", "Item", "Count"}, rows)
	return export.UserStatsFilename(string(t), username), csv, nil
}

// Print renders the user's records as a printable table document.
func (v *Viewer) Print(username string, t patient.Type) (string, error) {
	cols, rows, err := v.Table(username, t)
	if err != nil {
		return "", err
	}
	return export.PrintTable(export.TableDocument{
		Title:  "Patient Records",
		Header: columnLabels(cols),
		Rows:   rows,
	})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
