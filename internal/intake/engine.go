// Package intake implements the walk-in registration flow: it validates a
// form submission against the field schema, resolves the sentinel overrides,
// assembles the record and writes it through the resilient store behind a
// duplicate-submission guard.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/schema"
	"github.com/santican/clinic-intake/internal/store"
	"github.com/santican/clinic-intake/pkg/idempotency"
)

// Submission is one intake form post. Field names mirror the form input ids.
type Submission struct {
	Type patient.Type `json:"type"`

	LastName       string `json:"lastName"`
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName"`
	PatientAge     string `json:"patientAge"`
	Sex            string `json:"sex"`
	PatientAddress string `json:"patientAddress"`

	CivilStatus     string `json:"civilStatus"`
	Department      string `json:"department"`
	OtherDepartment string `json:"otherDepartment"`

	WalkInDate          string `json:"walkInDate"`
	ChiefComplaint      string `json:"chiefComplaint"`
	OtherChiefComplaint string `json:"otherChiefComplaint"`
	AnimalType          string `json:"animalType"`

	Medication1      string `json:"medication1"`
	OtherMedication1 string `json:"otherMedication1"`
	Medication1Qty   string `json:"medication1Qty"`
	Medication2      string `json:"medication2"`
	OtherMedication2 string `json:"otherMedication2"`
	Medication2Qty   string `json:"medication2Qty"`

	History string `json:"history"`
}

// ValidationError reports a rejected submission.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrDuplicate marks a submission the guard has already seen.
var ErrDuplicate = errors.New("duplicate submission")

// SubmissionGuard is the duplicate-submission gate. Satisfied by
// idempotency.Inbox; nil disables the guard.
type SubmissionGuard interface {
	Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn idempotency.ProcessFunc) (*idempotency.ProcessResult, error)
}

// Engine is the intake form engine.
type Engine struct {
	store  *store.Resilient
	guard  SubmissionGuard
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates the intake engine. guard may be nil.
func NewEngine(st *store.Resilient, guard SubmissionGuard, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, guard: guard, logger: logger, now: time.Now}
}

// Submit validates, assembles and persists one intake record, returning the
// stored record. A submission the guard has already accepted returns
// ErrDuplicate. A remote write failure is returned to the caller so the form
// can stay populated; the record is still mirrored to the cache.
func (e *Engine) Submit(ctx context.Context, username string, sub *Submission) (*patient.Record, error) {
	if err := e.validate(sub); err != nil {
		return nil, err
	}

	rec, err := e.assemble(username, sub)
	if err != nil {
		return nil, err
	}

	if e.guard == nil {
		if _, err := e.store.Add(ctx, rec); err != nil {
			return nil, fmt.Errorf("store record: %w", err)
		}
		return rec, nil
	}

	key := idempotency.GenerateKey(username, string(rec.Type), rec.PatientName, rec.WalkInDate, rec.ChiefComplaint)
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	result, err := e.guard.Process(ctx, key, "intake_submit", payload, func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		if _, err := e.store.Add(ctx, rec); err != nil {
			return nil, fmt.Errorf("store record: %w", err)
		}
		return json.Marshal(map[string]string{"id": rec.ID})
	})
	if err != nil {
		return nil, err
	}
	if !result.IsNew {
		e.logger.Info("duplicate intake submission rejected",
			zap.String("key", key), zap.String("saved_by", username))
		return nil, ErrDuplicate
	}

	e.logger.Info("record created",
		zap.String("id", rec.ID),
		zap.String("type", string(rec.Type)),
		zap.String("saved_by", username))
	return rec, nil
}

func (e *Engine) validate(sub *Submission) error {
	if _, ok := patient.ParseType(string(sub.Type)); !ok {
		return &ValidationError{Reason: "invalid patient type"}
	}

	var missing []string
	for _, f := range schema.FormFields(sub.Type) {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(fieldValue(sub, f.ID)) == "" {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	for _, m := range []struct {
		name, qty, field string
	}{
		{sub.Medication1, sub.Medication1Qty, "medication1Qty"},
		{sub.Medication2, sub.Medication2Qty, "medication2Qty"},
	} {
		if strings.TrimSpace(m.name) == "" {
			continue
		}
		if strings.TrimSpace(m.qty) == "" {
			return &ValidationError{Fields: []string{m.field}}
		}
		n, err := strconv.Atoi(strings.TrimSpace(m.qty))
		if err != nil || n < 0 || n > 100 {
			return &ValidationError{Reason: fmt.Sprintf("%s must be a whole number between 0 and 100", m.field)}
		}
	}
	return nil
}

func fieldValue(sub *Submission, id string) string {
	switch id {
	case "lastName":
		return sub.LastName
	case "firstName":
		return sub.FirstName
	case "middleName":
		return sub.MiddleName
	case "patientAge":
		return sub.PatientAge
	case "sex":
		return sub.Sex
	case "patientAddress":
		return sub.PatientAddress
	case "civilStatus":
		return sub.CivilStatus
	case "department":
		return sub.Department
	case "walkInDate":
		return sub.WalkInDate
	case "chiefComplaint":
		return sub.ChiefComplaint
	case "medication1":
		return sub.Medication1
	case "medication2":
		return sub.Medication2
	case "history":
		return sub.History
	}
	return ""
}

// assemble builds the record. The patient number is generated here, exactly
// once, and reused everywhere the number is shown or stored.
func (e *Engine) assemble(username string, sub *Submission) (*patient.Record, error) {
	now := e.now()

	rec := &patient.Record{
		ID:            patient.NewRecordID(now),
		PatientNumber: patient.NewPatientNumber(sub.Type),
		Type:          sub.Type,

		PatientName:    strings.TrimSpace(sub.LastName) + ", " + strings.TrimSpace(sub.FirstName),
		LastName:       strings.TrimSpace(sub.LastName),
		FirstName:      strings.TrimSpace(sub.FirstName),
		MiddleName:     strings.TrimSpace(sub.MiddleName),
		PatientAge:     strings.TrimSpace(sub.PatientAge),
		Sex:            sub.Sex,
		PatientAddress: strings.TrimSpace(sub.PatientAddress),

		WalkInDate: sub.WalkInDate,
		History:    strings.TrimSpace(sub.History),

		Timestamp: now.UTC().Format(time.RFC3339),
		SavedBy:   username,
	}

	if sub.Type == patient.TypeEmployee {
		rec.CivilStatus = strings.TrimSpace(sub.CivilStatus)
		rec.Department = patient.Resolve(sub.Department, sub.OtherDepartment)
	}

	rec.ChiefComplaint = resolveComplaint(sub)
	rec.Medication1 = resolveMedication(sub.Medication1, sub.OtherMedication1, sub.Medication1Qty)
	rec.Medication2 = resolveMedication(sub.Medication2, sub.OtherMedication2, sub.Medication2Qty)

	return rec, nil
}

func resolveComplaint(sub *Submission) string {
	if sub.ChiefComplaint == patient.AnimalBiteSentinel {
		if animal := strings.TrimSpace(sub.AnimalType); animal != "" {
			return "Animal Bite - " + animal
		}
		return sub.ChiefComplaint
	}
	return patient.Resolve(sub.ChiefComplaint, sub.OtherChiefComplaint)
}

// resolveMedication applies the Other override, then appends the piece count
// suffix when a quantity was entered. The suffix stays part of the stored
// name; the aggregator parses it back out.
func resolveMedication(raw, override, qty string) string {
	name := patient.Resolve(raw, override)
	if strings.TrimSpace(name) == "" {
		return ""
	}
	if q := strings.TrimSpace(qty); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			return fmt.Sprintf("%s (%d pcs)", name, n)
		}
	}
	return name
}
