package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	outboxpg "github.com/santican/clinic-intake/internal/infrastructure/postgres"
	"github.com/santican/clinic-intake/internal/infrastructure/redpanda"
)

// PostgresStore is the remote record store: one JSONB document per record in
// the patient_records table. Lifecycle events are written to the outbox in
// the same transaction as the document mutation.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

// NewPostgresStore creates the remote store.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("record-store"),
	}
}

// Add inserts the record document and its record.created outbox entry in one
// transaction.
func (s *PostgresStore) Add(ctx context.Context, rec *patient.Record) (string, error) {
	ctx, span := s.tracer.Start(ctx, "store_add",
		trace.WithAttributes(attribute.String("record_id", rec.ID)))
	defer span.End()

	doc, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO patient_records (id, doc) VALUES ($1, $2)`,
		rec.ID, doc)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("insert record: %w", err)
	}

	entry := &outboxpg.OutboxEntry{
		AggregateID:   rec.ID,
		AggregateType: "patient_record",
		EventType:     "record.created",
		Payload:       doc,
		Topic:         redpanda.TopicRecordEvents,
		Key:           rec.ID,
	}
	if err := outboxpg.WriteEntry(ctx, tx, entry); err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("record stored", zap.String("id", rec.ID), zap.String("type", string(rec.Type)))
	return rec.ID, nil
}

// QueryByField returns records whose named top-level document field equals
// value, in creation order.
func (s *PostgresStore) QueryByField(ctx context.Context, field, value string) ([]patient.Record, error) {
	ctx, span := s.tracer.Start(ctx, "store_query_by_field",
		trace.WithAttributes(attribute.String("field", field)))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM patient_records WHERE doc->>$1 = $2 ORDER BY created_at ASC`,
		field, value)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query by %s: %w", field, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetAll returns every record, in creation order.
func (s *PostgresStore) GetAll(ctx context.Context) ([]patient.Record, error) {
	ctx, span := s.tracer.Start(ctx, "store_get_all")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM patient_records ORDER BY created_at ASC`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query all: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteByID removes one record and writes its record.deleted outbox entry
// in the same transaction.
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "store_delete",
		trace.WithAttributes(attribute.String("record_id", id)))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM patient_records WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	payload, _ := json.Marshal(map[string]string{"id": id})
	entry := &outboxpg.OutboxEntry{
		AggregateID:   id,
		AggregateType: "patient_record",
		EventType:     "record.deleted",
		Payload:       payload,
		Topic:         redpanda.TopicRecordEvents,
		Key:           id,
	}
	if err := outboxpg.WriteEntry(ctx, tx, entry); err != nil {
		span.RecordError(err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("record deleted", zap.String("id", id))
	return nil
}

func scanRecords(rows pgx.Rows) ([]patient.Record, error) {
	var records []patient.Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan doc: %w", err)
		}
		var rec patient.Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal doc: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
