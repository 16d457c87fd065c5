// Package store implements the patient record store: a remote document
// collection backed by Postgres, a local JSON-file mirror of the current
// user's submissions, and a circuit-breaker wrapper that serves reads from
// the mirror when the remote store is unreachable.
//
// The two copies are deliberately not reconciled. The cache is a
// write-through mirror read by the self-service viewer; the remote collection
// is authoritative for cross-user views. They can and do drift when remote
// writes fail; that divergence is inherited behavior, kept on purpose.
package store

import (
	"context"
	"errors"

	"github.com/santican/clinic-intake/internal/domain/patient"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStoreUnavailable is returned when the circuit breaker refuses a remote
// call. Handlers map it to 503 rather than a generic failure.
var ErrStoreUnavailable = errors.New("record store unavailable")

// Store is the document-collection abstraction over patient records. Records
// are created once and deleted; there is no update operation.
type Store interface {
	// Add persists a record and returns its id.
	Add(ctx context.Context, rec *patient.Record) (string, error)
	// QueryByField returns all records whose named document field equals
	// value.
	QueryByField(ctx context.Context, field, value string) ([]patient.Record, error)
	// GetAll returns every record in the collection.
	GetAll(ctx context.Context) ([]patient.Record, error)
	// DeleteByID removes one record.
	DeleteByID(ctx context.Context, id string) error
}
