// Package repository persists survey submissions.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/pkg/metrics"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Submission is one stored respondent profile. The profile fields are
// embedded so that exported JSON decodes back into profiles.
type Submission struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	model.Profile

	// IdempotencyKey is the client key the submission was sent with, if any.
	// Stored keys are unique.
	IdempotencyKey string `json:"-"`
}

// Store provides read/write access to submissions.
type Store interface {
	// Save persists s. Returns ErrDuplicateKey if s.IdempotencyKey is already
	// stored and ErrConflict if s.ID is taken.
	Save(ctx context.Context, s Submission) error

	// Get returns the submission with id or ErrNotFound.
	Get(ctx context.Context, id string) (Submission, error)

	// GetByKey returns the submission stored under an idempotency key or
	// ErrNotFound.
	GetByKey(ctx context.Context, key string) (Submission, error)

	// List returns all submissions ordered by creation time, then id.
	List(ctx context.Context) ([]Submission, error)

	// Count returns the number of stored submissions.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open returns the store for driver. dsn is ignored by the memory store.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// observe records the latency of a store operation.
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
}
