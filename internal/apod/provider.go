package apod

import (
	"context"
	"time"
)

// Upstream abstracts the third-party picture-of-the-day API.
type Upstream interface {
	Fetch(ctx context.Context, date time.Time) (Record, error)
}

// Store is the contract every record store (memory, mongo, sql) must satisfy.
// Implementations enforce at most one record per date.
type Store interface {
	// FindByDate returns ErrNotFound when the date has no record.
	FindByDate(ctx context.Context, date string) (Record, error)
	// FindRange returns records with start <= date <= end, compared as strings.
	FindRange(ctx context.Context, start, end string) ([]Record, error)
	// Insert persists rec and returns it with its ID set, or ErrDuplicate.
	Insert(ctx context.Context, rec Record) (Record, error)
	Close(ctx context.Context) error
}
