package blackout

import (
	"context"
	"errors"

	domain "bookingrelay/internal/domain/blackout"
)

// ErrNotFound is returned when no blackout has the requested ID.
var ErrNotFound = errors.New("blackout not found")

// Store persists operator-managed blackout dates.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Blackout, error)
	Save(ctx context.Context, value domain.Blackout) error
	// SaveIfAbsent inserts value unless a blackout with the same range exists.
	// It reports whether a row was written.
	SaveIfAbsent(ctx context.Context, value domain.Blackout) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Blackout, error)
}
