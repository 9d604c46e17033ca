package projections

import (
	"context"
	"fmt"
	"time"

	"bookingrelay/internal/domain/availability"
	"bookingrelay/internal/domain/blackout"
)

// DateConstraintBlackoutStore defines the store interface needed by this projection.
type DateConstraintBlackoutStore interface {
	List(ctx context.Context) ([]blackout.Blackout, error)
}

// GetDateConstraintQuery carries the moment the constraint is computed for.
type GetDateConstraintQuery struct {
	Now time.Time
}

// GetDateConstraintDeps holds dependencies for the projection.
type GetDateConstraintDeps struct {
	BlackoutStore DateConstraintBlackoutStore
	Policy        availability.Policy
}

// QueryGetDateConstraint builds the selectable window for the calendar day of query.Now.
// The day is taken in query.Now's location, so callers pass local time.
// PRE: deps.BlackoutStore is non-nil
// POST: constraint reflects every stored blackout
func QueryGetDateConstraint(ctx context.Context, query GetDateConstraintQuery, deps GetDateConstraintDeps) (availability.Constraint, error) {
	blackouts, err := deps.BlackoutStore.List(ctx)
	if err != nil {
		return availability.Constraint{}, fmt.Errorf("list blackouts: %w", err)
	}
	return availability.NewConstraint(query.Now, deps.Policy, blackouts), nil
}
