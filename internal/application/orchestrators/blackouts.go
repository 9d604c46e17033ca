package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domain "bookingrelay/internal/domain/blackout"
)

// BlackoutStoreForOrchestrator defines the store interface needed by blackout orchestrators.
type BlackoutStoreForOrchestrator interface {
	Save(ctx context.Context, b domain.Blackout) error
	SaveIfAbsent(ctx context.Context, b domain.Blackout) (bool, error)
	Delete(ctx context.Context, id string) error
}

// BlackoutDeps holds dependencies for blackout orchestrators.
type BlackoutDeps struct {
	Store      BlackoutStoreForOrchestrator
	GenerateID func() string
}

// --- Seed ---

// ExecuteSeedBlackouts stores every configured range that is not stored yet.
// Malformed entries are skipped with a warning so a typo cannot stop the server.
// PRE: seeds are "YYYY-MM-DD" or "YYYY-MM-DD..YYYY-MM-DD"
// POST: running twice with the same seeds writes nothing the second time; returns rows written
func ExecuteSeedBlackouts(ctx context.Context, seeds []string, deps BlackoutDeps) (int, error) {
	written := 0
	for _, s := range seeds {
		b, err := domain.ParseRange(s)
		if err != nil {
			slog.Warn("blackout_seed_skipped", "value", s, "error", err)
			continue
		}
		b.ID = deps.GenerateID()
		b.Label = "configured"
		ok, err := deps.Store.SaveIfAbsent(ctx, b)
		if err != nil {
			return written, fmt.Errorf("seed blackout %s: %w", s, err)
		}
		if ok {
			written++
		}
	}
	if written > 0 {
		slog.Info("blackouts_seeded", "count", written)
	}
	return written, nil
}

// --- Add ---

// AddBlackoutInput carries input for adding a blackout.
type AddBlackoutInput struct {
	Range string // "YYYY-MM-DD" or "YYYY-MM-DD..YYYY-MM-DD"
	Label string
}

// ExecuteAddBlackout parses and stores one blackout.
// PRE: input.Range is non-empty
// POST: blackout persisted with a fresh ID
func ExecuteAddBlackout(ctx context.Context, input AddBlackoutInput, deps BlackoutDeps) (domain.Blackout, error) {
	if input.Range == "" {
		return domain.Blackout{}, errors.New("range is required")
	}
	b, err := domain.ParseRange(input.Range)
	if err != nil {
		return domain.Blackout{}, err
	}
	b.ID = deps.GenerateID()
	b.Label = input.Label
	if err := deps.Store.Save(ctx, b); err != nil {
		return domain.Blackout{}, err
	}
	slog.Info("blackout_added", "id", b.ID, "range", b.String())
	return b, nil
}

// --- Remove ---

// ExecuteRemoveBlackout deletes a blackout by ID.
// PRE: id is non-empty
// POST: blackout removed, or the store's not-found error returned
func ExecuteRemoveBlackout(ctx context.Context, id string, deps BlackoutDeps) error {
	if id == "" {
		return errors.New("blackout ID is required")
	}
	if err := deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("blackout_removed", "id", id)
	return nil
}
