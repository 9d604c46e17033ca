package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domain "bookingrelay/internal/domain/blackout"
)

// --- Mock blackout store ---

type mockBlackoutStore struct {
	rows map[string]domain.Blackout
}

func newMockBlackoutStore() *mockBlackoutStore {
	return &mockBlackoutStore{rows: make(map[string]domain.Blackout)}
}

// Save stores b by ID.
func (m *mockBlackoutStore) Save(_ context.Context, b domain.Blackout) error {
	m.rows[b.ID] = b
	return nil
}

// SaveIfAbsent stores b unless the same range exists.
func (m *mockBlackoutStore) SaveIfAbsent(_ context.Context, b domain.Blackout) (bool, error) {
	for _, existing := range m.rows {
		if existing.String() == b.String() {
			return false, nil
		}
	}
	m.rows[b.ID] = b
	return true, nil
}

// Delete removes id or reports it missing.
func (m *mockBlackoutStore) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return errors.New("not found")
	}
	delete(m.rows, id)
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

// TestExecuteSeedBlackouts_Idempotent verifies a second seed run writes nothing.
func TestExecuteSeedBlackouts_Idempotent(t *testing.T) {
	store := newMockBlackoutStore()
	deps := BlackoutDeps{Store: store, GenerateID: sequentialIDs()}
	seeds := []string{"2026-12-24..2026-12-26", "not-a-date", "2027-01-01"}

	n, err := ExecuteSeedBlackouts(context.Background(), seeds, deps)
	if err != nil || n != 2 {
		t.Fatalf("first seed = %d, %v; want 2, nil", n, err)
	}
	n, err = ExecuteSeedBlackouts(context.Background(), seeds, deps)
	if err != nil || n != 0 {
		t.Fatalf("second seed = %d, %v; want 0, nil", n, err)
	}
	if len(store.rows) != 2 {
		t.Errorf("rows = %d, want 2", len(store.rows))
	}
}

// TestExecuteAddRemoveBlackout covers the operator add and remove paths.
func TestExecuteAddRemoveBlackout(t *testing.T) {
	store := newMockBlackoutStore()
	deps := BlackoutDeps{Store: store, GenerateID: sequentialIDs()}
	ctx := context.Background()

	if _, err := ExecuteAddBlackout(ctx, AddBlackoutInput{}, deps); err == nil {
		t.Error("empty range accepted")
	}
	if _, err := ExecuteAddBlackout(ctx, AddBlackoutInput{Range: "2026-12-26..2026-12-24"}, deps); !errors.Is(err, domain.ErrInvalidDates) {
		t.Errorf("reversed range err = %v, want ErrInvalidDates", err)
	}

	b, err := ExecuteAddBlackout(ctx, AddBlackoutInput{Range: "2026-11-10", Label: "Maintenance"}, deps)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if store.rows[b.ID].Label != "Maintenance" {
		t.Errorf("stored = %+v", store.rows[b.ID])
	}

	if err := ExecuteRemoveBlackout(ctx, b.ID, deps); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := ExecuteRemoveBlackout(ctx, b.ID, deps); err == nil {
		t.Error("removing twice should fail")
	}
	if err := ExecuteRemoveBlackout(ctx, "", deps); err == nil {
		t.Error("empty ID accepted")
	}
}
