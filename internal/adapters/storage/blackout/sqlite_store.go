package blackout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookingrelay/internal/adapters/storage"
	domain "bookingrelay/internal/domain/blackout"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new blackout store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Blackout by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Blackout, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, label, start_date, end_date FROM blackout WHERE id = ?", id)
	entity, err := scanBlackout(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Blackout{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entity, err
}

// Save persists a Blackout (insert or update by ID).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Blackout) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO blackout (id, label, start_date, end_date) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET label=excluded.label, start_date=excluded.start_date, end_date=excluded.end_date",
		entity.ID, entity.Label, entity.StartDate.Format(domain.DateFormat), entity.EndDate.Format(domain.DateFormat),
	)
	return err
}

// SaveIfAbsent inserts entity unless its exact range is already stored.
// PRE: entity has been validated
// POST: at most one row per (start_date, end_date)
func (s *SQLiteStore) SaveIfAbsent(ctx context.Context, entity domain.Blackout) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO blackout (id, label, start_date, end_date) VALUES (?, ?, ?, ?) ON CONFLICT(start_date, end_date) DO NOTHING",
		entity.ID, entity.Label, entity.StartDate.Format(domain.DateFormat), entity.EndDate.Format(domain.DateFormat),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes a Blackout.
// PRE: id is non-empty
// POST: returns ErrNotFound when nothing was removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM blackout WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List retrieves all blackouts ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Blackout, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, start_date, end_date FROM blackout ORDER BY start_date, end_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Blackout
	for rows.Next() {
		entity, err := scanBlackout(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanBlackout(scan func(dest ...any) error) (domain.Blackout, error) {
	var entity domain.Blackout
	var startStr, endStr string
	if err := scan(&entity.ID, &entity.Label, &startStr, &endStr); err != nil {
		return domain.Blackout{}, err
	}
	var err error
	if entity.StartDate, err = time.Parse(domain.DateFormat, startStr); err != nil {
		return domain.Blackout{}, fmt.Errorf("blackout %s: bad start_date: %w", entity.ID, err)
	}
	if entity.EndDate, err = time.Parse(domain.DateFormat, endStr); err != nil {
		return domain.Blackout{}, fmt.Errorf("blackout %s: bad end_date: %w", entity.ID, err)
	}
	return entity, nil
}
