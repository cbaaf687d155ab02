package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"empregozap-engine/internal/domain"
)

const searchCols = `id, user_id, role, city, state, contact, status, last_run_at, created_at, updated_at`

func scanSearch(row interface{ Scan(...any) error }) (domain.Search, error) {
	var s domain.Search
	var status, createdAt, updatedAt string
	var lastRun sql.NullString
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Role, &s.City, &s.State, &s.Contact,
		&status, &lastRun, &createdAt, &updatedAt,
	); err != nil {
		return domain.Search{}, err
	}
	s.Status = domain.SearchStatus(status)
	if lastRun.Valid {
		t := parseTime(lastRun.String)
		s.LastRunAt = &t
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return s, nil
}

func (s *Store) CreateSearch(ctx context.Context, userID, role, city, state, contact string) (domain.Search, error) {
	now := fmtTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
INSERT INTO searches (user_id, role, city, state, contact, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		userID, role, city, state, contact, string(domain.StatusPending), now, now,
	)
	if err != nil {
		return domain.Search{}, fmt.Errorf("create search: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.SearchByID(ctx, id)
}

func (s *Store) SearchByID(ctx context.Context, id int64) (domain.Search, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+searchCols+` FROM searches WHERE id = ?;`, id)
	sr, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Search{}, ErrNotFound
	}
	return sr, err
}

// LatestSearchByUser returns the canonical (most recently created) search
// for a user.
func (s *Store) LatestSearchByUser(ctx context.Context, userID string) (domain.Search, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+searchCols+` FROM searches
WHERE user_id = ?
ORDER BY id DESC
LIMIT 1;`, userID)
	sr, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Search{}, ErrNotFound
	}
	return sr, err
}

// UpdateSearchParams rewrites the profile in place and resets the search to
// pending so the next cycle picks it up with the new parameters.
func (s *Store) UpdateSearchParams(ctx context.Context, id int64, role, city, state, contact string) (domain.Search, error) {
	_, err := s.db.ExecContext(ctx, `
UPDATE searches
SET role = ?, city = ?, state = ?, contact = ?, status = ?, updated_at = ?
WHERE id = ?;`,
		role, city, state, contact, string(domain.StatusPending), fmtTime(time.Now()), id,
	)
	if err != nil {
		return domain.Search{}, fmt.Errorf("update search params: %w", err)
	}
	return s.SearchByID(ctx, id)
}

// UpdateContact refreshes only the delivery address; status is untouched.
func (s *Store) UpdateContact(ctx context.Context, id int64, contact string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE searches SET contact = ?, updated_at = ? WHERE id = ?;`,
		contact, fmtTime(time.Now()), id)
	return err
}

// SetStatus writes a status unconditionally. Callers go through the
// lifecycle manager, which validates the transition first.
func (s *Store) SetStatus(ctx context.Context, id int64, to domain.SearchStatus) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE searches SET status = ?, updated_at = ? WHERE id = ?;`,
		string(to), fmtTime(time.Now()), id)
	return err
}

// CloseRun finalizes a run: the status flips only if the row is still in
// scraping. A concurrent re-submission resets the row to pending, and that
// queued update must win over the in-flight run's result.
func (s *Store) CloseRun(ctx context.Context, id int64, to domain.SearchStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE searches SET status = ?, updated_at = ?
WHERE id = ? AND status = ?;`,
		string(to), fmtTime(time.Now()), id, string(domain.StatusScraping))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) TouchLastRun(ctx context.Context, id int64) error {
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
UPDATE searches SET last_run_at = ?, updated_at = ? WHERE id = ?;`,
		now, now, id)
	return err
}

// ActiveSearches returns the canonical search per user in status active,
// the set the delivery cycle walks.
func (s *Store) ActiveSearches(ctx context.Context) ([]domain.Search, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+searchCols+` FROM searches
WHERE id IN (SELECT MAX(id) FROM searches GROUP BY user_id)
  AND status = 'active'
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("active searches: %w", err)
	}
	defer rows.Close()

	var out []domain.Search
	for rows.Next() {
		sr, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// DueSearches returns the canonical search per user whose status makes it
// eligible for the next scraping cycle.
func (s *Store) DueSearches(ctx context.Context) ([]domain.Search, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+searchCols+` FROM searches
WHERE id IN (SELECT MAX(id) FROM searches GROUP BY user_id)
  AND status IN ('pending', 'active', 'error', 'completed')
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("due searches: %w", err)
	}
	defer rows.Close()

	var out []domain.Search
	for rows.Next() {
		sr, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
