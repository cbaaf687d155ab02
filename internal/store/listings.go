package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"empregozap-engine/internal/domain"
)

const listingCols = `id, role, company, city, state, description, url, source, contract_type,
is_remote, is_confidential, published_at, salary_min, salary_max, seniority, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (domain.Listing, error) {
	var l domain.Listing
	var company, city, state, description, contractType, seniority, publishedAt sql.NullString
	var salaryMin, salaryMax sql.NullFloat64
	var createdAt, updatedAt string
	if err := row.Scan(
		&l.ID, &l.Role, &company, &city, &state, &description, &l.URL, &l.Source,
		&contractType, &l.Remote, &l.Confidential, &publishedAt,
		&salaryMin, &salaryMax, &seniority, &createdAt, &updatedAt,
	); err != nil {
		return domain.Listing{}, err
	}
	l.Company = nullStr(company)
	l.City = nullStr(city)
	l.State = nullStr(state)
	l.Description = nullStr(description)
	l.ContractType = nullStr(contractType)
	l.Seniority = nullStr(seniority)
	if publishedAt.Valid {
		t := parseTime(publishedAt.String)
		l.PublishedAt = &t
	}
	if salaryMin.Valid {
		l.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		l.SalaryMax = &salaryMax.Float64
	}
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return l, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func strNull(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatNull(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeNull(p *time.Time) any {
	if p == nil {
		return nil
	}
	return fmtTime(*p)
}

// UpsertListings persists a scraped batch for one user inside a single
// transaction: either every listing lands or none do. The URL is the natural
// key; re-discovering a known URL refreshes the mutable fields and never
// touches id or created_at. The return value holds the listings that are new
// for this user, i.e. the ones that created fresh delivery rows, with their
// ids filled in.
func (s *Store) UpsertListings(ctx context.Context, listings []domain.Listing, userID string) ([]domain.Listing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert listings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := fmtTime(time.Now())
	var newForUser []domain.Listing

	for _, l := range listings {
		if l.URL == "" || l.Role == "" {
			return nil, fmt.Errorf("upsert listings: listing missing url or role (source=%s)", l.Source)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO listings (
  role, company, city, state, description, url, source, contract_type,
  is_remote, is_confidential, published_at, salary_min, salary_max, seniority,
  created_at, updated_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
  role = excluded.role,
  company = excluded.company,
  city = excluded.city,
  state = excluded.state,
  description = excluded.description,
  source = excluded.source,
  contract_type = excluded.contract_type,
  is_remote = excluded.is_remote,
  is_confidential = excluded.is_confidential,
  published_at = excluded.published_at,
  salary_min = excluded.salary_min,
  salary_max = excluded.salary_max,
  seniority = excluded.seniority,
  updated_at = excluded.updated_at;`,
			l.Role, strNull(l.Company), strNull(l.City), strNull(l.State),
			strNull(l.Description), l.URL, l.Source, strNull(l.ContractType),
			l.Remote, l.Confidential, timeNull(l.PublishedAt),
			floatNull(l.SalaryMin), floatNull(l.SalaryMax), strNull(l.Seniority),
			now, now,
		); err != nil {
			return nil, fmt.Errorf("upsert listing url=%s: %w", l.URL, err)
		}

		var listingID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM listings WHERE url = ?;`, l.URL).Scan(&listingID); err != nil {
			return nil, fmt.Errorf("upsert listing id lookup url=%s: %w", l.URL, err)
		}

		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO deliveries (user_id, listing_id, created_at)
VALUES (?, ?, ?);`, userID, listingID, now)
		if err != nil {
			return nil, fmt.Errorf("associate listing %d with user %s: %w", listingID, userID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			l.ID = listingID
			newForUser = append(newForUser, l)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert listings: commit: %w", err)
	}
	return newForUser, nil
}

// ListingsByUser returns every listing matched to a user, newest first.
func (s *Store) ListingsByUser(ctx context.Context, userID string) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+qualify(listingCols, "l")+`
FROM listings l
JOIN deliveries d ON d.listing_id = l.id
WHERE d.user_id = ?
ORDER BY l.id DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("listings by user: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// PurgeOlderThan removes listings created before the horizon. A listing is
// spared while some user still has an undelivered delivery row for it that
// is newer than the horizon.
func (s *Store) PurgeOlderThan(ctx context.Context, horizonDays int) (int64, error) {
	cutoff := fmtTime(time.Now().AddDate(0, 0, -horizonDays))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purge: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Delivery rows first so the listing delete sees a consistent view and
	// no foreign key is left dangling.
	if _, err := tx.ExecContext(ctx, `
DELETE FROM deliveries
WHERE listing_id IN (
  SELECT id FROM listings
  WHERE created_at < ?
)
AND NOT (delivered_at IS NULL AND created_at >= ?);`, cutoff, cutoff); err != nil {
		return 0, fmt.Errorf("purge deliveries: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
DELETE FROM listings
WHERE created_at < ?
  AND NOT EXISTS (
    SELECT 1 FROM deliveries d
    WHERE d.listing_id = listings.id
      AND d.delivered_at IS NULL
      AND d.created_at >= ?
  );`, cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge listings: %w", err)
	}
	removed, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("purge: commit: %w", err)
	}
	return removed, nil
}
