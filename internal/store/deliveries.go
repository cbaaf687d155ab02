package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"empregozap-engine/internal/domain"
)

// PrioritizedUnsent returns up to limit undelivered listings for a user.
// Order: information completeness (salary, seniority, contract type,
// description present) descending, then publication date descending, then
// insertion order. The SQL expression must stay in sync with
// domain.Listing.CompletenessScore.
func (s *Store) PrioritizedUnsent(ctx context.Context, userID string, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+qualify(listingCols, "l")+`
FROM listings l
JOIN deliveries d ON d.listing_id = l.id
WHERE d.user_id = ? AND d.delivered_at IS NULL
ORDER BY
  (CASE WHEN l.salary_min IS NOT NULL THEN 1 ELSE 0 END
   + CASE WHEN l.seniority IS NOT NULL AND l.seniority != '' THEN 1 ELSE 0 END
   + CASE WHEN l.contract_type IS NOT NULL AND l.contract_type != '' THEN 1 ELSE 0 END
   + CASE WHEN l.description IS NOT NULL AND l.description != '' THEN 1 ELSE 0 END) DESC,
  l.published_at DESC,
  l.id ASC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("prioritized unsent: %w", err)
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

// MarkDelivered stamps delivered_at for the given (user, listing) pairs.
// Already-delivered pairs are untouched, so the call is idempotent and the
// timestamp is set at most once.
func (s *Store) MarkDelivered(ctx context.Context, userID string, listingIDs []int64) error {
	if len(listingIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(listingIDs)), ",")
	args := make([]any, 0, len(listingIDs)+2)
	args = append(args, fmtTime(time.Now()), userID)
	for _, id := range listingIDs {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx, `
UPDATE deliveries
SET delivered_at = ?
WHERE user_id = ?
  AND listing_id IN (`+placeholders+`)
  AND delivered_at IS NULL;`, args...)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

// qualify prefixes every column in a comma-separated list with a table
// alias, so the shared column list works in joins.
func qualify(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
