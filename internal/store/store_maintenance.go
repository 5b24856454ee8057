package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DigestCounts aggregates scan activity since a point in time, used by
// the daily digest job.
type DigestCounts struct {
	ScansRun      int `db:"scans_run"`
	FailedScans   int `db:"failed_scans"`
	CriticalScans int `db:"critical_scans"`
	HighRiskScans int `db:"high_risk_scans"`
	NewBreaches   int `db:"new_breaches"`
	NewExposures  int `db:"new_exposures"`
}

func (s *Store) GetDigestCounts(ctx context.Context, since time.Time) (*DigestCounts, error) {
	var counts DigestCounts
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			COUNT(*) AS scans_run,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_scans,
			COUNT(*) FILTER (WHERE risk_level = 'critical') AS critical_scans,
			COUNT(*) FILTER (WHERE risk_level = 'high') AS high_risk_scans,
			COALESCE((SELECT COUNT(*) FROM breach_records WHERE created_at >= $1), 0) AS new_breaches,
			COALESCE((SELECT COUNT(*) FROM social_exposures WHERE created_at >= $1), 0) AS new_exposures
		FROM footprint_scans
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// DeleteScansOlderThan removes scans past the retention window; breach
// records and exposures go with them via ON DELETE CASCADE.
func (s *Store) DeleteScansOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM footprint_scans WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListUserIDsByTarget returns the distinct users who have scanned the
// given email, for scheduled rescans.
func (s *Store) ListUserIDsByTarget(ctx context.Context, targetEmail string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT user_id FROM footprint_scans WHERE target_email = $1`, targetEmail)
	return ids, err
}
