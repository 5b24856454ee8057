package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/privasee/footprint/internal/models"
)

type Store struct {
	db *sqlx.DB
}

type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

func New(cfg Config) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) CreateScan(ctx context.Context, scan *models.FootprintScan) error {
	query := `
		INSERT INTO footprint_scans (
			id, user_id, scan_type, target_email, target_phone, status,
			risk_score, privacy_score, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	scan.ID = uuid.New()
	scan.CreatedAt = time.Now()
	scan.UpdatedAt = scan.CreatedAt
	if scan.Status == "" {
		scan.Status = models.ScanStatusPending
	}
	if scan.ScanType == "" {
		scan.ScanType = models.ScanTypeFull
	}

	_, err := s.db.ExecContext(ctx, query,
		scan.ID,
		scan.UserID,
		scan.ScanType,
		scan.TargetEmail,
		scan.TargetPhone,
		scan.Status,
		scan.RiskScore,
		scan.PrivacyScore,
		scan.CreatedAt,
		scan.UpdatedAt,
	)
	return err
}

// GetScan fetches a scan owned by userID. Rows belonging to other users
// are invisible, not forbidden.
func (s *Store) GetScan(ctx context.Context, userID, scanID uuid.UUID) (*models.FootprintScan, error) {
	var scan models.FootprintScan
	query := `SELECT * FROM footprint_scans WHERE id = $1 AND user_id = $2`
	err := s.db.GetContext(ctx, &scan, query, scanID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &scan, err
}

type ListScanFilters struct {
	Status   *models.ScanStatus
	ScanType *models.ScanType
	Limit    int
	Offset   int
}

func (s *Store) ListScans(ctx context.Context, userID uuid.UUID, filters ListScanFilters) ([]models.FootprintScan, int, error) {
	baseQuery := `FROM footprint_scans WHERE user_id = $1`
	args := []interface{}{userID}
	argIdx := 2

	if filters.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filters.Status)
		argIdx++
	}
	if filters.ScanType != nil {
		baseQuery += fmt.Sprintf(" AND scan_type = $%d", argIdx)
		args = append(args, *filters.ScanType)
		argIdx++
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * " + baseQuery + " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	var scans []models.FootprintScan
	err := s.db.SelectContext(ctx, &scans, query, args...)
	return scans, total, err
}

func (s *Store) UpdateScanStatus(ctx context.Context, scanID uuid.UUID, status models.ScanStatus, message string) error {
	query := `UPDATE footprint_scans SET status = $1, status_message = $2, updated_at = $3 WHERE id = $4`
	_, err := s.db.ExecContext(ctx, query, status, message, time.Now(), scanID)
	return err
}

// UpdateScanResults writes the aggregate assessment onto a scan and
// marks it completed.
func (s *Store) UpdateScanResults(ctx context.Context, scan *models.FootprintScan) error {
	query := `
		UPDATE footprint_scans SET
			status = $1, risk_score = $2, risk_level = $3, privacy_score = $4,
			breach_count = $5, social_exposure_score = $6, recommendations = $7,
			scan_results = $8, updated_at = $9, completed_at = $10
		WHERE id = $11
	`
	now := time.Now()
	scan.UpdatedAt = now
	scan.CompletedAt = &now

	_, err := s.db.ExecContext(ctx, query,
		scan.Status,
		scan.RiskScore,
		scan.RiskLevel,
		scan.PrivacyScore,
		scan.BreachCount,
		scan.SocialExposureScore,
		scan.Recommendations,
		scan.ScanResults,
		scan.UpdatedAt,
		scan.CompletedAt,
		scan.ID,
	)
	return err
}

// UpdateScanBreachCount refreshes the breach counter without touching
// status or completion timestamps, so a standalone breach check on a
// pending scan does not mark it finished.
func (s *Store) UpdateScanBreachCount(ctx context.Context, scanID uuid.UUID, breachCount int) error {
	query := `UPDATE footprint_scans SET breach_count = $1, updated_at = $2 WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, breachCount, time.Now(), scanID)
	return err
}

func (s *Store) DeleteScan(ctx context.Context, userID, scanID uuid.UUID) error {
	query := `DELETE FROM footprint_scans WHERE id = $1 AND user_id = $2`
	_, err := s.db.ExecContext(ctx, query, scanID, userID)
	return err
}

func (s *Store) CreateBreachRecord(ctx context.Context, record *models.BreachRecord) error {
	query := `
		INSERT INTO breach_records (
			id, scan_id, breach_name, breach_date, data_classes,
			severity, verified, description, source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.ScanID,
		record.Name,
		record.BreachDate,
		record.DataClasses,
		record.Severity,
		record.Verified,
		record.Description,
		record.Source,
		record.CreatedAt,
	)
	return err
}

func (s *Store) ListBreachRecords(ctx context.Context, scanID uuid.UUID) ([]models.BreachRecord, error) {
	var records []models.BreachRecord
	query := `SELECT * FROM breach_records WHERE scan_id = $1 ORDER BY created_at`
	err := s.db.SelectContext(ctx, &records, query, scanID)
	return records, err
}

// DeleteBreachRecords clears a scan's breach findings ahead of a
// re-check, so repeated checks replace rather than accumulate.
func (s *Store) DeleteBreachRecords(ctx context.Context, scanID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM breach_records WHERE scan_id = $1`, scanID)
	return err
}

func (s *Store) CreateSocialExposure(ctx context.Context, exposure *models.SocialExposure) error {
	query := `
		INSERT INTO social_exposures (
			id, scan_id, platform, exposure_type, risk_level, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	exposure.ID = uuid.New()
	exposure.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		exposure.ID,
		exposure.ScanID,
		exposure.Platform,
		exposure.ExposureType,
		exposure.RiskLevel,
		exposure.Details,
		exposure.CreatedAt,
	)
	return err
}

func (s *Store) ListSocialExposures(ctx context.Context, scanID uuid.UUID) ([]models.SocialExposure, error) {
	var exposures []models.SocialExposure
	query := `SELECT * FROM social_exposures WHERE scan_id = $1 ORDER BY created_at`
	err := s.db.SelectContext(ctx, &exposures, query, scanID)
	return exposures, err
}

func (s *Store) DeleteSocialExposures(ctx context.Context, scanID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM social_exposures WHERE scan_id = $1`, scanID)
	return err
}

// DashboardSummary aggregates a user's footprint at a glance.
type DashboardSummary struct {
	TotalScans      int                   `json:"total_scans"`
	CompletedScans  int                   `json:"completed_scans"`
	TotalBreaches   int                   `json:"total_breaches"`
	TotalExposures  int                   `json:"total_exposures"`
	TotalAnalyses   int                   `json:"total_analyses"`
	LatestScan      *models.FootprintScan `json:"latest_scan,omitempty"`
	HighestRiskScan *models.FootprintScan `json:"highest_risk_scan,omitempty"`
}

func (s *Store) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	err := s.db.GetContext(ctx, &summary.TotalScans,
		`SELECT COUNT(*) FROM footprint_scans WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &summary.CompletedScans,
		`SELECT COUNT(*) FROM footprint_scans WHERE user_id = $1 AND status = 'completed'`, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &summary.TotalBreaches, `
		SELECT COUNT(*) FROM breach_records b
		JOIN footprint_scans s ON s.id = b.scan_id
		WHERE s.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &summary.TotalExposures, `
		SELECT COUNT(*) FROM social_exposures e
		JOIN footprint_scans s ON s.id = e.scan_id
		WHERE s.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &summary.TotalAnalyses,
		`SELECT COUNT(*) FROM text_analyses WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	var latest models.FootprintScan
	err = s.db.GetContext(ctx, &latest,
		`SELECT * FROM footprint_scans WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		summary.LatestScan = &latest
	}

	var highest models.FootprintScan
	err = s.db.GetContext(ctx, &highest, `
		SELECT * FROM footprint_scans
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY risk_score DESC, created_at DESC LIMIT 1`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		summary.HighestRiskScan = &highest
	}

	return summary, nil
}
