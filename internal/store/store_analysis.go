package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/models"
)

func (s *Store) CreateTextAnalysis(ctx context.Context, analysis *models.TextAnalysis) error {
	query := `
		INSERT INTO text_analyses (
			id, user_id, input_text, entities, categories, risk_score,
			risk_level, privacy_score, recommendations, source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	analysis.ID = uuid.New()
	analysis.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.InputText,
		analysis.Entities,
		analysis.Categories,
		analysis.RiskScore,
		analysis.RiskLevel,
		analysis.PrivacyScore,
		analysis.Recommendations,
		analysis.Source,
		analysis.CreatedAt,
	)
	return err
}

func (s *Store) GetTextAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*models.TextAnalysis, error) {
	var analysis models.TextAnalysis
	query := `SELECT * FROM text_analyses WHERE id = $1 AND user_id = $2`
	err := s.db.GetContext(ctx, &analysis, query, analysisID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &analysis, err
}

func (s *Store) ListTextAnalyses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TextAnalysis, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM text_analyses WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM text_analyses WHERE user_id = $1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
		if offset > 0 {
			query += ` OFFSET $3`
			args = append(args, offset)
		}
	}

	var analyses []models.TextAnalysis
	err := s.db.SelectContext(ctx, &analyses, query, args...)
	return analyses, total, err
}

// GetConsent returns the user's consent record, or nil when the user
// has never saved one. Absent consent means nothing is permitted.
func (s *Store) GetConsent(ctx context.Context, userID uuid.UUID) (*models.ConsentRecord, error) {
	var consent models.ConsentRecord
	query := `SELECT * FROM consent_records WHERE user_id = $1`
	err := s.db.GetContext(ctx, &consent, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &consent, err
}

func (s *Store) UpsertConsent(ctx context.Context, consent *models.ConsentRecord) error {
	query := `
		INSERT INTO consent_records (user_id, data_processing, breach_lookup, social_scan, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			data_processing = EXCLUDED.data_processing,
			breach_lookup = EXCLUDED.breach_lookup,
			social_scan = EXCLUDED.social_scan,
			updated_at = EXCLUDED.updated_at
	`
	consent.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		consent.UserID,
		consent.DataProcessing,
		consent.BreachLookup,
		consent.SocialScan,
		consent.UpdatedAt,
	)
	return err
}
