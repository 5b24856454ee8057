// Package scan runs the footprint pipeline over one scan record:
// breach check, social scan, aggregate assessment, recommendations.
// Both the synchronous API path and the queue worker drive the same
// Runner.
package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/privasee/footprint/internal/lookup"
	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/risk"
	"github.com/privasee/footprint/internal/store"
)

// DefaultPlatforms are scanned when a request names none.
var DefaultPlatforms = []string{"facebook", "twitter", "instagram", "linkedin"}

// Notifier is told about completed assessments. Implementations decide
// whether the result clears their severity gate.
type Notifier interface {
	NotifyScanResult(ctx context.Context, scan *models.FootprintScan, assessment risk.Assessment) error
}

type Runner struct {
	store    *store.Store
	breaches lookup.BreachLookup
	social   lookup.SocialExposureLookup
	notifier Notifier
	logger   *slog.Logger
}

func NewRunner(st *store.Store, breaches lookup.BreachLookup, social lookup.SocialExposureLookup, notifier Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:    st,
		breaches: breaches,
		social:   social,
		notifier: notifier,
		logger:   logger,
	}
}

// CheckBreaches looks up the scan target's email and replaces the
// scan's stored breach findings. Severity is assigned here, once.
func (r *Runner) CheckBreaches(ctx context.Context, scan *models.FootprintScan) ([]models.BreachRecord, error) {
	found, err := r.breaches.FindBreaches(ctx, scan.TargetEmail)
	if err != nil {
		return nil, fmt.Errorf("breach lookup: %w", err)
	}

	if err := r.store.DeleteBreachRecords(ctx, scan.ID); err != nil {
		return nil, fmt.Errorf("clearing breach records: %w", err)
	}

	records := make([]models.BreachRecord, 0, len(found))
	for _, b := range found {
		record := models.BreachRecord{
			ScanID:      scan.ID,
			Name:        b.Name,
			BreachDate:  b.Date,
			DataClasses: b.DataClasses,
			Severity:    risk.BreachSeverity(b.DataClasses),
			Verified:    b.Verified,
			Description: b.Description,
			Source:      b.Source,
		}
		if err := r.store.CreateBreachRecord(ctx, &record); err != nil {
			return nil, fmt.Errorf("saving breach record: %w", err)
		}
		records = append(records, record)
	}

	r.logger.Info("breach check finished",
		"scan_id", scan.ID, "breaches", len(records), "source", breachSource(records))
	return records, nil
}

// ScanSocial replaces the scan's stored exposures with fresh findings
// for the requested platforms.
func (r *Runner) ScanSocial(ctx context.Context, scan *models.FootprintScan, platforms []string) ([]models.SocialExposure, error) {
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}

	found, err := r.social.ScanPlatforms(ctx, scan.TargetEmail, platforms)
	if err != nil {
		return nil, fmt.Errorf("social scan: %w", err)
	}

	if err := r.store.DeleteSocialExposures(ctx, scan.ID); err != nil {
		return nil, fmt.Errorf("clearing exposures: %w", err)
	}

	exposures := make([]models.SocialExposure, 0, len(found))
	for _, e := range found {
		exposure := models.SocialExposure{
			ScanID:       scan.ID,
			Platform:     e.Platform,
			ExposureType: e.ExposureType,
			RiskLevel:    e.RiskLevel,
			Details:      models.JSONB(e.Details),
		}
		if err := r.store.CreateSocialExposure(ctx, &exposure); err != nil {
			return nil, fmt.Errorf("saving exposure: %w", err)
		}
		exposures = append(exposures, exposure)
	}

	r.logger.Info("social scan finished",
		"scan_id", scan.ID, "platforms", len(platforms), "exposures", len(exposures))
	return exposures, nil
}

// Assess aggregates the scan's stored findings and persists the result
// before it is returned. A persistence failure surfaces as an error
// with no partial write visible to the caller.
func (r *Runner) Assess(ctx context.Context, scan *models.FootprintScan) (*risk.Assessment, error) {
	breaches, err := r.store.ListBreachRecords(ctx, scan.ID)
	if err != nil {
		return nil, fmt.Errorf("loading breach records: %w", err)
	}
	exposures, err := r.store.ListSocialExposures(ctx, scan.ID)
	if err != nil {
		return nil, fmt.Errorf("loading exposures: %w", err)
	}

	assessment := risk.Aggregate(breaches, exposures)

	scan.Status = models.ScanStatusCompleted
	scan.RiskScore = assessment.OverallScore
	scan.RiskLevel = assessment.RiskLevel
	scan.PrivacyScore = assessment.PrivacyScore
	scan.BreachCount = assessment.BreachCount
	scan.SocialExposureScore = assessment.SocialContribution
	scan.Recommendations = models.StringArray(assessment.Recommendations)
	if scan.ScanResults == nil {
		scan.ScanResults = models.JSONB{}
	}
	scan.ScanResults["assessment"] = assessment
	scan.ScanResults["breach_source"] = breachSource(breaches)

	if err := r.store.UpdateScanResults(ctx, scan); err != nil {
		return nil, fmt.Errorf("saving assessment: %w", err)
	}

	return &assessment, nil
}

// GenerateRecommendations builds the tiered plan from the scan's stored
// findings and persists it onto the scan record.
func (r *Runner) GenerateRecommendations(ctx context.Context, scan *models.FootprintScan) (*risk.Plan, error) {
	breaches, err := r.store.ListBreachRecords(ctx, scan.ID)
	if err != nil {
		return nil, fmt.Errorf("loading breach records: %w", err)
	}
	exposures, err := r.store.ListSocialExposures(ctx, scan.ID)
	if err != nil {
		return nil, fmt.Errorf("loading exposures: %w", err)
	}

	plan := risk.Recommend(scan.RiskScore, breaches, exposures)

	scan.Recommendations = models.StringArray(plan.All)
	if scan.ScanResults == nil {
		scan.ScanResults = models.JSONB{}
	}
	scan.ScanResults["recommendation_plan"] = plan

	if err := r.store.UpdateScanResults(ctx, scan); err != nil {
		return nil, fmt.Errorf("saving recommendations: %w", err)
	}

	return &plan, nil
}

// Run executes the full pipeline. Failures mark the scan failed with a
// status message; partial findings from completed steps are kept.
func (r *Runner) Run(ctx context.Context, scan *models.FootprintScan, platforms []string) error {
	if err := r.store.UpdateScanStatus(ctx, scan.ID, models.ScanStatusRunning, ""); err != nil {
		return fmt.Errorf("marking scan running: %w", err)
	}
	scan.Status = models.ScanStatusRunning

	if err := r.runSteps(ctx, scan, platforms); err != nil {
		r.logger.Error("scan failed", "scan_id", scan.ID, "error", err)
		if updateErr := r.store.UpdateScanStatus(ctx, scan.ID, models.ScanStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark scan failed", "scan_id", scan.ID, "error", updateErr)
		}
		return err
	}

	r.logger.Info("scan completed", "scan_id", scan.ID, "risk_score", scan.RiskScore, "risk_level", scan.RiskLevel)
	return nil
}

func (r *Runner) runSteps(ctx context.Context, scan *models.FootprintScan, platforms []string) error {
	if scan.ScanType == models.ScanTypeFull || scan.ScanType == models.ScanTypeBreachCheck {
		if _, err := r.CheckBreaches(ctx, scan); err != nil {
			return err
		}
	}

	if scan.ScanType == models.ScanTypeFull || scan.ScanType == models.ScanTypeSocial {
		if _, err := r.ScanSocial(ctx, scan, platforms); err != nil {
			return err
		}
	}

	assessment, err := r.Assess(ctx, scan)
	if err != nil {
		return err
	}

	if _, err := r.GenerateRecommendations(ctx, scan); err != nil {
		return err
	}

	if r.notifier != nil {
		if err := r.notifier.NotifyScanResult(ctx, scan, *assessment); err != nil {
			r.logger.Warn("scan result notification failed", "scan_id", scan.ID, "error", err)
		}
	}
	return nil
}

func breachSource(records []models.BreachRecord) string {
	for _, rec := range records {
		if rec.Source == lookup.SourceSynthetic {
			return lookup.SourceSynthetic
		}
	}
	if len(records) > 0 {
		return records[0].Source
	}
	return ""
}
