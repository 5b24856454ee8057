package risk

import (
	"fmt"
	"math"

	"github.com/privasee/footprint/internal/models"
)

// Assessment is the aggregate output of scoring one scan's breach and
// social findings.
type Assessment struct {
	OverallScore        int              `json:"overall_score"`
	RiskLevel           models.RiskLevel `json:"risk_level"`
	PrivacyScore        int              `json:"privacy_score"`
	BreachContribution  int              `json:"breach_contribution"`
	SocialContribution  int              `json:"social_contribution"`
	BreachCount         int              `json:"breach_count"`
	SocialExposureCount int              `json:"social_exposure_count"`
	Recommendations     []string         `json:"recommendations"`
	Summary             string           `json:"summary"`
}

// LevelForScore derives the discrete risk level from a 0-100 score.
func LevelForScore(score int) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskCritical
	case score >= 60:
		return models.RiskHigh
	case score >= 40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Aggregate scores a scan's findings. Each breach contributes its
// severity weight plus per-data-type points; each exposure contributes
// its combined base x multiplier x dampening weight. The total is
// clamped to 100.
func Aggregate(breaches []models.BreachRecord, exposures []models.SocialExposure) Assessment {
	breachScore := 0
	for _, b := range breaches {
		breachScore += SeverityWeight(b.Severity)
		for _, tok := range NormalizeDataClasses(b.DataClasses) {
			breachScore += DataTypePoints(tok)
		}
	}

	socialScore := 0.0
	for _, e := range exposures {
		socialScore += ExposureContribution(e.ExposureType, e.RiskLevel)
	}
	socialRounded := int(math.Round(socialScore))

	score := breachScore + socialRounded
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	privacy := 100 - score
	if privacy < 0 {
		privacy = 0
	}

	level := LevelForScore(score)

	return Assessment{
		OverallScore:        score,
		RiskLevel:           level,
		PrivacyScore:        privacy,
		BreachContribution:  breachScore,
		SocialContribution:  socialRounded,
		BreachCount:         len(breaches),
		SocialExposureCount: len(exposures),
		Recommendations:     Recommend(score, breaches, exposures).All,
		Summary:             summarize(level, len(breaches), len(exposures)),
	}
}

func summarize(level models.RiskLevel, breachCount, exposureCount int) string {
	switch level {
	case models.RiskCritical:
		return fmt.Sprintf("Critical exposure: %d breach(es) and %d social exposure(s) require immediate action", breachCount, exposureCount)
	case models.RiskHigh:
		return fmt.Sprintf("High exposure: %d breach(es) and %d social exposure(s) found; act soon", breachCount, exposureCount)
	case models.RiskMedium:
		return fmt.Sprintf("Moderate exposure: %d breach(es) and %d social exposure(s) found", breachCount, exposureCount)
	default:
		return fmt.Sprintf("Low exposure: %d breach(es) and %d social exposure(s) found", breachCount, exposureCount)
	}
}
