package risk

import (
	"fmt"
	"strings"

	"github.com/privasee/footprint/internal/models"
)

type entityClass struct {
	Category string
	Tier     models.RiskLevel
}

// entityClasses maps raw detector labels to a display category and an
// intrinsic risk tier. Lookup is case-sensitive on the raw tag.
var entityClasses = map[string]entityClass{
	"person":        {"Person Name", models.RiskLow},
	"organization":  {"Organization", models.RiskLow},
	"location":      {"Location", models.RiskLow},
	"misc":          {"Miscellaneous", models.RiskLow},
	"email":         {"Email Address", models.RiskMedium},
	"phone":         {"Phone Number", models.RiskMedium},
	"ssn":           {"Social Security Number", models.RiskHigh},
	"credit-card":   {"Credit Card Number", models.RiskCritical},
	"date-of-birth": {"Date of Birth", models.RiskHigh},
	"address":       {"Physical Address", models.RiskHigh},
}

// ClassifyEntity maps a raw label to (category, tier). Unknown labels
// keep the raw label as the category and default to low.
func ClassifyEntity(label string) (string, models.RiskLevel) {
	if c, ok := entityClasses[label]; ok {
		return c.Category, c.Tier
	}
	return label, models.RiskLow
}

// NormalizeNERTag folds model-specific BIO tags down to the detector
// labels the classifier understands. Unrecognized tags are lowercased
// and passed through.
func NormalizeNERTag(tag string) string {
	t := strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(tag, "B-"), "I-"))
	switch t {
	case "PER", "PERSON":
		return "person"
	case "ORG", "ORGANIZATION":
		return "organization"
	case "LOC", "LOCATION":
		return "location"
	case "MISC":
		return "misc"
	default:
		return strings.ToLower(tag)
	}
}

// legacyCategoryWeights drive the display-only text risk score. They do
// not influence the overall risk level, which comes from the tier
// breakdown.
var legacyCategoryWeights = map[string]int{
	"Person Name":   25,
	"Organization":  15,
	"Location":      20,
	"Miscellaneous": 10,
}

// EntityAssessment is the aggregate result of scoring one text sample's
// detected entities.
type EntityAssessment struct {
	OverallRisk   models.RiskLevel         `json:"overall_risk"`
	RiskBreakdown map[models.RiskLevel]int `json:"risk_breakdown"`
	TotalEntities int                      `json:"total_entities"`
	PrivacyScore  int                      `json:"privacy_score"`
	RiskScore     int                      `json:"risk_score"`
	Categories    []string                 `json:"categories"`
}

// AssessEntities aggregates already-filtered entities into an overall
// risk level, a privacy score, and the legacy category-weighted risk
// score kept for display. Callers drop low-confidence entities before
// calling.
func AssessEntities(entities []models.DetectedEntity) EntityAssessment {
	breakdown := map[models.RiskLevel]int{
		models.RiskLow:      0,
		models.RiskMedium:   0,
		models.RiskHigh:     0,
		models.RiskCritical: 0,
	}
	categoryCounts := map[string]int{}
	var categories []string

	for _, e := range entities {
		tier := e.RiskTier
		if tier == "" {
			_, tier = ClassifyEntity(e.Label)
		}
		category := e.Category
		if category == "" {
			category, _ = ClassifyEntity(e.Label)
		}
		breakdown[tier]++
		if categoryCounts[category] == 0 {
			categories = append(categories, category)
		}
		categoryCounts[category]++
	}

	overall := models.RiskLow
	switch {
	case breakdown[models.RiskCritical] > 0:
		overall = models.RiskCritical
	case breakdown[models.RiskHigh] > 0:
		overall = models.RiskHigh
	case breakdown[models.RiskMedium] > 0:
		overall = models.RiskMedium
	}

	privacy := 100 -
		40*breakdown[models.RiskCritical] -
		20*breakdown[models.RiskHigh] -
		10*breakdown[models.RiskMedium] -
		2*breakdown[models.RiskLow]
	if privacy < 0 {
		privacy = 0
	}

	score := 0
	for category, count := range categoryCounts {
		weight, ok := legacyCategoryWeights[category]
		if !ok {
			weight = 5
		}
		score += weight * count
	}
	if score > 100 {
		score = 100
	}

	return EntityAssessment{
		OverallRisk:   overall,
		RiskBreakdown: breakdown,
		TotalEntities: len(entities),
		PrivacyScore:  privacy,
		RiskScore:     score,
		Categories:    categories,
	}
}

// EntityRecommendation is one structured advisory produced from an
// entity assessment.
type EntityRecommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// EntityRecommendations produces per-tier advisories for an entity
// assessment. Empty input yields an empty list.
func EntityRecommendations(a EntityAssessment) []EntityRecommendation {
	var recs []EntityRecommendation
	if n := a.RiskBreakdown[models.RiskCritical]; n > 0 {
		recs = append(recs, EntityRecommendation{
			Type:    "critical",
			Message: fmt.Sprintf("Found %d critical-risk item(s) such as credit card numbers in this text", n),
			Action:  "Remove this information immediately and check whether it was shared elsewhere",
		})
	}
	if n := a.RiskBreakdown[models.RiskHigh]; n > 0 {
		recs = append(recs, EntityRecommendation{
			Type:    "high",
			Message: fmt.Sprintf("Found %d high-risk identifier(s) such as SSNs, addresses, or birth dates", n),
			Action:  "Avoid sharing government identifiers and home addresses in plain text",
		})
	}
	if n := a.RiskBreakdown[models.RiskMedium]; n > 0 {
		recs = append(recs, EntityRecommendation{
			Type:    "medium",
			Message: fmt.Sprintf("Found %d contact detail(s) such as email addresses or phone numbers", n),
			Action:  "Limit where contact details appear publicly to reduce spam and phishing exposure",
		})
	}
	if a.TotalEntities > 0 && len(recs) == 0 {
		recs = append(recs, EntityRecommendation{
			Type:    "low",
			Message: fmt.Sprintf("Found %d low-risk item(s) such as names or locations", a.TotalEntities),
			Action:  "No urgent action needed; review how much context these reveal together",
		})
	}
	return recs
}
