package risk

import (
	"testing"

	"github.com/privasee/footprint/internal/models"
)

func TestClassifyEntity(t *testing.T) {
	tests := []struct {
		label        string
		wantCategory string
		wantTier     models.RiskLevel
	}{
		{"person", "Person Name", models.RiskLow},
		{"organization", "Organization", models.RiskLow},
		{"location", "Location", models.RiskLow},
		{"email", "Email Address", models.RiskMedium},
		{"phone", "Phone Number", models.RiskMedium},
		{"ssn", "Social Security Number", models.RiskHigh},
		{"credit-card", "Credit Card Number", models.RiskCritical},
		{"date-of-birth", "Date of Birth", models.RiskHigh},
		{"address", "Physical Address", models.RiskHigh},
		{"iban", "iban", models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			category, tier := ClassifyEntity(tt.label)
			if category != tt.wantCategory || tier != tt.wantTier {
				t.Errorf("ClassifyEntity(%q) = (%q, %s), want (%q, %s)",
					tt.label, category, tier, tt.wantCategory, tt.wantTier)
			}
		})
	}
}

func TestNormalizeNERTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"B-PER", "person"},
		{"I-PER", "person"},
		{"PER", "person"},
		{"B-ORG", "organization"},
		{"LOC", "location"},
		{"I-MISC", "misc"},
		{"EMAIL", "email"},
	}

	for _, tt := range tests {
		if got := NormalizeNERTag(tt.in); got != tt.want {
			t.Errorf("NormalizeNERTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssessEntitiesCriticalDrivesOverall(t *testing.T) {
	entities := []models.DetectedEntity{
		{Text: "4111111111111111", Label: "credit-card", Confidence: 0.92},
	}

	got := AssessEntities(entities)

	if got.OverallRisk != models.RiskCritical {
		t.Errorf("OverallRisk = %s, want critical", got.OverallRisk)
	}
	if got.TotalEntities != 1 {
		t.Errorf("TotalEntities = %d, want 1", got.TotalEntities)
	}
	if got.RiskBreakdown[models.RiskCritical] != 1 {
		t.Errorf("critical count = %d, want 1", got.RiskBreakdown[models.RiskCritical])
	}
	if got.PrivacyScore != 60 {
		t.Errorf("PrivacyScore = %d, want 60", got.PrivacyScore)
	}
}

func TestAssessEntitiesTierPresence(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		want     models.RiskLevel
		privacy  int
	}{
		{"empty input is low", nil, models.RiskLow, 100},
		{"only low entities", []string{"person", "location"}, models.RiskLow, 96},
		{"medium present", []string{"person", "email"}, models.RiskMedium, 88},
		{"high beats medium", []string{"email", "ssn"}, models.RiskHigh, 70},
		{"critical beats all", []string{"person", "ssn", "credit-card"}, models.RiskCritical, 38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entities []models.DetectedEntity
			for _, label := range tt.labels {
				entities = append(entities, models.DetectedEntity{Label: label, Confidence: 0.9})
			}
			got := AssessEntities(entities)
			if got.OverallRisk != tt.want {
				t.Errorf("OverallRisk = %s, want %s", got.OverallRisk, tt.want)
			}
			if got.PrivacyScore != tt.privacy {
				t.Errorf("PrivacyScore = %d, want %d", got.PrivacyScore, tt.privacy)
			}
		})
	}
}

func TestAssessEntitiesPrivacyFloor(t *testing.T) {
	var entities []models.DetectedEntity
	for i := 0; i < 5; i++ {
		entities = append(entities, models.DetectedEntity{Label: "credit-card", Confidence: 0.9})
	}

	got := AssessEntities(entities)
	if got.PrivacyScore != 0 {
		t.Errorf("PrivacyScore = %d, want 0", got.PrivacyScore)
	}
}

func TestAssessEntitiesLegacyScoreCap(t *testing.T) {
	var entities []models.DetectedEntity
	for i := 0; i < 10; i++ {
		entities = append(entities, models.DetectedEntity{Label: "person", Confidence: 0.9})
	}

	got := AssessEntities(entities)
	if got.RiskScore != 100 {
		t.Errorf("RiskScore = %d, want 100 (capped)", got.RiskScore)
	}
}

func TestAssessEntitiesPrecomputedFields(t *testing.T) {
	// Entities arriving with category/tier already set keep them.
	entities := []models.DetectedEntity{
		{Label: "weird", Category: "Email Address", RiskTier: models.RiskMedium, Confidence: 0.9},
	}

	got := AssessEntities(entities)
	if got.OverallRisk != models.RiskMedium {
		t.Errorf("OverallRisk = %s, want medium", got.OverallRisk)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Email Address" {
		t.Errorf("Categories = %v, want [Email Address]", got.Categories)
	}
}

func TestEntityRecommendations(t *testing.T) {
	a := AssessEntities([]models.DetectedEntity{
		{Label: "credit-card", Confidence: 0.9},
		{Label: "ssn", Confidence: 0.9},
		{Label: "email", Confidence: 0.9},
	})

	recs := EntityRecommendations(a)
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	if recs[0].Type != "critical" || recs[1].Type != "high" || recs[2].Type != "medium" {
		t.Errorf("recommendation order = %s/%s/%s, want critical/high/medium",
			recs[0].Type, recs[1].Type, recs[2].Type)
	}

	if got := EntityRecommendations(AssessEntities(nil)); len(got) != 0 {
		t.Errorf("empty assessment produced %d recommendations, want 0", len(got))
	}
}
