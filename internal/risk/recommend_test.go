package risk

import (
	"reflect"
	"strings"
	"testing"

	"github.com/privasee/footprint/internal/models"
)

func TestRecommendCriticalBreach(t *testing.T) {
	breaches := []models.BreachRecord{
		breach(models.RiskCritical, "Social security numbers", "Passwords"),
	}

	plan := Recommend(0, breaches, nil)

	if plan.UrgencyLevel != models.RiskCritical {
		t.Errorf("UrgencyLevel = %s, want critical (critical breach overrides score)", plan.UrgencyLevel)
	}
	if !plan.DataSensitivity.FinancialData {
		t.Error("FinancialData = false, want true (ssn present)")
	}
	if !plan.DataSensitivity.AuthenticationData {
		t.Error("AuthenticationData = false, want true (password present)")
	}
	if !plan.DataSensitivity.PersonalIdentifiers {
		t.Error("PersonalIdentifiers = false, want true (ssn present)")
	}

	var hasFinancial, hasPassword bool
	financialIdx, passwordIdx := -1, -1
	for i, a := range plan.ImmediateActions {
		if strings.Contains(a, "bank and credit card accounts") {
			hasFinancial = true
			financialIdx = i
		}
		if strings.Contains(a, "Change passwords") {
			hasPassword = true
			passwordIdx = i
		}
	}
	if !hasFinancial || !hasPassword {
		t.Errorf("immediate actions missing financial or password line: %v", plan.ImmediateActions)
	}
	if financialIdx > passwordIdx {
		t.Error("financial actions must precede authentication actions")
	}

	// 95 + 20 (financial) + 15 (identifiers) caps at 100.
	if plan.PriorityScore != 100 {
		t.Errorf("PriorityScore = %d, want 100", plan.PriorityScore)
	}
}

func TestRecommendSingleLowExposure(t *testing.T) {
	exposures := []models.SocialExposure{
		{Platform: "facebook", ExposureType: models.ExposurePublicProfile, RiskLevel: models.RiskLow},
	}

	plan := Recommend(4, nil, exposures)

	if plan.UrgencyLevel != models.RiskLow {
		t.Errorf("UrgencyLevel = %s, want low", plan.UrgencyLevel)
	}
	if len(plan.ImmediateActions) != 0 {
		t.Errorf("ImmediateActions = %v, want empty", plan.ImmediateActions)
	}

	want := []string{
		"Review facebook privacy settings and limit public information visibility",
		"Audit and remove third-party apps connected to your social accounts",
		"Turn off location sharing across all social media platforms",
	}
	if !reflect.DeepEqual(plan.ShortTermGoals, want) {
		t.Errorf("ShortTermGoals = %v, want %v", plan.ShortTermGoals, want)
	}

	if plan.PriorityScore != 20 {
		t.Errorf("PriorityScore = %d, want 20", plan.PriorityScore)
	}
}

func TestRecommendPlatformDedup(t *testing.T) {
	exposures := []models.SocialExposure{
		{Platform: "twitter", ExposureType: models.ExposurePublicProfile, RiskLevel: models.RiskLow},
		{Platform: "facebook", ExposureType: models.ExposurePersonalInfo, RiskLevel: models.RiskMedium},
		{Platform: "twitter", ExposureType: models.ExposureLocationData, RiskLevel: models.RiskHigh},
	}

	plan := Recommend(10, nil, exposures)

	var reviews []string
	for _, g := range plan.ShortTermGoals {
		if strings.HasPrefix(g, "Review ") {
			reviews = append(reviews, g)
		}
	}
	want := []string{
		"Review twitter privacy settings and limit public information visibility",
		"Review facebook privacy settings and limit public information visibility",
	}
	if !reflect.DeepEqual(reviews, want) {
		t.Errorf("platform review lines = %v, want first-seen deduplicated %v", reviews, want)
	}
}

func TestRecommendPasswordManagerOnAnyBreach(t *testing.T) {
	plan := Recommend(10, []models.BreachRecord{breach(models.RiskLow, "Avatars")}, nil)

	found := false
	for _, g := range plan.ShortTermGoals {
		if strings.Contains(g, "password manager") {
			found = true
		}
	}
	if !found {
		t.Errorf("ShortTermGoals = %v, want password manager guidance", plan.ShortTermGoals)
	}
}

func TestRecommendEmptyInputs(t *testing.T) {
	plan := Recommend(0, nil, nil)

	if len(plan.ImmediateActions) != 0 || len(plan.ShortTermGoals) != 0 {
		t.Error("empty findings must yield empty immediate and short-term tiers")
	}
	if len(plan.LongTermImprovements) != 4 || len(plan.EducationalResources) != 3 {
		t.Errorf("static tiers = %d/%d, want 4/3",
			len(plan.LongTermImprovements), len(plan.EducationalResources))
	}
	if len(plan.All) != len(plan.LongTermImprovements) {
		t.Errorf("All = %d entries, want only the long-term block", len(plan.All))
	}
}

func TestRecommendAllExcludesEducational(t *testing.T) {
	plan := Recommend(85, []models.BreachRecord{
		breach(models.RiskCritical, "Passwords"),
	}, []models.SocialExposure{
		{Platform: "linkedin", ExposureType: models.ExposureEmploymentInfo, RiskLevel: models.RiskMedium},
	})

	wantLen := len(plan.ImmediateActions) + len(plan.ShortTermGoals) + len(plan.LongTermImprovements)
	if len(plan.All) != wantLen {
		t.Errorf("All = %d entries, want %d", len(plan.All), wantLen)
	}
	for _, r := range plan.All {
		for _, e := range plan.EducationalResources {
			if r == e {
				t.Errorf("educational resource %q leaked into All", e)
			}
		}
	}
}

func TestRecommendDeterministic(t *testing.T) {
	breaches := []models.BreachRecord{breach(models.RiskHigh, "Phone numbers", "Names")}
	exposures := []models.SocialExposure{
		{Platform: "instagram", ExposureType: models.ExposureLocationData, RiskLevel: models.RiskHigh},
	}

	a := Recommend(65, breaches, exposures)
	b := Recommend(65, breaches, exposures)

	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different plans")
	}
}

func TestUrgencyLevelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{85, models.RiskCritical},
		{65, models.RiskHigh},
		{45, models.RiskMedium},
		{10, models.RiskLow},
	}

	for _, tt := range tests {
		if got := UrgencyLevel(tt.score, nil); got != tt.want {
			t.Errorf("UrgencyLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
