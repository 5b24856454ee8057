package risk

import (
	"fmt"

	"github.com/privasee/footprint/internal/models"
)

// DataSensitivity flags which classes of compromised data appear across
// a scan's breaches.
type DataSensitivity struct {
	FinancialData       bool `json:"financial_data"`
	AuthenticationData  bool `json:"authentication_data"`
	PersonalIdentifiers bool `json:"personal_identifiers"`
	ContactInformation  bool `json:"contact_information"`
}

var (
	financialTypes  = map[string]bool{"credit_card": true, "bank_account": true, "ssn": true}
	authTypes       = map[string]bool{"password": true, "security_question": true}
	identifierTypes = map[string]bool{"ssn": true, "passport": true, "drivers_license": true}
	contactTypes    = map[string]bool{"email": true, "phone": true, "address": true}
)

// AssessDataSensitivity computes sensitivity flags over the union of
// all normalized data types disclosed by the given breaches.
func AssessDataSensitivity(breaches []models.BreachRecord) DataSensitivity {
	var s DataSensitivity
	for _, b := range breaches {
		for _, tok := range NormalizeDataClasses(b.DataClasses) {
			s.FinancialData = s.FinancialData || financialTypes[tok]
			s.AuthenticationData = s.AuthenticationData || authTypes[tok]
			s.PersonalIdentifiers = s.PersonalIdentifiers || identifierTypes[tok]
			s.ContactInformation = s.ContactInformation || contactTypes[tok]
		}
	}
	return s
}

// UrgencyLevel buckets a risk score for recommendation gating. A single
// critical breach forces critical urgency regardless of score.
func UrgencyLevel(riskScore int, breaches []models.BreachRecord) models.RiskLevel {
	for _, b := range breaches {
		if b.Severity == models.RiskCritical {
			return models.RiskCritical
		}
	}
	switch {
	case riskScore >= 80:
		return models.RiskCritical
	case riskScore >= 60:
		return models.RiskHigh
	case riskScore >= 40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Plan is a tiered recommendation set. All holds immediate, short-term,
// and long-term entries in that order; educational resources are kept
// out of the flat list.
type Plan struct {
	UrgencyLevel         models.RiskLevel `json:"urgency_level"`
	DataSensitivity      DataSensitivity  `json:"data_sensitivity"`
	ImmediateActions     []string         `json:"immediate_actions"`
	ShortTermGoals       []string         `json:"short_term_goals"`
	LongTermImprovements []string         `json:"long_term_improvements"`
	EducationalResources []string         `json:"educational_resources"`
	PriorityScore        int              `json:"priority_score"`
	All                  []string         `json:"all_recommendations"`
}

var urgencyBasePriority = map[models.RiskLevel]int{
	models.RiskLow:      20,
	models.RiskMedium:   50,
	models.RiskHigh:     75,
	models.RiskCritical: 95,
}

var longTermImprovements = []string{
	"Set up regular security audits (quarterly review of accounts and passwords)",
	"Enable security notifications on all important accounts",
	"Consider using a VPN for enhanced privacy protection",
	"Regularly monitor your credit reports and identity theft protection services",
}

var educationalResources = []string{
	"Learn about phishing attacks and how to identify them",
	"Understand the basics of two-factor authentication",
	"Read about safe browsing practices and public Wi-Fi risks",
}

// Recommend builds the full tiered plan for a scan. It is deterministic
// in its inputs; identical findings always yield an identical plan.
func Recommend(riskScore int, breaches []models.BreachRecord, exposures []models.SocialExposure) Plan {
	urgency := UrgencyLevel(riskScore, breaches)
	sensitivity := AssessDataSensitivity(breaches)

	plan := Plan{
		UrgencyLevel:         urgency,
		DataSensitivity:      sensitivity,
		LongTermImprovements: longTermImprovements,
		EducationalResources: educationalResources,
	}

	if urgency == models.RiskCritical || urgency == models.RiskHigh {
		if sensitivity.FinancialData {
			plan.ImmediateActions = append(plan.ImmediateActions,
				"URGENT: Monitor all bank and credit card accounts for unauthorized transactions",
				"Contact your bank immediately to report potential compromise",
				"Place fraud alerts on your credit reports with all three bureaus",
			)
		}
		if sensitivity.AuthenticationData {
			plan.ImmediateActions = append(plan.ImmediateActions,
				"Change passwords on all accounts immediately, starting with financial and email",
				"Enable two-factor authentication on every account that supports it",
			)
		}
	}

	if len(breaches) > 0 {
		plan.ShortTermGoals = append(plan.ShortTermGoals,
			"Install and set up a password manager (recommended: Bitwarden, 1Password)",
			"Generate unique passwords for each of your accounts",
			"Update your most important accounts first: email, banking, work",
		)
	}

	if len(exposures) > 0 {
		seen := map[string]bool{}
		for _, e := range exposures {
			if seen[e.Platform] {
				continue
			}
			seen[e.Platform] = true
			plan.ShortTermGoals = append(plan.ShortTermGoals,
				fmt.Sprintf("Review %s privacy settings and limit public information visibility", e.Platform))
		}
		plan.ShortTermGoals = append(plan.ShortTermGoals,
			"Audit and remove third-party apps connected to your social accounts",
			"Turn off location sharing across all social media platforms",
		)
	}

	priority := urgencyBasePriority[urgency]
	if sensitivity.FinancialData {
		priority += 20
	}
	if sensitivity.PersonalIdentifiers {
		priority += 15
	}
	if priority > 100 {
		priority = 100
	}
	plan.PriorityScore = priority

	plan.All = make([]string, 0, len(plan.ImmediateActions)+len(plan.ShortTermGoals)+len(plan.LongTermImprovements))
	plan.All = append(plan.All, plan.ImmediateActions...)
	plan.All = append(plan.All, plan.ShortTermGoals...)
	plan.All = append(plan.All, plan.LongTermImprovements...)

	return plan
}
