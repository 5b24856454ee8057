// Package risk implements the scoring and recommendation engine. Every
// function here is pure: no I/O, no randomness, no returned errors.
// Malformed records contribute zero and are skipped.
package risk

import (
	"strings"

	"github.com/privasee/footprint/internal/models"
)

// Ordered severity sets for breach data classes. Membership is checked
// critical first, then high, then medium; first match wins, so ordering
// inside each set does not matter and neither does the order of the
// input list.
var (
	criticalDataClasses = map[string]bool{
		"Passwords":               true,
		"Credit cards":            true,
		"Social security numbers": true,
		"Bank account numbers":    true,
	}
	highDataClasses = map[string]bool{
		"Security questions and answers": true,
		"Partial credit card data":       true,
		"Phone numbers":                  true,
	}
	mediumDataClasses = map[string]bool{
		"Email addresses": true,
		"Names":           true,
		"Usernames":       true,
		"Dates of birth":  true,
	}
)

// BreachSeverity classifies a breach by its disclosed data classes.
func BreachSeverity(dataClasses []string) models.RiskLevel {
	for _, dc := range dataClasses {
		if criticalDataClasses[dc] {
			return models.RiskCritical
		}
	}
	for _, dc := range dataClasses {
		if highDataClasses[dc] {
			return models.RiskHigh
		}
	}
	for _, dc := range dataClasses {
		if mediumDataClasses[dc] {
			return models.RiskMedium
		}
	}
	return models.RiskLow
}

// severityWeights is the canonical per-breach weight table used by the
// aggregator.
var severityWeights = map[models.RiskLevel]int{
	models.RiskLow:      5,
	models.RiskMedium:   15,
	models.RiskHigh:     25,
	models.RiskCritical: 40,
}

// SeverityWeight returns the aggregation weight for a breach severity.
// Unknown severities count as low.
func SeverityWeight(severity models.RiskLevel) int {
	if w, ok := severityWeights[severity]; ok {
		return w
	}
	return severityWeights[models.RiskLow]
}

// dataTypePoints are added per disclosed data type on top of the
// severity weight. Types not listed contribute 2.
var dataTypePoints = map[string]int{
	"password":    20,
	"ssn":         25,
	"credit_card": 30,
	"address":     15,
	"phone":       10,
	"email":       5,
	"name":        3,
}

// DataTypePoints returns the point contribution of one normalized data
// type token.
func DataTypePoints(dataType string) int {
	if p, ok := dataTypePoints[dataType]; ok {
		return p
	}
	return 2
}

// dataClassTokens maps the upstream breach catalog's human-readable data
// class names to the normalized tokens the scoring and sensitivity
// checks operate on.
var dataClassTokens = map[string]string{
	"Passwords":                      "password",
	"Credit cards":                   "credit_card",
	"Partial credit card data":       "credit_card",
	"Social security numbers":        "ssn",
	"Bank account numbers":           "bank_account",
	"Email addresses":                "email",
	"Phone numbers":                  "phone",
	"Physical addresses":             "address",
	"Names":                          "name",
	"Usernames":                      "username",
	"Security questions and answers": "security_question",
	"Dates of birth":                 "date_of_birth",
	"Passport numbers":               "passport",
	"Drivers licenses":               "drivers_license",
}

// NormalizeDataClass converts a data class label to its scoring token.
// Labels already in token form pass through; anything else is
// lowercased with spaces collapsed to underscores.
func NormalizeDataClass(dataClass string) string {
	if tok, ok := dataClassTokens[dataClass]; ok {
		return tok
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(dataClass)), " ", "_")
}

// NormalizeDataClasses maps a whole data class list to tokens,
// preserving order and duplicates.
func NormalizeDataClasses(dataClasses []string) []string {
	tokens := make([]string, 0, len(dataClasses))
	for _, dc := range dataClasses {
		tokens = append(tokens, NormalizeDataClass(dc))
	}
	return tokens
}
