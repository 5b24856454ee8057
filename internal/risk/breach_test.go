package risk

import (
	"testing"

	"github.com/privasee/footprint/internal/models"
)

func TestBreachSeverity(t *testing.T) {
	tests := []struct {
		name        string
		dataClasses []string
		want        models.RiskLevel
	}{
		{"passwords are critical", []string{"Passwords"}, models.RiskCritical},
		{"critical wins over medium", []string{"Email addresses", "Passwords"}, models.RiskCritical},
		{"order independent", []string{"Passwords", "Email addresses"}, models.RiskCritical},
		{"phone numbers are high", []string{"Phone numbers"}, models.RiskHigh},
		{"names and usernames are medium", []string{"Names", "Usernames"}, models.RiskMedium},
		{"unknown classes are low", []string{"Avatars", "Bios"}, models.RiskLow},
		{"empty list is low", nil, models.RiskLow},
		{"bank accounts are critical", []string{"Bank account numbers"}, models.RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreachSeverity(tt.dataClasses); got != tt.want {
				t.Errorf("BreachSeverity(%v) = %s, want %s", tt.dataClasses, got, tt.want)
			}
		})
	}
}

func TestSeverityWeight(t *testing.T) {
	tests := []struct {
		severity models.RiskLevel
		want     int
	}{
		{models.RiskLow, 5},
		{models.RiskMedium, 15},
		{models.RiskHigh, 25},
		{models.RiskCritical, 40},
		{models.RiskLevel("bogus"), 5},
	}

	for _, tt := range tests {
		if got := SeverityWeight(tt.severity); got != tt.want {
			t.Errorf("SeverityWeight(%s) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestNormalizeDataClass(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Passwords", "password"},
		{"Credit cards", "credit_card"},
		{"Social security numbers", "ssn"},
		{"Bank account numbers", "bank_account"},
		{"Email addresses", "email"},
		{"Phone numbers", "phone"},
		{"Physical addresses", "address"},
		{"Security questions and answers", "security_question"},
		{"password", "password"},
		{"Employer names", "employer_names"},
	}

	for _, tt := range tests {
		if got := NormalizeDataClass(tt.in); got != tt.want {
			t.Errorf("NormalizeDataClass(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDataTypePoints(t *testing.T) {
	if got := DataTypePoints("credit_card"); got != 30 {
		t.Errorf("credit_card = %d, want 30", got)
	}
	if got := DataTypePoints("ssn"); got != 25 {
		t.Errorf("ssn = %d, want 25", got)
	}
	if got := DataTypePoints("something_else"); got != 2 {
		t.Errorf("unlisted type = %d, want 2", got)
	}
}
