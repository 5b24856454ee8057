package pii

import (
	"regexp"
	"testing"

	"github.com/privasee/footprint/internal/models"
)

func TestDetectEmail(t *testing.T) {
	d := New()

	entities := d.Detect("Reach me at jane.doe@example.com for details")

	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	e := entities[0]
	if e.Label != "email" {
		t.Errorf("Label = %q, want email", e.Label)
	}
	if e.Category != "Email Address" || e.RiskTier != models.RiskMedium {
		t.Errorf("classification = (%q, %s), want (Email Address, medium)", e.Category, e.RiskTier)
	}
	if e.Text != "jane.doe@example.com" {
		t.Errorf("Text = %q, want the raw address (medium tier is not redacted)", e.Text)
	}
	if e.Start != 12 || e.End != 32 {
		t.Errorf("span = [%d,%d), want [12,32)", e.Start, e.End)
	}
}

func TestDetectSSNRedacted(t *testing.T) {
	d := New()

	entities := d.Detect("SSN: 123-45-6789")

	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	if entities[0].Label != "ssn" {
		t.Errorf("Label = %q, want ssn", entities[0].Label)
	}
	if entities[0].Text != "12*******89" {
		t.Errorf("Text = %q, want redacted value", entities[0].Text)
	}
	if entities[0].RiskTier != models.RiskHigh {
		t.Errorf("RiskTier = %s, want high", entities[0].RiskTier)
	}
}

func TestDetectInvalidSSNSkipped(t *testing.T) {
	d := New()

	// Area 666 is never issued.
	if entities := d.Detect("SSN: 666-45-6789"); len(entities) != 0 {
		t.Errorf("got %d entities for invalid SSN, want 0", len(entities))
	}
}

func TestDetectCreditCard(t *testing.T) {
	d := New()

	entities := d.Detect("card 4111-1111-1111-1111 on file")

	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	if entities[0].Label != "credit-card" || entities[0].RiskTier != models.RiskCritical {
		t.Errorf("got (%q, %s), want (credit-card, critical)", entities[0].Label, entities[0].RiskTier)
	}
}

func TestDetectLuhnRejectsInvalid(t *testing.T) {
	d := New()

	if entities := d.Detect("card 4111-1111-1111-1112 on file"); len(entities) != 0 {
		t.Errorf("got %d entities for Luhn-invalid number, want 0", len(entities))
	}
}

func TestDetectDOBRequiresContext(t *testing.T) {
	d := New()

	if entities := d.Detect("version 01/02/1999 of the doc"); len(entities) != 0 {
		t.Errorf("date without birth context matched: %v", entities)
	}

	entities := d.Detect("DOB: 01/02/1999")
	if len(entities) != 1 || entities[0].Label != "date-of-birth" {
		t.Fatalf("got %v, want one date-of-birth entity", entities)
	}
}

func TestDetectPersonRequiresContext(t *testing.T) {
	d := New()

	if entities := d.Detect("The Quick Brown fox"); len(entities) != 0 {
		t.Errorf("capitalized words without name context matched: %v", entities)
	}

	entities := d.Detect("Contact name: John Smith")
	found := false
	for _, e := range entities {
		if e.Label == "person" && e.Text == "John Smith" {
			found = true
		}
	}
	if !found {
		t.Errorf("got %v, want a person entity for John Smith", entities)
	}
}

func TestDetectOrderedByOffset(t *testing.T) {
	d := New()

	entities := d.Detect("mail a@b.com then call 555-867-5309")

	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}
	if entities[0].Label != "email" || entities[1].Label != "phone" {
		t.Errorf("order = %s, %s; want email then phone", entities[0].Label, entities[1].Label)
	}
	if entities[0].Start > entities[1].Start {
		t.Error("entities not sorted by start offset")
	}
}

func TestValidateSSN(t *testing.T) {
	tests := []struct {
		ssn  string
		want bool
	}{
		{"123-45-6789", true},
		{"123 45 6789", true},
		{"000-45-6789", false},
		{"666-45-6789", false},
		{"900-45-6789", false},
		{"123-00-6789", false},
		{"123-45-0000", false},
		{"123-45-678", false},
	}

	for _, tt := range tests {
		if got := ValidateSSN(tt.ssn); got != tt.want {
			t.Errorf("ValidateSSN(%q) = %v, want %v", tt.ssn, got, tt.want)
		}
	}
}

func TestValidateLuhn(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"4111-1111-1111-1111", true},
		{"5500005555555559", true},
		{"4111111111111112", false},
		{"1234", false},
	}

	for _, tt := range tests {
		if got := ValidateLuhn(tt.number); got != tt.want {
			t.Errorf("ValidateLuhn(%q) = %v, want %v", tt.number, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("123-45-6789"); got != "12*******89" {
		t.Errorf("Redact = %q", got)
	}
	if got := Redact("abc"); got != "****" {
		t.Errorf("Redact short = %q, want ****", got)
	}
}

func TestDetectorCustomRules(t *testing.T) {
	d := NewWithRules([]*Rule{
		{
			Label:      "employee-id",
			Confidence: 0.8,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\bEMP-\d{6}\b`),
			},
		},
	})

	entities := d.Detect("Badge EMP-204317 was reported lost, call 555-123-4567")

	// Only the custom rule set is active, so the phone number is ignored.
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	if entities[0].Label != "employee-id" {
		t.Errorf("label = %q, want employee-id", entities[0].Label)
	}
	if entities[0].Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", entities[0].Confidence)
	}
}

func TestDetectorAddRule(t *testing.T) {
	d := New()
	d.AddRule(&Rule{
		Label:      "employee-id",
		Confidence: 0.8,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bEMP-\d{6}\b`),
		},
	})

	entities := d.Detect("Badge EMP-204317 belongs to j.smith@example.com")

	var labels []string
	for _, e := range entities {
		labels = append(labels, e.Label)
	}

	if len(entities) != 2 {
		t.Fatalf("got entities %v, want email and employee-id", labels)
	}

	var gotCustom, gotEmail bool
	for _, l := range labels {
		switch l {
		case "employee-id":
			gotCustom = true
		case "email":
			gotEmail = true
		}
	}
	if !gotCustom || !gotEmail {
		t.Errorf("labels = %v, want both email and employee-id", labels)
	}
}
