// Package pii detects personal information in free text with regex
// rules and checksum validators. It backs the local analysis path and
// serves as the fallback when the remote NER service is unavailable.
package pii

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/risk"
)

type Rule struct {
	Label           string
	Confidence      float64
	Patterns        []*regexp.Regexp
	ContextPatterns []*regexp.Regexp // Patterns that must appear nearby
	ContextRequired bool             // If true, requires context pattern match
	Validators      []Validator      // Additional validation functions
}

type Validator func(match string) bool

type Detector struct {
	rules []*Rule
}

func New() *Detector {
	return &Detector{
		rules: DefaultRules(),
	}
}

func NewWithRules(rules []*Rule) *Detector {
	return &Detector{
		rules: rules,
	}
}

func (d *Detector) AddRule(rule *Rule) {
	d.rules = append(d.rules, rule)
}

// Detect scans text against every rule and returns classified entities
// ordered by start offset. Spans already claimed by an earlier rule are
// skipped, so rule order doubles as precedence.
func (d *Detector) Detect(text string) []models.DetectedEntity {
	var entities []models.DetectedEntity
	claimed := make([]span, 0)

	for _, rule := range d.rules {
		if rule.ContextRequired && !d.contextPresent(text, rule) {
			continue
		}

		for _, pattern := range rule.Patterns {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				match := text[loc[0]:loc[1]]

				valid := true
				for _, validator := range rule.Validators {
					if !validator(match) {
						valid = false
						break
					}
				}
				if !valid {
					continue
				}

				s := span{loc[0], loc[1]}
				if overlaps(claimed, s) {
					continue
				}
				claimed = append(claimed, s)

				category, tier := risk.ClassifyEntity(rule.Label)
				value := match
				if tier == models.RiskHigh || tier == models.RiskCritical {
					value = Redact(match)
				}

				entities = append(entities, models.DetectedEntity{
					Text:       value,
					Label:      rule.Label,
					Confidence: rule.Confidence,
					Start:      loc[0],
					End:        loc[1],
					Category:   category,
					RiskTier:   tier,
				})
			}
		}
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	return entities
}

func (d *Detector) contextPresent(text string, rule *Rule) bool {
	lower := strings.ToLower(text)
	for _, cp := range rule.ContextPatterns {
		if cp.MatchString(lower) {
			return true
		}
	}
	return false
}

type span struct {
	start, end int
}

func overlaps(claimed []span, s span) bool {
	for _, c := range claimed {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}

func DefaultRules() []*Rule {
	return []*Rule{
		{
			Label:      "ssn",
			Confidence: 0.9,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
				regexp.MustCompile(`\b\d{3}\s\d{2}\s\d{4}\b`),
			},
			Validators: []Validator{ValidateSSN},
		},
		{
			Label:      "credit-card",
			Confidence: 0.95,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
				regexp.MustCompile(`\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
				regexp.MustCompile(`\b2[2-7]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
				regexp.MustCompile(`\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`),
				regexp.MustCompile(`\b6(?:011|5\d{2})[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
			},
			Validators: []Validator{ValidateLuhn},
		},
		{
			Label:      "email",
			Confidence: 0.95,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
			},
		},
		{
			Label:      "phone",
			Confidence: 0.85,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
				regexp.MustCompile(`\b\(\d{3}\)\s?\d{3}[-.\s]?\d{4}\b`),
			},
		},
		{
			Label:      "date-of-birth",
			Confidence: 0.75,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(0?[1-9]|1[0-2])[-/](0?[1-9]|[12]\d|3[01])[-/](19|20)\d{2}\b`),
				regexp.MustCompile(`\b(19|20)\d{2}[-/](0?[1-9]|1[0-2])[-/](0?[1-9]|[12]\d|3[01])\b`),
			},
			ContextPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(dob|birth|born|birthday)`),
			},
			ContextRequired: true,
		},
		{
			Label:      "address",
			Confidence: 0.7,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct)\b`),
			},
		},
		{
			Label:      "person",
			Confidence: 0.6,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
			},
			ContextPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(name|mr\.|mrs\.|ms\.|dr\.|contact)`),
			},
			ContextRequired: true,
		},
	}
}

func ValidateSSN(ssn string) bool {
	clean := strings.ReplaceAll(strings.ReplaceAll(ssn, "-", ""), " ", "")
	if len(clean) != 9 {
		return false
	}

	for _, c := range clean {
		if !unicode.IsDigit(c) {
			return false
		}
	}

	area := 0
	for i := 0; i < 3; i++ {
		area = area*10 + int(clean[i]-'0')
	}

	if area == 0 || area == 666 || area >= 900 {
		return false
	}

	group := int(clean[3]-'0')*10 + int(clean[4]-'0')
	if group == 0 {
		return false
	}

	serial := 0
	for i := 5; i < 9; i++ {
		serial = serial*10 + int(clean[i]-'0')
	}
	return serial != 0
}

func ValidateLuhn(number string) bool {
	var clean strings.Builder
	for _, c := range number {
		if unicode.IsDigit(c) {
			clean.WriteRune(c)
		}
	}
	digits := clean.String()

	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	alternate := false

	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')

		if alternate {
			n *= 2
			if n > 9 {
				n = n%10 + 1
			}
		}

		sum += n
		alternate = !alternate
	}

	return sum%10 == 0
}

func Redact(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}
