package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// StringArray is an alias for pq.StringArray to handle PostgreSQL arrays
type StringArray = pq.StringArray

// RiskLevel is the canonical four-level risk scale used across the product.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// CompareRisk returns a negative, zero, or positive value depending on
// whether a is less, equally, or more severe than b.
func CompareRisk(a, b RiskLevel) int {
	order := map[RiskLevel]int{
		RiskLow:      1,
		RiskMedium:   2,
		RiskHigh:     3,
		RiskCritical: 4,
	}
	return order[a] - order[b]
}

type ExposureType string

const (
	ExposurePublicProfile  ExposureType = "public_profile"
	ExposurePersonalInfo   ExposureType = "personal_info"
	ExposureLocationData   ExposureType = "location_data"
	ExposureContactInfo    ExposureType = "contact_info"
	ExposureEmploymentInfo ExposureType = "employment_info"
	ExposureFinancialInfo  ExposureType = "financial_info"
)

type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

type ScanType string

const (
	ScanTypeFull        ScanType = "full"
	ScanTypeBreachCheck ScanType = "breach_check"
	ScanTypeSocial      ScanType = "social_scan"
)

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// FootprintScan is one user-initiated scan of an email/phone identity.
// Score fields are filled in when the assessment completes.
type FootprintScan struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	UserID              uuid.UUID   `json:"user_id" db:"user_id"`
	ScanType            ScanType    `json:"scan_type" db:"scan_type"`
	TargetEmail         string      `json:"target_email" db:"target_email"`
	TargetPhone         string      `json:"target_phone,omitempty" db:"target_phone"`
	Status              ScanStatus  `json:"status" db:"status"`
	StatusMessage       string      `json:"status_message,omitempty" db:"status_message"`
	RiskScore           int         `json:"risk_score" db:"risk_score"`
	RiskLevel           RiskLevel   `json:"risk_level,omitempty" db:"risk_level"`
	PrivacyScore        int         `json:"privacy_score" db:"privacy_score"`
	BreachCount         int         `json:"breach_count" db:"breach_count"`
	SocialExposureScore int         `json:"social_exposure_score" db:"social_exposure_score"`
	Recommendations     StringArray `json:"recommendations" db:"recommendations"`
	ScanResults         JSONB       `json:"scan_results,omitempty" db:"scan_results"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
	CompletedAt         *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// BreachRecord is one external breach match for a scanned email. The
// severity is assigned once when the record is created and never
// recomputed.
type BreachRecord struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	ScanID      uuid.UUID   `json:"scan_id" db:"scan_id"`
	Name        string      `json:"name" db:"breach_name"`
	BreachDate  *time.Time  `json:"breach_date,omitempty" db:"breach_date"`
	DataClasses StringArray `json:"data_classes" db:"data_classes"`
	Severity    RiskLevel   `json:"severity" db:"severity"`
	Verified    bool        `json:"verified" db:"verified"`
	Description string      `json:"description,omitempty" db:"description"`
	Source      string      `json:"source" db:"source"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// SocialExposure is one detected privacy exposure on a platform. The
// risk level comes from the lookup and is immutable; Details is
// display-only and never scored.
type SocialExposure struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	ScanID       uuid.UUID    `json:"scan_id" db:"scan_id"`
	Platform     string       `json:"platform" db:"platform"`
	ExposureType ExposureType `json:"exposure_type" db:"exposure_type"`
	RiskLevel    RiskLevel    `json:"risk_level" db:"risk_level"`
	Details      JSONB        `json:"details,omitempty" db:"details"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// DetectedEntity is a single PII/NER hit on a text sample. Entities are
// embedded in a TextAnalysis and never persisted standalone.
type DetectedEntity struct {
	Text       string    `json:"text"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Start      int       `json:"start,omitempty"`
	End        int       `json:"end,omitempty"`
	Category   string    `json:"category"`
	RiskTier   RiskLevel `json:"risk_tier"`
}

// TextAnalysis is a persisted PII/NER analysis of a free-text sample.
type TextAnalysis struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"user_id" db:"user_id"`
	InputText       string      `json:"input_text" db:"input_text"`
	Entities        JSONB       `json:"entities" db:"entities"`
	Categories      StringArray `json:"categories" db:"categories"`
	RiskScore       int         `json:"risk_score" db:"risk_score"`
	RiskLevel       RiskLevel   `json:"risk_level" db:"risk_level"`
	PrivacyScore    int         `json:"privacy_score" db:"privacy_score"`
	Recommendations JSONB       `json:"recommendations" db:"recommendations"`
	Source          string      `json:"source" db:"source"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// ConsentRecord is the explicit per-user consent state for each data
// processing capability. The record is loaded per request and passed
// through context; there is no ambient process-wide consent state.
type ConsentRecord struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	DataProcessing bool      `json:"data_processing" db:"data_processing"`
	BreachLookup   bool      `json:"breach_lookup" db:"breach_lookup"`
	SocialScan     bool      `json:"social_scan" db:"social_scan"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
