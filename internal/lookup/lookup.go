// Package lookup isolates the external data sources behind capability
// interfaces. Each source has a live HTTP implementation and a
// deterministic synthetic double selected by configuration, so handlers
// never fall back by silent exception.
package lookup

import (
	"context"
	"time"

	"github.com/privasee/footprint/internal/models"
)

const (
	SourceHIBP      = "hibp"
	SourceSynthetic = "synthetic"
)

// Breach is one breach match for an email, before persistence.
type Breach struct {
	Name        string
	Date        *time.Time
	DataClasses []string
	Verified    bool
	Description string
	Source      string
}

// Exposure is one simulated platform exposure, before persistence.
type Exposure struct {
	Platform     string
	ExposureType models.ExposureType
	RiskLevel    models.RiskLevel
	Details      map[string]interface{}
}

// BreachLookup finds known breaches for an email address.
type BreachLookup interface {
	FindBreaches(ctx context.Context, email string) ([]Breach, error)
}

// SocialExposureLookup scans platforms for visible personal information.
type SocialExposureLookup interface {
	ScanPlatforms(ctx context.Context, email string, platforms []string) ([]Exposure, error)
}
