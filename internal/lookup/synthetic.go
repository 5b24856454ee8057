package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/privasee/footprint/internal/models"
)

// syntheticCatalog holds representative breaches the synthetic lookup
// samples from. Dates are fixed so output is stable across runs.
var syntheticCatalog = []Breach{
	{
		Name:        "LinkedIn Scraped Data (2021)",
		Date:        datePtr(2021, 6, 22),
		DataClasses: []string{"Email addresses", "Names", "Phone numbers", "Social media profiles"},
		Verified:    true,
		Description: "Profile data scraped from public LinkedIn pages and aggregated for resale.",
	},
	{
		Name:        "Facebook Contact Dump (2019)",
		Date:        datePtr(2019, 8, 1),
		DataClasses: []string{"Email addresses", "Names", "Phone numbers", "Dates of birth"},
		Verified:    true,
		Description: "Contact records exposed through a misconfigured third-party database.",
	},
	{
		Name:        "Collection Credential List (2019)",
		Date:        datePtr(2019, 1, 7),
		DataClasses: []string{"Email addresses", "Passwords"},
		Verified:    false,
		Description: "Aggregated credential stuffing list circulated on underground forums.",
	},
	{
		Name:        "Retail Loyalty Program (2020)",
		Date:        datePtr(2020, 3, 14),
		DataClasses: []string{"Email addresses", "Names", "Physical addresses", "Partial credit card data"},
		Verified:    true,
		Description: "Loyalty program database exposed customer contact and partial payment data.",
	},
	{
		Name:        "Fitness App Export (2022)",
		Date:        datePtr(2022, 11, 3),
		DataClasses: []string{"Email addresses", "Usernames", "Dates of birth"},
		Verified:    false,
		Description: "Account exports from a fitness application shared publicly.",
	},
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// SyntheticBreaches is a deterministic BreachLookup double. The target
// email's hash decides how many and which catalog breaches it appears
// in, so repeated scans of the same address always agree.
type SyntheticBreaches struct{}

func NewSyntheticBreaches() *SyntheticBreaches {
	return &SyntheticBreaches{}
}

func (s *SyntheticBreaches) FindBreaches(_ context.Context, email string) ([]Breach, error) {
	h := xxhash.Sum64String(email)
	count := int(h % 3)

	breaches := make([]Breach, 0, count)
	for i := 0; i < count; i++ {
		b := syntheticCatalog[int(h>>(8*uint(i+1)))%len(syntheticCatalog)]
		if containsBreach(breaches, b.Name) {
			continue
		}
		b.Source = SourceSynthetic
		breaches = append(breaches, b)
	}
	return breaches, nil
}

func containsBreach(breaches []Breach, name string) bool {
	for _, b := range breaches {
		if b.Name == name {
			return true
		}
	}
	return false
}

type exposureTemplate struct {
	ExposureType models.ExposureType
	RiskLevel    models.RiskLevel
	Description  string
}

var exposureCatalog = []exposureTemplate{
	{models.ExposurePublicProfile, models.RiskLow, "Profile photo and display name are publicly visible"},
	{models.ExposurePersonalInfo, models.RiskMedium, "Birthday and hometown are visible to non-connections"},
	{models.ExposureLocationData, models.RiskHigh, "Recent posts carry precise location tags"},
	{models.ExposureContactInfo, models.RiskMedium, "Email address is listed on the public profile"},
	{models.ExposureEmploymentInfo, models.RiskLow, "Employer and job title are publicly visible"},
	{models.ExposureFinancialInfo, models.RiskHigh, "Payment handle is linked from the profile page"},
}

// SyntheticExposures is a deterministic SocialExposureLookup double
// keyed by email and platform.
type SyntheticExposures struct{}

func NewSyntheticExposures() *SyntheticExposures {
	return &SyntheticExposures{}
}

func (s *SyntheticExposures) ScanPlatforms(_ context.Context, email string, platforms []string) ([]Exposure, error) {
	var exposures []Exposure
	for _, platform := range platforms {
		h := xxhash.Sum64String(email + ":" + platform)
		count := int(h % 3)

		for i := 0; i < count; i++ {
			tpl := exposureCatalog[int(h>>(8*uint(i+1)))%len(exposureCatalog)]
			if containsExposure(exposures, platform, tpl.ExposureType) {
				continue
			}
			exposures = append(exposures, Exposure{
				Platform:     platform,
				ExposureType: tpl.ExposureType,
				RiskLevel:    tpl.RiskLevel,
				Details: map[string]interface{}{
					"description": tpl.Description,
					"source":      SourceSynthetic,
					"finding_ref": fmt.Sprintf("%s-%d", platform, i+1),
				},
			})
		}
	}
	return exposures, nil
}

func containsExposure(exposures []Exposure, platform string, et models.ExposureType) bool {
	for _, e := range exposures {
		if e.Platform == platform && e.ExposureType == et {
			return true
		}
	}
	return false
}
