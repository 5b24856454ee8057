package risk

import "github.com/privasee/footprint/internal/models"

// exposureBaseWeights weight an exposure by what kind of information is
// visible. Types not listed contribute the default 10.
var exposureBaseWeights = map[models.ExposureType]float64{
	models.ExposurePublicProfile: 10,
	models.ExposurePersonalInfo:  20,
	models.ExposureLocationData:  25,
	models.ExposureFinancialInfo: 35,
}

// exposureRiskMultipliers scale the base weight by the exposure's own
// risk level. Social exposures only ever carry low, medium, or high.
var exposureRiskMultipliers = map[models.RiskLevel]float64{
	models.RiskLow:    0.5,
	models.RiskMedium: 1.0,
	models.RiskHigh:   1.8,
}

// socialDampening down-weights social signal relative to breach signal.
const socialDampening = 0.8

// ExposureContribution returns the score contribution of one social
// exposure: base(exposureType) x multiplier(riskLevel) x 0.8.
func ExposureContribution(exposureType models.ExposureType, level models.RiskLevel) float64 {
	base, ok := exposureBaseWeights[exposureType]
	if !ok {
		base = 10
	}
	mult, ok := exposureRiskMultipliers[level]
	if !ok {
		mult = exposureRiskMultipliers[models.RiskLow]
	}
	return base * mult * socialDampening
}
