package domain

// EngineConstants is the immutable configuration passed into the calculation
// engine. Nothing in the engine reads ambient or global state; any site that
// wants different assumptions supplies its own instance.
type EngineConstants struct {
	// Hüfner constant: mL O2 carried per gram of hemoglobin.
	HufnerConstant float64 `json:"hufner_constant" mapstructure:"hufner_constant"`

	// Conversion factor from Wood units to dyn·s/cm^5.
	DynePerWoodUnit float64 `json:"dyne_per_wood_unit" mapstructure:"dyne_per_wood_unit"`

	// Assumed O2 consumption in mL/kg/min when VO2 is not measured.
	AssumedVO2PerKg float64 `json:"assumed_vo2_per_kg" mapstructure:"assumed_vo2_per_kg"`

	// Divisor in the cardiac power output formula (MAP x CO / divisor).
	CPODivisor float64 `json:"cpo_divisor" mapstructure:"cpo_divisor"`

	// RVSWI = SVI x (mPAP - RAP) x factor, in g·m/m^2/beat.
	RVSWIFactor float64 `json:"rvswi_factor" mapstructure:"rvswi_factor"`

	// Default mixed venous saturation (%) when no venous sample exists.
	DefaultMixedVenousSat float64 `json:"default_svo2" mapstructure:"default_svo2"`

	// Relative Fick vs thermodilution CO difference above which the result
	// is flagged discrepant.
	CODiscrepancyTolerance float64 `json:"co_discrepancy_tolerance" mapstructure:"co_discrepancy_tolerance"`
}

// DefaultEngineConstants returns the standard clinical constants.
func DefaultEngineConstants() EngineConstants {
	return EngineConstants{
		HufnerConstant:         1.34,
		DynePerWoodUnit:        80.0,
		AssumedVO2PerKg:        3.5,
		CPODivisor:             451.0,
		RVSWIFactor:            0.0136,
		DefaultMixedVenousSat:  75.0,
		CODiscrepancyTolerance: 0.20,
	}
}
