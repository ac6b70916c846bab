package domain

import (
	"time"
)

// Request Models
//
// A case arrives as a flat mapping of named numeric fields from the form
// collaborator. Optional fields are pointers; nil means not sampled, which
// marks dependent derived values not applicable rather than defaulting to
// zero.

// PatientInput holds anthropometrics and laboratory values for one case.
type PatientInput struct {
	Label string   `json:"label,omitempty"`
	ID    string   `json:"id,omitempty"`
	Age   *float64 `json:"age,omitempty"`
	Sex   string   `json:"sex,omitempty"`

	HeightCm *float64 `json:"height_cm"`
	WeightKg *float64 `json:"weight_kg"`

	// Hemoglobin is accepted in g/L; values below 40 are assumed to be
	// g/dL and converted during validation.
	Hemoglobin *float64 `json:"hb"`
}

// SaturationSet holds the oximetry run. SaO2 is required; the step samples
// feed the mixed venous estimate and the Qp/Qs shunt calculation.
type SaturationSet struct {
	SaO2 *float64 `json:"sao2"`
	SVC  *float64 `json:"svc_sat,omitempty"`
	IVC  *float64 `json:"ivc_sat,omitempty"`
	RA   *float64 `json:"ra_sat,omitempty"`
	RV   *float64 `json:"rv_sat,omitempty"`
	PA   *float64 `json:"pa_sat,omitempty"`
}

// PressureSet holds the catheterization pressures in mmHg. PAMean is derived
// from systolic/diastolic when not measured directly.
type PressureSet struct {
	RAMean      *float64 `json:"ra_mean"`
	RVSystolic  *float64 `json:"rv_sys,omitempty"`
	RVDiastolic *float64 `json:"rv_dia,omitempty"`
	PASystolic  *float64 `json:"pa_sys"`
	PADiastolic *float64 `json:"pa_dia"`
	PAMean      *float64 `json:"pa_mean,omitempty"`
	PCWP        *float64 `json:"pcwp"`

	SystemicSystolic  *float64 `json:"sbp,omitempty"`
	SystemicDiastolic *float64 `json:"dbp,omitempty"`
}

// CaseInput is the complete engine input contract for one catheterization
// study.
type CaseInput struct {
	Patient     PatientInput  `json:"patient"`
	Saturations SaturationSet `json:"saturations"`
	Pressures   PressureSet   `json:"pressures"`

	HeartRate *float64 `json:"hr"`

	// Measured oxygen consumption in mL/min. Estimated from weight when
	// absent.
	VO2 *float64 `json:"vo2,omitempty"`

	// Thermodilution cardiac output in L/min, when performed.
	ThermodilutionCO *float64 `json:"td_co,omitempty"`

	// Relaxes the SaO2 >= SvO2 consistency check.
	SuspectRightToLeftShunt bool `json:"suspect_rtl_shunt,omitempty"`
}

// ValidatedInput is the normalized, range-checked form of a CaseInput.
// All required fields are concrete; units are resolved; every derived-value
// prerequisite that was supplied is carried through unchanged.
type ValidatedInput struct {
	HeightCm float64
	WeightKg float64

	HemoglobinGL    float64
	HemoglobinGDL   float64
	HbUnitCorrected bool

	SaO2   float64
	SVCSat *float64
	IVCSat *float64
	RASat  *float64
	RVSat  *float64
	PASat  *float64

	MixedVenousSat    float64
	MixedVenousSource string

	RAMean        float64
	PASystolic    float64
	PADiastolic   float64
	PAMean        float64
	PAMeanDerived bool
	PCWP          float64

	SystemicSystolic  *float64
	SystemicDiastolic *float64

	HeartRate float64

	VO2       float64
	VO2Source string

	ThermodilutionCO *float64

	SuspectRightToLeftShunt bool
}

// HasSystemicPressures reports whether SVR, CPO and related systemic values
// are computable.
func (v *ValidatedInput) HasSystemicPressures() bool {
	return v.SystemicSystolic != nil && v.SystemicDiastolic != nil
}

// DerivedParameters is the read-only result set of the derived-parameter
// engine. Every field is independently computable and independently marked
// not applicable when its prerequisites were absent.
type DerivedParameters struct {
	BSA Measurement `json:"bsa"`

	COFick           Measurement `json:"co_fick"`
	COThermodilution Measurement `json:"co_thermodilution"`
	CO               Measurement `json:"co"`
	COSource         COSource    `json:"co_source"`
	CODiscrepancyPct Measurement `json:"co_discrepancy_pct"`
	CODiscrepant     bool        `json:"co_discrepant"`

	CI  Measurement `json:"ci"`
	SV  Measurement `json:"sv"`
	SVI Measurement `json:"svi"`

	TPG     Measurement `json:"tpg"`
	DPG     Measurement `json:"dpg"`
	PVRWood Measurement `json:"pvr_wu"`
	PVRDyn  Measurement `json:"pvr_dyn"`
	PVRI    Measurement `json:"pvri"`

	MAP     Measurement `json:"map"`
	SVRWood Measurement `json:"svr_wu"`
	SVRDyn  Measurement `json:"svr_dyn"`
	SVRI    Measurement `json:"svri"`

	PAPi         Measurement `json:"papi"`
	RAPPCWPRatio Measurement `json:"rap_pcwp_ratio"`
	PACompliance Measurement `json:"pa_compliance"`
	RVSWI        Measurement `json:"rvswi"`

	CPO Measurement `json:"cpo"`
	CPI Measurement `json:"cpi"`

	QpQs     Measurement `json:"qpqs"`
	QpQsNote string      `json:"qpqs_note,omitempty"`

	MixedVenousSat    float64 `json:"svo2"`
	MixedVenousSource string  `json:"svo2_source"`
	VO2               float64 `json:"vo2"`
	VO2Source         string  `json:"vo2_source"`
}

// Classification is the categorical result of the classification engine.
// It is a pure function of DerivedParameters and the validated pressures.
type Classification struct {
	Group    PHGroup      `json:"group"`
	Severity SeverityTier `json:"severity"`

	ShuntSignificance ShuntSignificance `json:"shunt_significance"`
	ShuntDirection    ShuntDirection    `json:"shunt_direction"`

	// Code of the first matching classification rule, for auditability.
	RuleCode     string `json:"rule_code"`
	Summary      string `json:"summary"`
	ShuntSummary string `json:"shunt_summary,omitempty"`
}

// PHPresent reports whether the study meets the mPAP > 20 mmHg definition.
func (c *Classification) PHPresent() bool {
	switch c.Group {
	case PRE_CAPILLARY, ISOLATED_POST_CAP, COMBINED_PRE_POST, UNCLASSIFIED_PH:
		return true
	default:
		return false
	}
}

// Recommendation is the ordered guidance output. Constructed fresh per
// request and never cached.
type Recommendation struct {
	Statements   []string `json:"statements"`
	FallbackUsed bool     `json:"fallback_used"`
}

// Result bundles the complete engine output for one case, suitable for
// template rendering or JSON serialization by the report collaborator.
type Result struct {
	CaseID    string    `json:"case_id"`
	Timestamp time.Time `json:"timestamp"`

	PatientLabel string `json:"patient_label,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`

	Derived         DerivedParameters `json:"derived"`
	Classification  Classification    `json:"classification"`
	Recommendations Recommendation    `json:"recommendations"`

	// Advanced heart failure / transplant alerts.
	Alerts []string `json:"alerts,omitempty"`

	// Normalization notes surfaced to the clinician, e.g. hemoglobin unit
	// correction or derived mPAP.
	Notes []string `json:"notes,omitempty"`

	ProcessingTime time.Duration `json:"processing_time"`
}
