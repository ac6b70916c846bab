// Package service implements the RHC evaluation pipeline: input validation,
// derived-parameter computation, ESC/ERS classification, and treatment
// recommendation lookup.
package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// Plausible input ranges. Values outside these bounds are rejected as
// physiologically implausible rather than silently computed.
type fieldRange struct {
	Min float64
	Max float64
}

var plausibleRanges = map[string]fieldRange{
	"height_cm": {50, 250},
	"weight_kg": {20, 300},
	"hb":        {40, 250}, // g/L, after unit normalization
	"sao2":      {0, 100},
	"svc_sat":   {0, 100},
	"ivc_sat":   {0, 100},
	"ra_sat":    {0, 100},
	"rv_sat":    {0, 100},
	"pa_sat":    {0, 100},
	"ra_mean":   {-5, 50},
	"rv_sys":    {5, 150},
	"rv_dia":    {-5, 50},
	"pa_sys":    {5, 150},
	"pa_dia":    {0, 100},
	"pa_mean":   {0, 100},
	"pcwp":      {0, 60},
	"sbp":       {30, 300},
	"dbp":       {10, 200},
	"hr":        {20, 250},
	"vo2":       {50, 1000},
	"td_co":     {0.5, 15},
}

// ValidatorService implements the validation layer. It is pure: one pass over
// the raw fields producing either a normalized ValidatedInput or the complete
// list of violations.
type ValidatorService struct {
	logger    *logrus.Logger
	constants domain.EngineConstants
}

// NewValidatorService creates a new validator.
func NewValidatorService(logger *logrus.Logger, constants domain.EngineConstants) *ValidatorService {
	return &ValidatorService{logger: logger, constants: constants}
}

// Validate checks presence, plausible ranges, and logical consistency of the
// raw case input. Every violation is collected before returning so the caller
// can surface the full correction list in one pass.
func (s *ValidatorService) Validate(input *domain.CaseInput) (*domain.ValidatedInput, error) {
	errs := &domain.ValidationErrors{}

	s.checkRequired(input, errs)
	s.checkRanges(input, errs)
	s.checkConsistency(input, errs)

	if errs.HasViolations() {
		s.logger.WithFields(logrus.Fields{
			"violation_count": len(errs.Violations),
			"fields":          errs.Fields(),
		}).Warn("Case input rejected by validation")
		return nil, errs
	}

	validated := s.normalize(input)

	// SaO2 must not fall below the mixed venous estimate unless a
	// right-to-left shunt is suspected.
	if !input.SuspectRightToLeftShunt && validated.SaO2 < validated.MixedVenousSat {
		errs.Add("sao2", "SaO2 below mixed venous saturation; set suspect_rtl_shunt if a right-to-left shunt is suspected", validated.SaO2)
		return nil, errs
	}

	s.logger.WithFields(logrus.Fields{
		"svo2_source":     validated.MixedVenousSource,
		"vo2_source":      validated.VO2Source,
		"pa_mean_derived": validated.PAMeanDerived,
		"hb_corrected":    validated.HbUnitCorrected,
	}).Debug("Case input validated")

	return validated, nil
}

// checkRequired verifies the minimum computable field set is present.
func (s *ValidatorService) checkRequired(input *domain.CaseInput, errs *domain.ValidationErrors) {
	required := []struct {
		field string
		value *float64
	}{
		{"height_cm", input.Patient.HeightCm},
		{"weight_kg", input.Patient.WeightKg},
		{"hb", input.Patient.Hemoglobin},
		{"sao2", input.Saturations.SaO2},
		{"ra_mean", input.Pressures.RAMean},
		{"pa_sys", input.Pressures.PASystolic},
		{"pa_dia", input.Pressures.PADiastolic},
		{"pcwp", input.Pressures.PCWP},
		{"hr", input.HeartRate},
	}

	for _, r := range required {
		if r.value == nil {
			errs.Add(r.field, "required field is missing", nil)
		}
	}
}

// checkRanges verifies every present numeric field against its plausible
// bounds.
func (s *ValidatorService) checkRanges(input *domain.CaseInput, errs *domain.ValidationErrors) {
	present := map[string]*float64{
		"height_cm": input.Patient.HeightCm,
		"weight_kg": input.Patient.WeightKg,
		"sao2":      input.Saturations.SaO2,
		"svc_sat":   input.Saturations.SVC,
		"ivc_sat":   input.Saturations.IVC,
		"ra_sat":    input.Saturations.RA,
		"rv_sat":    input.Saturations.RV,
		"pa_sat":    input.Saturations.PA,
		"ra_mean":   input.Pressures.RAMean,
		"rv_sys":    input.Pressures.RVSystolic,
		"rv_dia":    input.Pressures.RVDiastolic,
		"pa_sys":    input.Pressures.PASystolic,
		"pa_dia":    input.Pressures.PADiastolic,
		"pa_mean":   input.Pressures.PAMean,
		"pcwp":      input.Pressures.PCWP,
		"sbp":       input.Pressures.SystemicSystolic,
		"dbp":       input.Pressures.SystemicDiastolic,
		"hr":        input.HeartRate,
		"vo2":       input.VO2,
		"td_co":     input.ThermodilutionCO,
	}

	for field, value := range present {
		if value == nil {
			continue
		}
		bounds := plausibleRanges[field]
		if *value < bounds.Min || *value > bounds.Max {
			errs.Add(field, rangeMessage(bounds), *value)
		}
	}

	// Hemoglobin is range-checked after unit normalization.
	if hb := input.Patient.Hemoglobin; hb != nil {
		gl, _, _ := normalizeHemoglobin(*hb)
		bounds := plausibleRanges["hb"]
		if gl < bounds.Min || gl > bounds.Max {
			errs.Add("hb", rangeMessage(bounds)+" g/L after unit normalization", *hb)
		}
	}
}

// checkConsistency enforces systolic >= mean >= diastolic on each pressure
// triplet and pairing of the systemic pressures.
func (s *ValidatorService) checkConsistency(input *domain.CaseInput, errs *domain.ValidationErrors) {
	p := input.Pressures

	if p.PASystolic != nil && p.PADiastolic != nil && *p.PASystolic < *p.PADiastolic {
		errs.Add("pa_sys", "PA systolic must be >= PA diastolic", *p.PASystolic)
	}
	if p.PAMean != nil {
		if p.PASystolic != nil && *p.PAMean > *p.PASystolic {
			errs.Add("pa_mean", "PA mean must be <= PA systolic", *p.PAMean)
		}
		if p.PADiastolic != nil && *p.PAMean < *p.PADiastolic {
			errs.Add("pa_mean", "PA mean must be >= PA diastolic", *p.PAMean)
		}
	}

	if p.RVSystolic != nil && p.RVDiastolic != nil && *p.RVSystolic < *p.RVDiastolic {
		errs.Add("rv_sys", "RV systolic must be >= RV diastolic", *p.RVSystolic)
	}

	if (p.SystemicSystolic == nil) != (p.SystemicDiastolic == nil) {
		errs.Add("sbp", "systemic pressures must be supplied as an SBP/DBP pair", nil)
	}
	if p.SystemicSystolic != nil && p.SystemicDiastolic != nil && *p.SystemicSystolic < *p.SystemicDiastolic {
		errs.Add("sbp", "systemic systolic must be >= diastolic", *p.SystemicSystolic)
	}
}

// normalize resolves units and fills derived inputs: hemoglobin to g/L and
// g/dL, mPAP from systolic/diastolic when not measured, mixed venous
// saturation from the oximetry run, VO2 estimated from weight when absent.
// Only called on inputs that passed presence and range checks.
func (s *ValidatorService) normalize(input *domain.CaseInput) *domain.ValidatedInput {
	v := &domain.ValidatedInput{
		HeightCm:                *input.Patient.HeightCm,
		WeightKg:                *input.Patient.WeightKg,
		SaO2:                    *input.Saturations.SaO2,
		SVCSat:                  input.Saturations.SVC,
		IVCSat:                  input.Saturations.IVC,
		RASat:                   input.Saturations.RA,
		RVSat:                   input.Saturations.RV,
		PASat:                   input.Saturations.PA,
		RAMean:                  *input.Pressures.RAMean,
		PASystolic:              *input.Pressures.PASystolic,
		PADiastolic:             *input.Pressures.PADiastolic,
		PCWP:                    *input.Pressures.PCWP,
		SystemicSystolic:        input.Pressures.SystemicSystolic,
		SystemicDiastolic:       input.Pressures.SystemicDiastolic,
		HeartRate:               *input.HeartRate,
		ThermodilutionCO:        input.ThermodilutionCO,
		SuspectRightToLeftShunt: input.SuspectRightToLeftShunt,
	}

	v.HemoglobinGL, v.HemoglobinGDL, v.HbUnitCorrected = normalizeHemoglobin(*input.Patient.Hemoglobin)

	if input.Pressures.PAMean != nil {
		v.PAMean = *input.Pressures.PAMean
	} else {
		v.PAMean = meanFromSysDia(v.PASystolic, v.PADiastolic)
		v.PAMeanDerived = true
	}

	v.MixedVenousSat, v.MixedVenousSource = s.pickMixedVenousSat(input.Saturations)

	if input.VO2 != nil {
		v.VO2 = *input.VO2
		v.VO2Source = "measured"
	} else {
		v.VO2 = s.constants.AssumedVO2PerKg * v.WeightKg
		v.VO2Source = "estimated"
	}

	return v
}

// pickMixedVenousSat selects the mixed venous saturation from the available
// step samples. Preference order: direct PA sample, RA sample, weighted
// caval average (2/3 IVC + 1/3 SVC), RV sample, assumed default.
func (s *ValidatorService) pickMixedVenousSat(sat domain.SaturationSet) (float64, string) {
	switch {
	case sat.PA != nil:
		return *sat.PA, "PA"
	case sat.RA != nil:
		return *sat.RA, "RA"
	case sat.SVC != nil && sat.IVC != nil:
		return (2.0*(*sat.IVC) + *sat.SVC) / 3.0, "weighted(2/3 IVC + 1/3 SVC)"
	case sat.RV != nil:
		return *sat.RV, "RV"
	default:
		return s.constants.DefaultMixedVenousSat, "assumed default"
	}
}

// normalizeHemoglobin accepts hemoglobin in g/L, converting inputs that look
// like g/dL (below 40). Returns g/L, g/dL, and whether a conversion applied.
func normalizeHemoglobin(raw float64) (gl, gdl float64, corrected bool) {
	gl = raw
	if raw > 0 && raw < 40 {
		gl = raw * 10.0
		corrected = true
	}
	return gl, gl / 10.0, corrected
}

// meanFromSysDia estimates a mean pressure from a systolic/diastolic pair.
func meanFromSysDia(sys, dia float64) float64 {
	return dia + (sys-dia)/3.0
}

func rangeMessage(b fieldRange) string {
	return fmt.Sprintf("value outside plausible range [%g, %g]", b.Min, b.Max)
}
