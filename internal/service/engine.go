package service

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// DerivedParameterEngine computes the derived hemodynamic parameter set from
// a validated input. Deterministic and pure: no I/O, no state beyond the
// injected constants, every division guarded.
type DerivedParameterEngine struct {
	logger    *logrus.Logger
	constants domain.EngineConstants
}

// NewDerivedParameterEngine creates a new derived-parameter engine.
func NewDerivedParameterEngine(logger *logrus.Logger, constants domain.EngineConstants) *DerivedParameterEngine {
	return &DerivedParameterEngine{logger: logger, constants: constants}
}

// Compute derives the complete parameter set. Each parameter is
// independently computable; parameters whose prerequisites are absent are
// marked not applicable with an explicit reason.
func (e *DerivedParameterEngine) Compute(v *domain.ValidatedInput) *domain.DerivedParameters {
	d := &domain.DerivedParameters{
		MixedVenousSat:    v.MixedVenousSat,
		MixedVenousSource: v.MixedVenousSource,
		VO2:               v.VO2,
		VO2Source:         v.VO2Source,
	}

	d.BSA = e.computeBSA(v)
	e.computeCardiacOutput(v, d)
	e.computeFlowIndices(v, d)
	e.computePulmonaryIndices(v, d)
	e.computeSystemicIndices(v, d)
	e.computeShunt(v, d)

	e.logger.WithFields(logrus.Fields{
		"co":        d.CO.String(),
		"co_source": d.COSource.String(),
		"pvr_wu":    d.PVRWood.String(),
		"qpqs":      d.QpQs.String(),
	}).Debug("Derived parameters computed")

	return d
}

// computeBSA applies the Mosteller formula.
func (e *DerivedParameterEngine) computeBSA(v *domain.ValidatedInput) domain.Measurement {
	if v.HeightCm <= 0 || v.WeightKg <= 0 {
		return domain.NotApplicable("m^2", "height and weight must be positive")
	}
	bsa := math.Sqrt(v.HeightCm * v.WeightKg / 3600.0)
	return domain.NewMeasurement(bsa, "m^2").WithFlag(domain.FLAG_NORMAL)
}

// computeCardiacOutput computes Fick CO, carries the thermodilution CO when
// supplied, flags discrepancy between the two, and selects the effective CO
// for downstream parameters. Thermodilution, being directly measured, takes
// precedence when both are available.
func (e *DerivedParameterEngine) computeCardiacOutput(v *domain.ValidatedInput, d *domain.DerivedParameters) {
	ca := e.o2Content(v.HemoglobinGDL, v.SaO2)
	cv := e.o2Content(v.HemoglobinGDL, v.MixedVenousSat)
	avDiff := ca - cv

	// Fick: CO (L/min) = VO2 / (Ca - Cv) / 10, contents in mL/dL.
	// A non-positive content difference happens when arterial saturation
	// sits at or below the mixed venous sample (possible once a suspected
	// right-to-left shunt relaxes validation); a flow computed from it
	// would be zero or negative, so Fick is not interpretable.
	if avDiff <= 0 {
		d.COFick = domain.NotApplicable("L/min",
			"arteriovenous O2 content difference is not positive; Fick not interpretable")
	} else {
		d.COFick = domain.SafeDiv(v.VO2, avDiff*10.0, "L/min", "arteriovenous O2 content difference")
	}

	if v.ThermodilutionCO != nil {
		d.COThermodilution = domain.NewMeasurement(*v.ThermodilutionCO, "L/min")
	} else {
		d.COThermodilution = domain.NotApplicable("L/min", "thermodilution not performed")
	}

	switch {
	case d.COThermodilution.Valid:
		d.CO = d.COThermodilution
		d.COSource = domain.CO_THERMODILUTION
	case d.COFick.Valid:
		d.CO = d.COFick
		d.COSource = domain.CO_FICK
	default:
		d.CO = domain.NotApplicable("L/min", "no valid cardiac output measurement")
	}

	if d.COFick.Valid && d.COThermodilution.Valid {
		mean := (d.COFick.Value + d.COThermodilution.Value) / 2.0
		pct := domain.SafeDiv(math.Abs(d.COFick.Value-d.COThermodilution.Value)*100.0, mean, "%", "mean cardiac output")
		d.CODiscrepancyPct = pct
		if pct.Valid && pct.Value > e.constants.CODiscrepancyTolerance*100.0 {
			d.CODiscrepant = true
			e.logger.WithFields(logrus.Fields{
				"co_fick": d.COFick.Value,
				"co_td":   d.COThermodilution.Value,
				"pct":     pct.Value,
			}).Warn("Fick and thermodilution cardiac output diverge beyond tolerance")
		}
	} else {
		d.CODiscrepancyPct = domain.NotApplicable("%", "both CO methods required")
	}

	d.CO = d.CO.WithFlag(bandFlag(d.CO, 4.0, 8.0))
	d.COFick = d.COFick.WithFlag(bandFlag(d.COFick, 4.0, 8.0))
	d.COThermodilution = d.COThermodilution.WithFlag(bandFlag(d.COThermodilution, 4.0, 8.0))
}

// computeFlowIndices derives CI, SV, SVI and the power outputs that depend
// only on flow and body size.
func (e *DerivedParameterEngine) computeFlowIndices(v *domain.ValidatedInput, d *domain.DerivedParameters) {
	d.CI = chainDiv(d.CO, d.BSA, "L/min/m^2", "BSA")
	d.CI = d.CI.WithFlag(bandFlag(d.CI, 2.2, 4.0))

	if d.CO.Valid {
		d.SV = domain.SafeDiv(d.CO.Value*1000.0, v.HeartRate, "mL/beat", "heart rate")
	} else {
		d.SV = domain.NotApplicable("mL/beat", d.CO.Reason)
	}
	d.SV = d.SV.WithFlag(bandFlag(d.SV, 55.0, 100.0))

	d.SVI = chainDiv(d.SV, d.BSA, "mL/beat/m^2", "BSA")
	d.SVI = d.SVI.WithFlag(bandFlag(d.SVI, 33.0, 47.0))
}

// computePulmonaryIndices derives the pressure gradients and pulmonary
// vascular resistances.
func (e *DerivedParameterEngine) computePulmonaryIndices(v *domain.ValidatedInput, d *domain.DerivedParameters) {
	tpg := v.PAMean - v.PCWP
	dpg := v.PADiastolic - v.PCWP

	d.TPG = domain.NewMeasurement(tpg, "mmHg").WithFlag(thresholdFlag(tpg, 12.0))
	d.DPG = domain.NewMeasurement(dpg, "mmHg").WithFlag(thresholdFlag(dpg, 7.0))

	if d.CO.Valid {
		d.PVRWood = domain.SafeDiv(tpg, d.CO.Value, "WU", "cardiac output")
	} else {
		d.PVRWood = domain.NotApplicable("WU", d.CO.Reason)
	}
	if d.PVRWood.Valid {
		d.PVRWood = d.PVRWood.WithFlag(thresholdFlag(d.PVRWood.Value, 2.0))
		d.PVRDyn = domain.NewMeasurement(d.PVRWood.Value*e.constants.DynePerWoodUnit, "dyn·s/cm^5")
	} else {
		d.PVRDyn = domain.NotApplicable("dyn·s/cm^5", d.PVRWood.Reason)
	}
	d.PVRI = chainMul(d.PVRWood, d.BSA, "WU·m^2")

	pulsePressure := v.PASystolic - v.PADiastolic
	if v.RAMean <= 0 {
		d.PAPi = domain.NotApplicable("", "RA mean pressure must be positive")
	} else {
		d.PAPi = domain.SafeDiv(pulsePressure, v.RAMean, "", "RA mean pressure")
	}
	d.PAPi = d.PAPi.WithFlag(papiFlag(d.PAPi))

	d.RAPPCWPRatio = domain.SafeDiv(v.RAMean, v.PCWP, "", "PCWP")
	d.RAPPCWPRatio = d.RAPPCWPRatio.WithFlag(rapPCWPFlag(d.RAPPCWPRatio))

	if d.SV.Valid {
		d.PACompliance = domain.SafeDiv(d.SV.Value, pulsePressure, "mL/mmHg", "PA pulse pressure")
	} else {
		d.PACompliance = domain.NotApplicable("mL/mmHg", d.SV.Reason)
	}
	d.PACompliance = d.PACompliance.WithFlag(paComplianceFlag(d.PACompliance))

	if d.SVI.Valid {
		rvswi := d.SVI.Value * (v.PAMean - v.RAMean) * e.constants.RVSWIFactor
		d.RVSWI = domain.NewMeasurement(rvswi, "g·m/m^2/beat")
	} else {
		d.RVSWI = domain.NotApplicable("g·m/m^2/beat", d.SVI.Reason)
	}
	d.RVSWI = d.RVSWI.WithFlag(bandFlag(d.RVSWI, 5.0, 10.0))
}

// computeSystemicIndices derives MAP, SVR and the cardiac power outputs,
// all of which require systemic pressures.
func (e *DerivedParameterEngine) computeSystemicIndices(v *domain.ValidatedInput, d *domain.DerivedParameters) {
	if !v.HasSystemicPressures() {
		reason := "systemic pressures not supplied"
		d.MAP = domain.NotApplicable("mmHg", reason)
		d.SVRWood = domain.NotApplicable("WU", reason)
		d.SVRDyn = domain.NotApplicable("dyn·s/cm^5", reason)
		d.SVRI = domain.NotApplicable("WU·m^2", reason)
		d.CPO = domain.NotApplicable("W", reason)
		d.CPI = domain.NotApplicable("W/m^2", reason)
		return
	}

	mapVal := meanFromSysDia(*v.SystemicSystolic, *v.SystemicDiastolic)
	d.MAP = domain.NewMeasurement(mapVal, "mmHg")

	if d.CO.Valid {
		d.SVRWood = domain.SafeDiv(mapVal-v.RAMean, d.CO.Value, "WU", "cardiac output")
	} else {
		d.SVRWood = domain.NotApplicable("WU", d.CO.Reason)
	}
	if d.SVRWood.Valid {
		d.SVRDyn = domain.NewMeasurement(d.SVRWood.Value*e.constants.DynePerWoodUnit, "dyn·s/cm^5")
	} else {
		d.SVRDyn = domain.NotApplicable("dyn·s/cm^5", d.SVRWood.Reason)
	}
	d.SVRI = chainMul(d.SVRWood, d.BSA, "WU·m^2")

	if d.CO.Valid {
		d.CPO = domain.NewMeasurement(mapVal*d.CO.Value/e.constants.CPODivisor, "W")
	} else {
		d.CPO = domain.NotApplicable("W", d.CO.Reason)
	}
	d.CPO = d.CPO.WithFlag(cpoFlag(d.CPO, 0.8, 1.1))

	if d.CI.Valid {
		d.CPI = domain.NewMeasurement(mapVal*d.CI.Value/e.constants.CPODivisor, "W/m^2")
	} else {
		d.CPI = domain.NotApplicable("W/m^2", d.CI.Reason)
	}
	d.CPI = d.CPI.WithFlag(cpoFlag(d.CPI, 0.6, 0.8))
}

// computeShunt derives Qp/Qs by the O2 content method. Requires a direct PA
// saturation for the pulmonary arterial content; pulmonary venous saturation
// is assumed as max(98%, SaO2) capped at 100%.
func (e *DerivedParameterEngine) computeShunt(v *domain.ValidatedInput, d *domain.DerivedParameters) {
	if v.PASat == nil {
		d.QpQs = domain.NotApplicable("", "PA saturation not sampled")
		d.QpQsNote = "PA saturation required for shunt run"
		return
	}

	spv := math.Max(98.0, v.SaO2)
	if spv > 100.0 {
		spv = 100.0
	}

	ca := e.o2Content(v.HemoglobinGDL, v.SaO2)
	cv := e.o2Content(v.HemoglobinGDL, v.MixedVenousSat)
	cpa := e.o2Content(v.HemoglobinGDL, *v.PASat)
	cpv := e.o2Content(v.HemoglobinGDL, spv)

	d.QpQs = domain.SafeDiv(ca-cv, cpv-cpa, "", "pulmonary venous-arterial O2 content difference")
	d.QpQsNote = fmt.Sprintf("SpvO2 assumed %.1f%% (Hb-based O2 content method)", spv)
}

// o2Content returns oxygen content in mL/dL for a saturation in percent.
func (e *DerivedParameterEngine) o2Content(hbGDL, satPct float64) float64 {
	return e.constants.HufnerConstant * hbGDL * satPct / 100.0
}

// chainDiv divides two measurements, propagating invalidity.
func chainDiv(num, den domain.Measurement, unit, denName string) domain.Measurement {
	if !num.Valid {
		return domain.NotApplicable(unit, num.Reason)
	}
	if !den.Valid {
		return domain.NotApplicable(unit, den.Reason)
	}
	return domain.SafeDiv(num.Value, den.Value, unit, denName)
}

// chainMul multiplies two measurements, propagating invalidity.
func chainMul(a, b domain.Measurement, unit string) domain.Measurement {
	if !a.Valid {
		return domain.NotApplicable(unit, a.Reason)
	}
	if !b.Valid {
		return domain.NotApplicable(unit, b.Reason)
	}
	return domain.NewMeasurement(a.Value*b.Value, unit)
}

// bandFlag annotates a measurement against a low/high reference band.
func bandFlag(m domain.Measurement, low, high float64) domain.RangeFlag {
	if !m.Valid {
		return domain.FLAG_NA
	}
	switch {
	case m.Value < low:
		return domain.FLAG_LOW
	case m.Value > high:
		return domain.FLAG_HIGH
	default:
		return domain.FLAG_NORMAL
	}
}

// thresholdFlag marks values above an upper threshold as HIGH.
func thresholdFlag(value, threshold float64) domain.RangeFlag {
	if value > threshold {
		return domain.FLAG_HIGH
	}
	return domain.FLAG_NORMAL
}

func papiFlag(m domain.Measurement) domain.RangeFlag {
	if !m.Valid {
		return domain.FLAG_NA
	}
	switch {
	case m.Value < 0.9:
		return domain.FLAG_LOW
	case m.Value < 1.5:
		return domain.FLAG_BORDERLINE
	default:
		return domain.FLAG_NORMAL
	}
}

func rapPCWPFlag(m domain.Measurement) domain.RangeFlag {
	if !m.Valid {
		return domain.FLAG_NA
	}
	switch {
	case m.Value >= 1.0:
		return domain.FLAG_HIGH
	case m.Value >= 0.47:
		return domain.FLAG_BORDERLINE
	default:
		return domain.FLAG_NORMAL
	}
}

func paComplianceFlag(m domain.Measurement) domain.RangeFlag {
	if !m.Valid {
		return domain.FLAG_NA
	}
	switch {
	case m.Value < 2.15:
		return domain.FLAG_LOW
	case m.Value < 3.0:
		return domain.FLAG_BORDERLINE
	default:
		return domain.FLAG_NORMAL
	}
}

// cpoFlag bands cardiac power values: below low is low, at or below high is
// normal, above is high. The severe-low cutoff lives in the alert layer,
// not here.
func cpoFlag(m domain.Measurement, low, high float64) domain.RangeFlag {
	if !m.Valid {
		return domain.FLAG_NA
	}
	switch {
	case m.Value < low:
		return domain.FLAG_LOW
	case m.Value <= high:
		return domain.FLAG_NORMAL
	default:
		return domain.FLAG_HIGH
	}
}
