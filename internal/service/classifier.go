package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// ClassificationEngine applies the ESC/ERS hemodynamic decision rules to the
// derived parameters. Rules are held as an ordered list and evaluated in
// fixed priority order; the first matching rule wins. Order matters because
// the PCWP/PVR ranges overlap across the phenotypes.
type ClassificationEngine struct {
	logger *logrus.Logger
	rules  []phenotypeRule
}

// phenotypeRule is a single tagged predicate -> category rule.
type phenotypeRule struct {
	Code        string
	Description string
	Group       domain.PHGroup
	Matches     func(f *ruleFacts) bool
}

// ruleFacts is the fact set the phenotype rules evaluate against.
type ruleFacts struct {
	MPAP     float64
	PCWP     float64
	PVR      float64
	PVRValid bool
}

// NewClassificationEngine creates a classification engine with the ESC/ERS
// rule set.
func NewClassificationEngine(logger *logrus.Logger) *ClassificationEngine {
	e := &ClassificationEngine{logger: logger}
	e.initializeRules()
	return e
}

// initializeRules installs the ordered ESC/ERS phenotype rules.
func (e *ClassificationEngine) initializeRules() {
	e.rules = []phenotypeRule{
		{
			Code:        "ESC-1",
			Description: "No PH: mPAP <= 20 mmHg",
			Group:       domain.NO_PH,
			Matches:     func(f *ruleFacts) bool { return f.MPAP <= 20 },
		},
		{
			Code:        "ESC-2",
			Description: "PH present but PVR not computable",
			Group:       domain.INDETERMINATE_GROUP,
			Matches:     func(f *ruleFacts) bool { return !f.PVRValid },
		},
		{
			Code:        "ESC-3",
			Description: "Pre-capillary PH: PCWP <= 15, PVR > 2 WU",
			Group:       domain.PRE_CAPILLARY,
			Matches:     func(f *ruleFacts) bool { return f.PCWP <= 15 && f.PVR > 2 },
		},
		{
			Code:        "ESC-4",
			Description: "PH with PCWP <= 15 but PVR <= 2 WU (borderline/flow-related)",
			Group:       domain.UNCLASSIFIED_PH,
			Matches:     func(f *ruleFacts) bool { return f.PCWP <= 15 && f.PVR <= 2 },
		},
		{
			Code:        "ESC-5",
			Description: "Combined post- and pre-capillary PH: PCWP > 15, PVR > 2 WU",
			Group:       domain.COMBINED_PRE_POST,
			Matches:     func(f *ruleFacts) bool { return f.PCWP > 15 && f.PVR > 2 },
		},
		{
			Code:        "ESC-6",
			Description: "Isolated post-capillary PH: PCWP > 15, PVR <= 2 WU",
			Group:       domain.ISOLATED_POST_CAP,
			Matches:     func(f *ruleFacts) bool { return f.PCWP > 15 && f.PVR <= 2 },
		},
	}
}

// Classify applies the ordered rule set to the derived parameters and
// pressures. Pure: same inputs always produce the same classification.
func (e *ClassificationEngine) Classify(derived *domain.DerivedParameters, v *domain.ValidatedInput) *domain.Classification {
	facts := &ruleFacts{
		MPAP:     v.PAMean,
		PCWP:     v.PCWP,
		PVRValid: derived.PVRWood.Valid,
	}
	if facts.PVRValid {
		facts.PVR = derived.PVRWood.Value
	}

	c := &domain.Classification{
		Group:    domain.INDETERMINATE_GROUP,
		Severity: domain.SEVERITY_UNKNOWN,
	}

	for _, rule := range e.rules {
		if rule.Matches(facts) {
			c.Group = rule.Group
			c.RuleCode = rule.Code
			break
		}
	}

	c.Severity = e.severityTier(c.Group, derived.PVRWood)
	c.ShuntDirection, c.ShuntSignificance = e.shuntSignificance(derived.QpQs)
	c.Summary = e.summarize(c, facts)
	c.ShuntSummary = e.summarizeShunt(c, derived.QpQs)

	e.logger.WithFields(logrus.Fields{
		"rule_code": c.RuleCode,
		"ph_group":  c.Group.String(),
		"severity":  c.Severity.String(),
		"shunt":     c.ShuntSignificance.String(),
	}).Info("Completed ESC/ERS classification")

	return c
}

// severityTier bands the PVR magnitude. Ordered bands in Wood units:
// none <= 2, mild (2, 3], moderate (3, 5), severe >= 5.
func (e *ClassificationEngine) severityTier(group domain.PHGroup, pvr domain.Measurement) domain.SeverityTier {
	switch group {
	case domain.NO_PH:
		return domain.SEVERITY_NONE
	case domain.INDETERMINATE_GROUP:
		return domain.SEVERITY_UNKNOWN
	}
	if !pvr.Valid {
		return domain.SEVERITY_UNKNOWN
	}
	switch {
	case pvr.Value <= 2.0:
		return domain.SEVERITY_NONE
	case pvr.Value <= 3.0:
		return domain.SEVERITY_MILD
	case pvr.Value < 5.0:
		return domain.SEVERITY_MODERATE
	default:
		return domain.SEVERITY_SEVERE
	}
}

// shuntSignificance grades the Qp/Qs ratio. Applied only when Qp/Qs was
// computable; otherwise the branch is indeterminate, never a guessed
// category.
func (e *ClassificationEngine) shuntSignificance(qpqs domain.Measurement) (domain.ShuntDirection, domain.ShuntSignificance) {
	if !qpqs.Valid {
		return domain.SHUNT_UNKNOWN, domain.SHUNT_INDETERMINATE
	}

	r := qpqs.Value
	switch {
	case r > 1.05:
		switch {
		case r < 1.5:
			return domain.SHUNT_LEFT_TO_RIGHT, domain.SHUNT_SMALL
		case r <= 2.0:
			return domain.SHUNT_LEFT_TO_RIGHT, domain.SHUNT_MODERATE
		default:
			return domain.SHUNT_LEFT_TO_RIGHT, domain.SHUNT_LARGE
		}
	case r < 0.95:
		if r >= 0.80 {
			return domain.SHUNT_RIGHT_TO_LEFT, domain.SHUNT_MODERATE
		}
		return domain.SHUNT_RIGHT_TO_LEFT, domain.SHUNT_LARGE
	default:
		return domain.SHUNT_BALANCED, domain.SHUNT_NONE
	}
}

// summarize renders the guideline interpretation line for the report.
func (e *ClassificationEngine) summarize(c *domain.Classification, f *ruleFacts) string {
	switch c.Group {
	case domain.NO_PH:
		return fmt.Sprintf("No PH by ESC/ERS hemodynamics: mPAP %.1f mmHg (<= 20).", f.MPAP)
	case domain.PRE_CAPILLARY:
		return fmt.Sprintf("PH present (mPAP > 20). Pre-capillary PH: PCWP %.1f (<=15), PVR %.2f (>2).", f.PCWP, f.PVR)
	case domain.UNCLASSIFIED_PH:
		return "PH present (mPAP > 20) with PCWP <= 15 but PVR <= 2 (borderline/flow-related; interpret clinically)."
	case domain.COMBINED_PRE_POST:
		return fmt.Sprintf("PH present (mPAP > 20). Combined post- and pre-capillary PH (CpcPH): PCWP %.1f (>15), PVR %.2f (>2).", f.PCWP, f.PVR)
	case domain.ISOLATED_POST_CAP:
		return fmt.Sprintf("PH present (mPAP > 20). Isolated post-capillary PH (IpcPH): PCWP %.1f (>15), PVR %.2f (<=2).", f.PCWP, f.PVR)
	default:
		return "Unable to classify PH (missing/invalid inputs)."
	}
}

// summarizeShunt renders the shunt assessment line.
func (e *ClassificationEngine) summarizeShunt(c *domain.Classification, qpqs domain.Measurement) string {
	if !qpqs.Valid {
		return "Shunt: unable to determine (Qp/Qs not available)."
	}
	switch c.ShuntDirection {
	case domain.SHUNT_LEFT_TO_RIGHT:
		return fmt.Sprintf("Shunt: left-to-right shunt suggested (Qp/Qs %.2f > 1). Severity: %s.", qpqs.Value, c.ShuntSignificance)
	case domain.SHUNT_RIGHT_TO_LEFT:
		return fmt.Sprintf("Shunt: right-to-left shunt suggested (Qp/Qs %.2f < 1). Severity: %s.", qpqs.Value, c.ShuntSignificance)
	default:
		return fmt.Sprintf("Shunt: no significant shunt suggested (Qp/Qs %.2f ~ 1).", qpqs.Value)
	}
}
