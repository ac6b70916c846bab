package service

import (
	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// fallbackStatement is the safe default for any combination the tables do
// not map. Deliberate: an unmapped phenotype gets a referral, not an error.
const fallbackStatement = "Refer for specialist hemodynamic review: complete work-up (repeat measures, volume status, echo/CTEPH screen, lung/left-heart evaluation) and manage in a specialist setting."

// generalSupportive applies to every phenotype with PH present.
var generalSupportive = []string{
	"General/supportive (as appropriate): diuretics for congestion/right HF; oxygen if hypoxaemic; supervised rehab/exercise when stable; vaccinations; manage comorbidities; consider PH expert-centre referral.",
}

// groupStatements is the base guidance table keyed by hemodynamic phenotype.
// Text follows ESC/ERS-aligned, phenotype-based high-level options; it is a
// data table so clinicians can audit and extend it without touching logic.
var groupStatements = map[domain.PHGroup][]string{
	domain.NO_PH: {
		"No haemodynamic PH (mPAP <= 20): treat underlying condition; follow clinically.",
	},
	domain.PRE_CAPILLARY: {
		"Pre-capillary PH: complete diagnostic work-up to define PH group (PAH vs lung/hypoxia vs CTEPH vs others) before targeted therapy.",
		"If PAH (Group 1) confirmed: risk-based therapy, often initial dual oral combination (ERA + PDE5 inhibitor) for low/intermediate risk; escalate by follow-up risk assessment.",
		"If CTEPH suspected/confirmed: lifelong anticoagulation; refer to CTEPH team for operability assessment (PEA if operable, BPA if inoperable/residual; riociguat for symptomatic inoperable or persistent/recurrent PH after PEA).",
		"If PH due to lung disease/hypoxia: optimize lung disease and hypoxaemia; PAH drugs generally not recommended in non-severe cases; individualized decisions in severe cases at expert centre.",
	},
	domain.ISOLATED_POST_CAP: {
		"Post-capillary PH (IpcPH; PH-LHD): optimize left-heart disease/valvular management first (GDMT, volume control, rhythm/ischemia/valve strategy as indicated).",
		"PAH-approved drugs are generally not recommended in PH due to left heart disease; reassess haemodynamics after optimization when it changes management.",
	},
	domain.COMBINED_PRE_POST: {
		"Post-capillary PH with pre-capillary component (CpcPH): optimize left-heart disease first; consider PH/HF expert-centre referral, especially with RV dysfunction or advanced HF.",
		"PAH-approved drugs are not routinely recommended in PH-LHD; any targeted therapy should be individualized within an expert centre and appropriate diagnostic context.",
	},
	domain.UNCLASSIFIED_PH: {
		"Haemodynamic pattern borderline (PH with PCWP <= 15 and PVR <= 2): repeat measures and volume assessment; interpret in clinical context before assigning a phenotype.",
	},
}

// severityKey indexes the severity overlay table.
type severityKey struct {
	Group    domain.PHGroup
	Severity domain.SeverityTier
}

// severityStatements adds tier-specific guidance on top of the group base.
var severityStatements = map[severityKey][]string{
	{domain.PRE_CAPILLARY, domain.SEVERITY_SEVERE}: {
		"Severe haemodynamics (PVR >= 5 WU): consider initial triple therapy including parenteral prostacyclin (i.v./s.c.) in an expert centre; consider transplant evaluation if inadequate response.",
	},
	{domain.COMBINED_PRE_POST, domain.SEVERITY_SEVERE}: {
		"PVR >= 5 WU suggests severe pulmonary vascular disease: prioritize expert-centre management; consider advanced HF pathways (including transplant/LVAD evaluation where clinically appropriate).",
	},
}

// shuntStatements adds guidance driven by shunt significance, independent of
// the PH phenotype.
var shuntStatements = map[domain.ShuntSignificance][]string{
	domain.SHUNT_MODERATE: {
		"Moderate shunt (Qp/Qs 1.5-2.0): complete anatomic work-up (echo with agitated saline/TEE, cross-sectional imaging) to localize the defect and assess repair candidacy.",
	},
	domain.SHUNT_LARGE: {
		"Significant shunt (Qp/Qs > 2.0): refer to a congenital/structural heart team; defect closure evaluation is indicated unless pulmonary vascular resistance precludes it.",
	},
}

// RecommendationEngine maps a classification to ordered guidance statements
// by table lookup only. No clinical judgment beyond the tables.
type RecommendationEngine struct {
	logger *logrus.Logger
}

// NewRecommendationEngine creates a new recommendation engine.
func NewRecommendationEngine(logger *logrus.Logger) *RecommendationEngine {
	return &RecommendationEngine{logger: logger}
}

// Recommend assembles the ordered guidance list for a classification.
// Unmapped combinations yield the specialist-review fallback.
func (r *RecommendationEngine) Recommend(c *domain.Classification) *domain.Recommendation {
	rec := &domain.Recommendation{Statements: make([]string, 0, 8)}

	base, ok := groupStatements[c.Group]
	if !ok {
		rec.Statements = append(rec.Statements, fallbackStatement)
		rec.FallbackUsed = true
	} else {
		if c.Group != domain.NO_PH {
			rec.Statements = append(rec.Statements, generalSupportive...)
		}
		rec.Statements = append(rec.Statements, base...)
		rec.Statements = append(rec.Statements, severityStatements[severityKey{c.Group, c.Severity}]...)
	}

	rec.Statements = append(rec.Statements, shuntStatements[c.ShuntSignificance]...)

	r.logger.WithFields(logrus.Fields{
		"ph_group":      c.Group.String(),
		"severity":      c.Severity.String(),
		"statements":    len(rec.Statements),
		"fallback_used": rec.FallbackUsed,
	}).Debug("Assembled recommendations")

	return rec
}
