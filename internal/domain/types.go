// Package domain contains core business entities and types for right heart
// catheterization (RHC) hemodynamic assessment and pulmonary hypertension
// classification following ESC/ERS guideline hemodynamic definitions.
//
// Reference: Humbert et al. (2022) ESC/ERS Guidelines for the diagnosis and
// treatment of pulmonary hypertension. Eur Heart J. 43(38):3618-3731.
package domain

import "errors"

// PHGroup represents the ESC/ERS hemodynamic phenotype of pulmonary
// hypertension. These categories follow the guideline definitions and
// represent the hemodynamic pattern of the catheterization study.
//
// Reference: ESC/ERS 2022 Guidelines, hemodynamic definitions table
type PHGroup string

const (
	NO_PH               PHGroup = "NO_PH"
	PRE_CAPILLARY       PHGroup = "PRE_CAPILLARY"
	ISOLATED_POST_CAP   PHGroup = "ISOLATED_POST_CAPILLARY"
	COMBINED_PRE_POST   PHGroup = "COMBINED_PRE_POST_CAPILLARY"
	UNCLASSIFIED_PH     PHGroup = "UNCLASSIFIED_PH"
	INDETERMINATE_GROUP PHGroup = "INDETERMINATE"
)

// SeverityTier represents the magnitude of pulmonary vascular resistance
// elevation within a PH group.
type SeverityTier string

const (
	SEVERITY_NONE     SeverityTier = "NONE"
	SEVERITY_MILD     SeverityTier = "MILD"
	SEVERITY_MODERATE SeverityTier = "MODERATE"
	SEVERITY_SEVERE   SeverityTier = "SEVERE"
	SEVERITY_UNKNOWN  SeverityTier = "UNKNOWN"
)

// ShuntSignificance represents the clinical significance of an intracardiac
// shunt derived from the Qp/Qs ratio.
type ShuntSignificance string

const (
	SHUNT_NONE          ShuntSignificance = "NONE"
	SHUNT_SMALL         ShuntSignificance = "SMALL"
	SHUNT_MODERATE      ShuntSignificance = "MODERATE"
	SHUNT_LARGE         ShuntSignificance = "LARGE"
	SHUNT_INDETERMINATE ShuntSignificance = "INDETERMINATE"
)

// ShuntDirection represents the suggested direction of intracardiac flow.
type ShuntDirection string

const (
	SHUNT_LEFT_TO_RIGHT ShuntDirection = "LEFT_TO_RIGHT"
	SHUNT_RIGHT_TO_LEFT ShuntDirection = "RIGHT_TO_LEFT"
	SHUNT_BALANCED      ShuntDirection = "BALANCED"
	SHUNT_UNKNOWN       ShuntDirection = "UNKNOWN"
)

// RangeFlag represents where a derived value falls relative to its
// reference band. Used for per-parameter annotation in reports.
type RangeFlag string

const (
	FLAG_LOW        RangeFlag = "LOW"
	FLAG_NORMAL     RangeFlag = "NORMAL"
	FLAG_HIGH       RangeFlag = "HIGH"
	FLAG_BORDERLINE RangeFlag = "BORDERLINE"
	FLAG_NA         RangeFlag = "N/A"
)

// COSource identifies which cardiac output measurement drives downstream
// derived values when both methods are available.
type COSource string

const (
	CO_FICK           COSource = "FICK"
	CO_THERMODILUTION COSource = "THERMODILUTION"
)

// Validation errors for clinical data integrity
var (
	ErrInvalidPHGroup  = errors.New("invalid ESC/ERS PH group")
	ErrInvalidSeverity = errors.New("invalid severity tier")
	ErrInvalidShunt    = errors.New("invalid shunt significance")
)

// IsValid validates that the PHGroup is one of the ESC/ERS hemodynamic
// phenotypes. Only valid groups may be used in clinical reporting.
func (g PHGroup) IsValid() bool {
	switch g {
	case NO_PH, PRE_CAPILLARY, ISOLATED_POST_CAP, COMBINED_PRE_POST, UNCLASSIFIED_PH, INDETERMINATE_GROUP:
		return true
	default:
		return false
	}
}

// String returns the string representation of the PH group.
func (g PHGroup) String() string {
	return string(g)
}

// ClinicalDescription returns a human-readable description of the phenotype
// for clinical reporting.
func (g PHGroup) ClinicalDescription() string {
	switch g {
	case NO_PH:
		return "No pulmonary hypertension by ESC/ERS hemodynamics (mPAP <= 20 mmHg)"
	case PRE_CAPILLARY:
		return "Pre-capillary pulmonary hypertension (mPAP > 20, PCWP <= 15, PVR > 2 WU)"
	case ISOLATED_POST_CAP:
		return "Isolated post-capillary pulmonary hypertension (IpcPH; mPAP > 20, PCWP > 15, PVR <= 2 WU)"
	case COMBINED_PRE_POST:
		return "Combined post- and pre-capillary pulmonary hypertension (CpcPH; mPAP > 20, PCWP > 15, PVR > 2 WU)"
	case UNCLASSIFIED_PH:
		return "PH present with PCWP <= 15 but PVR <= 2 WU (borderline/flow-related; interpret clinically)"
	case INDETERMINATE_GROUP:
		return "Unable to classify PH (missing or invalid inputs)"
	default:
		return "Unknown phenotype"
	}
}

// RequiresClinicalAction reports whether the phenotype warrants specialist
// follow-up. Conservative for unknown values.
func (g PHGroup) RequiresClinicalAction() bool {
	switch g {
	case NO_PH:
		return false
	case PRE_CAPILLARY, ISOLATED_POST_CAP, COMBINED_PRE_POST, UNCLASSIFIED_PH:
		return true
	default:
		return true
	}
}

// LogFields returns structured logging fields for audit trails.
func (g PHGroup) LogFields() map[string]any {
	return map[string]any{
		"ph_group":        string(g),
		"description":     g.ClinicalDescription(),
		"is_valid":        g.IsValid(),
		"requires_action": g.RequiresClinicalAction(),
	}
}

// IsValid validates the severity tier.
func (s SeverityTier) IsValid() bool {
	switch s {
	case SEVERITY_NONE, SEVERITY_MILD, SEVERITY_MODERATE, SEVERITY_SEVERE, SEVERITY_UNKNOWN:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity tier.
func (s SeverityTier) String() string {
	return string(s)
}

// IsValid validates the shunt significance category.
func (s ShuntSignificance) IsValid() bool {
	switch s {
	case SHUNT_NONE, SHUNT_SMALL, SHUNT_MODERATE, SHUNT_LARGE, SHUNT_INDETERMINATE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the shunt significance.
func (s ShuntSignificance) String() string {
	return string(s)
}

// String returns the string representation of the shunt direction.
func (d ShuntDirection) String() string {
	return string(d)
}

// String returns the string representation of the range flag.
func (f RangeFlag) String() string {
	return string(f)
}

// String returns the string representation of the CO source.
func (s COSource) String() string {
	return string(s)
}
