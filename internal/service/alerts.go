package service

import "github.com/rhc-hemodyn-server/internal/domain"

// alertRule is a single advanced HF/transplant alert threshold.
type alertRule struct {
	Text    string
	Matches func(d *domain.DerivedParameters, v *domain.ValidatedInput) bool
}

// alertRules are evaluated in order; every matching rule contributes one
// alert line. PVR >= 5 suppresses the weaker PVR > 3 alert.
var alertRules = []alertRule{
	{
		Text: "PVR >= 5 WU: SEVERE pulmonary vascular disease / high transplant risk.",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.PVRWood.Valid && d.PVRWood.Value >= 5.0
		},
	},
	{
		Text: "PVR > 3 WU: elevated PVR (Tx/LVAD evaluation often considers reversibility).",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.PVRWood.Valid && d.PVRWood.Value > 3.0 && d.PVRWood.Value < 5.0
		},
	},
	{
		Text: "TPG >= 15 mmHg: elevated transpulmonary gradient (Tx risk marker).",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.TPG.Valid && d.TPG.Value >= 15.0
		},
	},
	{
		Text: "RAP >= 15 mmHg: high right-sided filling pressure.",
		Matches: func(_ *domain.DerivedParameters, v *domain.ValidatedInput) bool {
			return v.RAMean >= 15.0
		},
	},
	{
		Text: "CI < 2.0 L/min/m^2: low cardiac index.",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.CI.Valid && d.CI.Value < 2.0
		},
	},
	{
		Text: "CPO < 0.6 W: severe low-output state.",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.CPO.Valid && d.CPO.Value < 0.6
		},
	},
	{
		Text: "PAPi < 0.9: suggests significant RV dysfunction risk.",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.PAPi.Valid && d.PAPi.Value < 0.9
		},
	},
	{
		Text: "RAP/PCWP >= 1.0: disproportionate RV failure pattern.",
		Matches: func(d *domain.DerivedParameters, _ *domain.ValidatedInput) bool {
			return d.RAPPCWPRatio.Valid && d.RAPPCWPRatio.Value >= 1.0
		},
	},
}

// EvaluateAlerts returns the advanced HF/transplant alerts that fire for the
// derived parameter set.
func EvaluateAlerts(d *domain.DerivedParameters, v *domain.ValidatedInput) []string {
	alerts := make([]string, 0, len(alertRules))
	for _, rule := range alertRules {
		if rule.Matches(d, v) {
			alerts = append(alerts, rule.Text)
		}
	}
	return alerts
}
