package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rhc-hemodyn-server/internal/domain"
)

func TestEvaluateAlerts_None(t *testing.T) {
	d := &domain.DerivedParameters{
		PVRWood:      domain.NewMeasurement(1.5, "WU"),
		TPG:          domain.NewMeasurement(8, "mmHg"),
		CI:           domain.NewMeasurement(2.8, "L/min/m^2"),
		CPO:          domain.NewMeasurement(1.0, "W"),
		PAPi:         domain.NewMeasurement(3.0, ""),
		RAPPCWPRatio: domain.NewMeasurement(0.5, ""),
	}
	v := &domain.ValidatedInput{RAMean: 6}

	assert.Empty(t, EvaluateAlerts(d, v))
}

func TestEvaluateAlerts_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		derived  *domain.DerivedParameters
		input    *domain.ValidatedInput
		fragment string
	}{
		{
			"severe PVR",
			&domain.DerivedParameters{PVRWood: domain.NewMeasurement(5.5, "WU")},
			&domain.ValidatedInput{},
			"PVR >= 5 WU",
		},
		{
			"elevated PVR",
			&domain.DerivedParameters{PVRWood: domain.NewMeasurement(3.5, "WU")},
			&domain.ValidatedInput{},
			"PVR > 3 WU",
		},
		{
			"elevated TPG",
			&domain.DerivedParameters{TPG: domain.NewMeasurement(16, "mmHg")},
			&domain.ValidatedInput{},
			"TPG >= 15",
		},
		{
			"high RAP",
			&domain.DerivedParameters{},
			&domain.ValidatedInput{RAMean: 16},
			"RAP >= 15",
		},
		{
			"low cardiac index",
			&domain.DerivedParameters{CI: domain.NewMeasurement(1.8, "L/min/m^2")},
			&domain.ValidatedInput{},
			"CI < 2.0",
		},
		{
			"severe low output",
			&domain.DerivedParameters{CPO: domain.NewMeasurement(0.5, "W")},
			&domain.ValidatedInput{},
			"CPO < 0.6",
		},
		{
			"RV dysfunction",
			&domain.DerivedParameters{PAPi: domain.NewMeasurement(0.7, "")},
			&domain.ValidatedInput{},
			"PAPi < 0.9",
		},
		{
			"disproportionate RV failure",
			&domain.DerivedParameters{RAPPCWPRatio: domain.NewMeasurement(1.1, "")},
			&domain.ValidatedInput{},
			"RAP/PCWP >= 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := EvaluateAlerts(tt.derived, tt.input)
			assert.Contains(t, strings.Join(alerts, "\n"), tt.fragment)
		})
	}
}

// A PVR at or above 5 must not also fire the weaker elevated-PVR alert.
func TestEvaluateAlerts_SeverePVRSuppressesElevated(t *testing.T) {
	d := &domain.DerivedParameters{PVRWood: domain.NewMeasurement(6.25, "WU")}
	alerts := EvaluateAlerts(d, &domain.ValidatedInput{})

	joined := strings.Join(alerts, "\n")
	assert.Contains(t, joined, "PVR >= 5 WU")
	assert.NotContains(t, joined, "PVR > 3 WU")
}

func TestEvaluateAlerts_InvalidMeasurementsNeverFire(t *testing.T) {
	d := &domain.DerivedParameters{
		PVRWood: domain.NotApplicable("WU", "no CO"),
		TPG:     domain.NotApplicable("mmHg", "no gradient"),
		CI:      domain.NotApplicable("L/min/m^2", "no CO"),
		CPO:     domain.NotApplicable("W", "no systemic pressures"),
		PAPi:    domain.NotApplicable("", "RA mean pressure must be positive"),
	}

	assert.Empty(t, EvaluateAlerts(d, &domain.ValidatedInput{RAMean: 5}))
}
