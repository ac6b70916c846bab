package domain

import (
	"math"
	"strings"
	"testing"
)

func TestNewMeasurement(t *testing.T) {
	m := NewMeasurement(6.25, "WU")

	if !m.Valid {
		t.Fatal("Expected valid measurement")
	}
	if m.Value != 6.25 || m.Unit != "WU" {
		t.Errorf("Expected 6.25 WU, got %v %s", m.Value, m.Unit)
	}
	if m.Reason != "" {
		t.Errorf("Expected empty reason, got %q", m.Reason)
	}
}

func TestNewMeasurement_NonFinite(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeasurement(tt.value, "L/min")
			if m.Valid {
				t.Error("Expected non-finite value to be demoted to not applicable")
			}
			if m.Value != 0 {
				t.Errorf("Expected zero stored value, got %v", m.Value)
			}
			if m.Reason == "" {
				t.Error("Expected a reason on the demoted measurement")
			}
		})
	}
}

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name      string
		num       float64
		den       float64
		wantValid bool
		wantValue float64
	}{
		{"normal division", 25.0, 4.0, true, 6.25},
		{"zero denominator", 25.0, 0.0, false, 0},
		{"near-zero denominator", 25.0, 1e-15, false, 0},
		{"negative denominator", 25.0, -5.0, true, -5.0},
		{"zero numerator", 0.0, 4.0, true, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := SafeDiv(tt.num, tt.den, "WU", "cardiac output")
			if m.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", m.Valid, tt.wantValid)
			}
			if m.Valid && m.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", m.Value, tt.wantValue)
			}
			if !m.Valid && !strings.Contains(m.Reason, "cardiac output") {
				t.Errorf("Expected reason naming the denominator, got %q", m.Reason)
			}
			if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
				t.Error("SafeDiv must never store NaN or Inf")
			}
		})
	}
}

func TestMeasurementWithFlag(t *testing.T) {
	m := NewMeasurement(2.5, "L/min/m^2").WithFlag(FLAG_NORMAL)
	if m.Flag != FLAG_NORMAL {
		t.Errorf("Expected NORMAL flag, got %s", m.Flag)
	}

	na := NotApplicable("L/min/m^2", "missing CO").WithFlag(FLAG_HIGH)
	if na.Flag != FLAG_NA {
		t.Errorf("Invalid measurement must carry the N/A flag, got %s", na.Flag)
	}
}

func TestMeasurementString(t *testing.T) {
	valid := NewMeasurement(6.25, "WU")
	if valid.String() != "6.25 WU" {
		t.Errorf("Expected '6.25 WU', got %q", valid.String())
	}

	invalid := NotApplicable("WU", "cardiac output is zero or near zero")
	if invalid.String() != "N/A (cardiac output is zero or near zero)" {
		t.Errorf("Unexpected rendering: %q", invalid.String())
	}
}
