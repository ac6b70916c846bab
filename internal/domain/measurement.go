package domain

import (
	"fmt"
	"math"
)

// nearZero is the guard threshold for division denominators. Anything at or
// below this magnitude marks the dependent value not applicable instead of
// producing Inf/NaN.
const nearZero = 1e-12

// Measurement is a single derived hemodynamic value with its physical unit
// and applicability flag. A Measurement is either valid with a finite value,
// or invalid with a reason explaining which prerequisite was missing.
// Invalid measurements never carry NaN or Inf.
type Measurement struct {
	Value  float64   `json:"value"`
	Unit   string    `json:"unit"`
	Valid  bool      `json:"valid"`
	Reason string    `json:"reason,omitempty"`
	Flag   RangeFlag `json:"flag,omitempty"`
}

// NewMeasurement creates a valid measurement. Non-finite values are demoted
// to not-applicable so NaN can never leak into a report.
func NewMeasurement(value float64, unit string) Measurement {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotApplicable(unit, "computed value is not finite")
	}
	return Measurement{Value: value, Unit: unit, Valid: true}
}

// NotApplicable creates an invalid measurement carrying the reason the value
// could not be computed.
func NotApplicable(unit, reason string) Measurement {
	return Measurement{Unit: unit, Valid: false, Reason: reason}
}

// SafeDiv divides numerator by denominator, returning a measurement marked
// not applicable when the denominator is zero or near zero.
func SafeDiv(numerator, denominator float64, unit, denominatorName string) Measurement {
	if math.Abs(denominator) <= nearZero {
		return NotApplicable(unit, fmt.Sprintf("%s is zero or near zero", denominatorName))
	}
	return NewMeasurement(numerator/denominator, unit)
}

// WithFlag returns a copy of the measurement annotated with a range flag.
// Invalid measurements always carry the N/A flag.
func (m Measurement) WithFlag(flag RangeFlag) Measurement {
	if !m.Valid {
		m.Flag = FLAG_NA
		return m
	}
	m.Flag = flag
	return m
}

// String renders the measurement for reports and log lines.
func (m Measurement) String() string {
	if !m.Valid {
		return fmt.Sprintf("N/A (%s)", m.Reason)
	}
	return fmt.Sprintf("%.2f %s", m.Value, m.Unit)
}
