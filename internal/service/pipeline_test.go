package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhc-hemodyn-server/internal/domain"
)

func newPipeline() *EvaluationService {
	return NewEvaluationService(testLogger(), domain.DefaultEngineConstants())
}

func TestEvaluate_SeverePreCapillaryCase(t *testing.T) {
	input := validCase()
	input.ThermodilutionCO = f64(4.0)

	result, err := newPipeline().Evaluate(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.CaseID)
	assert.Equal(t, "test case", result.PatientLabel)

	// mPAP 35, PCWP 10, CO 4 -> PVR 6.25 WU.
	require.True(t, result.Derived.PVRWood.Valid)
	assert.InDelta(t, 6.25, result.Derived.PVRWood.Value, 1e-9)
	assert.Equal(t, domain.CO_THERMODILUTION, result.Derived.COSource)

	assert.Equal(t, domain.PRE_CAPILLARY, result.Classification.Group)
	assert.Equal(t, domain.SEVERITY_SEVERE, result.Classification.Severity)
	assert.True(t, result.Classification.PHPresent())

	joined := strings.Join(result.Alerts, "\n")
	assert.Contains(t, joined, "PVR >= 5 WU")
	assert.Contains(t, joined, "TPG >= 15")

	assert.NotEmpty(t, result.Recommendations.Statements)
	assert.False(t, result.Recommendations.FallbackUsed)
}

func TestEvaluate_IsolatedPostCapillaryCase(t *testing.T) {
	input := validCase()
	input.Pressures.PAMean = f64(30)
	input.Pressures.PCWP = f64(20)
	input.ThermodilutionCO = f64(5.0)

	result, err := newPipeline().Evaluate(context.Background(), input)
	require.NoError(t, err)

	require.True(t, result.Derived.PVRWood.Valid)
	assert.InDelta(t, 2.0, result.Derived.PVRWood.Value, 1e-9)
	assert.Equal(t, domain.ISOLATED_POST_CAP, result.Classification.Group)
}

func TestEvaluate_NoPHCase(t *testing.T) {
	input := validCase()
	input.Pressures.PASystolic = f64(28)
	input.Pressures.PADiastolic = f64(12)
	input.Pressures.PAMean = f64(18)

	result, err := newPipeline().Evaluate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.NO_PH, result.Classification.Group)
	assert.Equal(t, domain.SEVERITY_NONE, result.Classification.Severity)
	assert.False(t, result.Classification.PHPresent())
}

func TestEvaluate_NotesSurfaceNormalizations(t *testing.T) {
	input := validCase()
	input.Patient.Hemoglobin = f64(14) // g/dL
	input.Pressures.PAMean = nil      // derived from sys/dia
	input.ThermodilutionCO = f64(4.0) // diverges from Fick

	result, err := newPipeline().Evaluate(context.Background(), input)
	require.NoError(t, err)

	joined := strings.Join(result.Notes, "\n")
	assert.Contains(t, joined, "g/dL")
	assert.Contains(t, joined, "mPAP derived")
	assert.Contains(t, joined, "VO2 estimated")
	assert.Contains(t, joined, "thermodilution used")
}

// A reversed oximetry run admitted by the right-to-left shunt flag leaves
// no interpretable cardiac output, so the study classifies indeterminate
// rather than landing in a phenotype through a negative PVR.
func TestEvaluate_SuspectedRightToLeftShuntWithoutCO(t *testing.T) {
	input := validCase()
	input.Saturations.SaO2 = f64(70)
	input.Saturations.PA = f64(80)
	input.SuspectRightToLeftShunt = true

	result, err := newPipeline().Evaluate(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, result.Derived.COFick.Valid)
	assert.False(t, result.Derived.CO.Valid)
	assert.False(t, result.Derived.PVRWood.Valid)

	assert.Equal(t, domain.INDETERMINATE_GROUP, result.Classification.Group)
	assert.Equal(t, "ESC-2", result.Classification.RuleCode)
	assert.Equal(t, domain.SEVERITY_UNKNOWN, result.Classification.Severity)
	assert.True(t, result.Recommendations.FallbackUsed)
}

func TestEvaluate_ValidationFailure(t *testing.T) {
	_, err := newPipeline().Evaluate(context.Background(), &domain.CaseInput{})
	require.Error(t, err)

	var verrs *domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.NotEmpty(t, verrs.Violations)
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline().Evaluate(ctx, validCase())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// Repeated evaluation of the same study must produce identical clinical
// output. Only the case identity and timing differ between runs.
func TestEvaluate_Idempotent(t *testing.T) {
	pipeline := newPipeline()

	a, err := pipeline.Evaluate(context.Background(), validCase())
	require.NoError(t, err)
	b, err := pipeline.Evaluate(context.Background(), validCase())
	require.NoError(t, err)

	assert.NotEqual(t, a.CaseID, b.CaseID)
	assert.Equal(t, a.Derived, b.Derived)
	assert.Equal(t, a.Classification, b.Classification)
	assert.Equal(t, a.Recommendations, b.Recommendations)
	assert.Equal(t, a.Alerts, b.Alerts)
	assert.Equal(t, a.Notes, b.Notes)
}
