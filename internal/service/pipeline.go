package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// EvaluationService chains the validation layer, derived-parameter engine,
// classification engine and recommendation engine into the complete
// per-case pipeline. Stateless: each request is computed independently with
// no shared mutable state.
type EvaluationService struct {
	logger      *logrus.Logger
	validator   *ValidatorService
	engine      *DerivedParameterEngine
	classifier  *ClassificationEngine
	recommender *RecommendationEngine
}

// NewEvaluationService creates the full pipeline with the supplied engine
// constants.
func NewEvaluationService(logger *logrus.Logger, constants domain.EngineConstants) *EvaluationService {
	return &EvaluationService{
		logger:      logger,
		validator:   NewValidatorService(logger, constants),
		engine:      NewDerivedParameterEngine(logger, constants),
		classifier:  NewClassificationEngine(logger),
		recommender: NewRecommendationEngine(logger),
	}
}

// Evaluate runs validate -> compute -> classify -> recommend for one case.
// Validation failures carry every violation and abort before computation;
// per-field non-applicability is carried inside the result, never returned
// as an error.
func (s *EvaluationService) Evaluate(ctx context.Context, input *domain.CaseInput) (*domain.Result, error) {
	start := time.Now()
	caseID := uuid.NewString()

	s.logger.WithFields(logrus.Fields{
		"case_id": caseID,
		"label":   input.Patient.Label,
	}).Info("Starting case evaluation")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation aborted: %w", err)
	}

	validated, err := s.validator.Validate(input)
	if err != nil {
		return nil, err
	}

	derived := s.engine.Compute(validated)
	classification := s.classifier.Classify(derived, validated)
	recommendation := s.recommender.Recommend(classification)

	result := &domain.Result{
		CaseID:          caseID,
		Timestamp:       time.Now().UTC(),
		PatientLabel:    input.Patient.Label,
		PatientID:       input.Patient.ID,
		Derived:         *derived,
		Classification:  *classification,
		Recommendations: *recommendation,
		Alerts:          EvaluateAlerts(derived, validated),
		Notes:           buildNotes(validated, derived),
		ProcessingTime:  time.Since(start),
	}

	s.logger.WithFields(logrus.Fields{
		"case_id":         result.CaseID,
		"ph_group":        result.Classification.Group.String(),
		"severity":        result.Classification.Severity.String(),
		"alerts":          len(result.Alerts),
		"processing_time": result.ProcessingTime,
	}).Info("Case evaluation completed")

	return result, nil
}

// buildNotes collects the normalization notes surfaced alongside the result.
func buildNotes(v *domain.ValidatedInput, d *domain.DerivedParameters) []string {
	notes := make([]string, 0, 4)
	if v.HbUnitCorrected {
		notes = append(notes, "Hemoglobin input looked like g/dL; auto-converted to g/L.")
	}
	if v.PAMeanDerived {
		notes = append(notes, "mPAP derived from PA systolic/diastolic (dia + pulse pressure / 3).")
	}
	if v.VO2Source == "estimated" {
		notes = append(notes, "VO2 estimated as 3.5 mL/kg/min x weight (no measured value supplied).")
	}
	if d.CODiscrepant {
		notes = append(notes, fmt.Sprintf("Fick and thermodilution CO differ by %.0f%%; thermodilution used for derived values.", d.CODiscrepancyPct.Value))
	}
	return notes
}
