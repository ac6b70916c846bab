package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// evaluateRequest is the body of POST /api/v1/evaluate. The case fields map
// one to one to the catheterization worksheet; the delivery fields control
// how the rendered report is returned.
type evaluateRequest struct {
	domain.CaseInput
	EmailTo       string `json:"email_to,omitempty"`
	IncludeReport bool   `json:"include_report,omitempty"`
}

// evaluateResponse wraps the evaluation result with optional rendered output.
type evaluateResponse struct {
	Result *domain.Result `json:"result"`
	Report string         `json:"report,omitempty"`
}

// handleHealth returns service liveness.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleEvaluate runs a full case through validation, derivation,
// classification, and recommendation.
func (s *Server) handleEvaluate(c *gin.Context) {
	requestID := c.GetString("request_id")

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Malformed evaluate request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.evaluator.Evaluate(c.Request.Context(), &req.CaseInput)
	if err != nil {
		var verrs *domain.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "validation failed",
				"violations": verrs.Violations,
			})
			return
		}

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "evaluation failed",
		})
		return
	}

	resp := evaluateResponse{Result: result}

	var rendered string
	if req.IncludeReport || req.EmailTo != "" {
		rendered = s.renderer.Render(result)
	}
	if req.IncludeReport {
		resp.Report = rendered
	}
	if req.EmailTo != "" {
		subject := "Hemodynamic evaluation report: " + result.PatientLabel
		// Delivery outlives the request, so it gets its own context.
		s.mailer.DeliverAsync(context.Background(), req.EmailTo, subject, rendered)
	}

	c.JSON(http.StatusOK, resp)
}
