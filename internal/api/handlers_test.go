package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhc-hemodyn-server/internal/config"
	"github.com/rhc-hemodyn-server/internal/domain"
	"github.com/rhc-hemodyn-server/internal/mailer"
	"github.com/rhc-hemodyn-server/internal/report"
	"github.com/rhc-hemodyn-server/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:              "127.0.0.1",
			Port:              8080,
			RequestsPerSecond: 1000,
			BurstLimit:        1000,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
		Mail:    config.MailConfig{Enabled: false},
		Engine:  domain.DefaultEngineConstants(),
	}
}

func newTestServer(cfg *config.Config) *Server {
	logger := testLogger()
	evaluator := service.NewEvaluationService(logger, cfg.Engine)
	renderer := report.NewRenderer("hemodyn-test", "0.0.0")
	m := mailer.NewMailer(logger, &cfg.Mail)
	return NewServer(logger, cfg, evaluator, renderer, m)
}

func performJSON(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func evaluateBody() map[string]any {
	return map[string]any{
		"patient": map[string]any{
			"label":     "Study A",
			"height_cm": 170,
			"weight_kg": 70,
			"hb":        140,
		},
		"saturations": map[string]any{"sao2": 95},
		"pressures": map[string]any{
			"ra_mean": 8,
			"pa_sys":  55,
			"pa_dia":  25,
			"pa_mean": 35,
			"pcwp":    10,
		},
		"hr":    70,
		"td_co": 4.0,
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(testConfig())

	w := performJSON(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandleEvaluate_Success(t *testing.T) {
	s := newTestServer(testConfig())

	body, err := json.Marshal(evaluateBody())
	require.NoError(t, err)

	w := performJSON(t, s, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Result *domain.Result `json:"result"`
		Report string         `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)

	assert.Equal(t, domain.PRE_CAPILLARY, resp.Result.Classification.Group)
	assert.Equal(t, domain.SEVERITY_SEVERE, resp.Result.Classification.Severity)
	assert.InDelta(t, 6.25, resp.Result.Derived.PVRWood.Value, 1e-9)
	assert.Empty(t, resp.Report, "report only rendered on request")
}

func TestHandleEvaluate_IncludeReport(t *testing.T) {
	s := newTestServer(testConfig())

	payload := evaluateBody()
	payload["include_report"] = true
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := performJSON(t, s, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Report string `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Report, "RHC Hemodynamics Report")
	assert.Contains(t, resp.Report, "Final ESC/ERS PH classification")
}

func TestHandleEvaluate_MalformedJSON(t *testing.T) {
	s := newTestServer(testConfig())

	w := performJSON(t, s, http.MethodPost, "/api/v1/evaluate", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestHandleEvaluate_ValidationFailure(t *testing.T) {
	s := newTestServer(testConfig())

	w := performJSON(t, s, http.MethodPost, "/api/v1/evaluate", []byte("{}"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error      string                   `json:"error"`
		Violations []*domain.FieldViolation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "validation failed", resp.Error)
	assert.NotEmpty(t, resp.Violations)

	fields := make([]string, 0, len(resp.Violations))
	for _, v := range resp.Violations {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "pcwp")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequestsPerSecond = 1
	cfg.Server.BurstLimit = 1
	s := newTestServer(cfg)

	first := performJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := performJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(testConfig())

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflights(t *testing.T) {
	s := newTestServer(testConfig())

	w := performJSON(t, s, http.MethodOptions, "/api/v1/evaluate", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
