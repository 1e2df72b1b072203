package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/domain/sandbox"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := capability.NewRegistry()
	require.NoError(t, registry.Register(capability.New("double", func(_ context.Context, args []capability.Value) (capability.Value, error) {
		x, _ := args[0].(float64)
		return x * 2, nil
	}).WithDescription("Doubles a number")))

	service := sandbox.NewService(sandbox.Config{
		MemoryLimitMB:     64,
		Timeout:           5 * time.Second,
		MaxConcurrentRuns: 2,
	}, logging.NewNop())

	handlers := NewHandlers(service, registry, logging.NewNop())

	router := gin.New()
	router.GET("/health", handlers.Health)
	router.GET("/capabilities", handlers.ListCapabilities)
	router.POST("/v1/execute", handlers.Execute)
	return router
}

func postExecute(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/execute", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExecuteHappyPath(t *testing.T) {
	router := newTestRouter(t)

	w := postExecute(t, router, gin.H{
		"code": `const v = await double(21); finalAnswer(String(v));`,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res sandbox.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.FinalAnswer)
	assert.Equal(t, "42", *res.FinalAnswer)
	assert.Empty(t, res.Error)
	assert.NotEmpty(t, res.RunID)
}

func TestExecuteRunFailureStillHTTP200(t *testing.T) {
	router := newTestRouter(t)

	w := postExecute(t, router, gin.H{"code": `throw new Error("x");`})
	require.Equal(t, http.StatusOK, w.Code)

	var res sandbox.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, sandbox.ErrorRuntime, res.ErrorKind)
	assert.Contains(t, res.Error, "x")
	assert.Nil(t, res.FinalAnswer)
}

func TestExecuteMissingCode(t *testing.T) {
	router := newTestRouter(t)

	w := postExecute(t, router, gin.H{"timeout_ms": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteUnknownCapability(t *testing.T) {
	router := newTestRouter(t)

	w := postExecute(t, router, gin.H{
		"code":         `finalAnswer("hi");`,
		"capabilities": []string{"nope"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteEmptyCapabilityList(t *testing.T) {
	router := newTestRouter(t)

	w := postExecute(t, router, gin.H{
		"code":         `await double(21);`,
		"capabilities": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res sandbox.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, sandbox.ErrorRuntime, res.ErrorKind, "double must be unreachable when not granted")
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListCapabilities(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/capabilities", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Capabilities []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Capabilities, 1)
	assert.Equal(t, "double", body.Capabilities[0].Name)
}
