package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/employeedir/core/internal/adapters/repository"
	"github.com/employeedir/core/internal/application/services"
	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/infrastructure/config"
	"github.com/employeedir/core/internal/infrastructure/logger"
)

func testConfig(dataPath string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "EmployeeDirectory", Version: "test", Environment: "test"},
		Server:  config.ServerConfig{Port: 4000, Host: "127.0.0.1"},
		Storage: config.StorageConfig{Backend: config.BackendJSON, Path: dataPath},
		Auth: config.AuthConfig{
			Secret:    "0123456789abcdef0123",
			Issuer:    "employeedir",
			ExpiresIn: time.Hour,
		},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

type testServer struct {
	*Server
	path string
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, logger.NewNop(), mutate...)
}

func newTestServerWithLogger(t *testing.T, appLogger *logger.Logger, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "employees.json")
	cfg := testConfig(path)
	for _, m := range mutate {
		m(cfg)
	}

	srv, err := New(cfg, repository.NewJSONStore(path), prometheus.NewRegistry(), appLogger)
	require.NoError(t, err)
	return &testServer{Server: srv, path: path}
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEmployees(t *testing.T, rec *httptest.ResponseRecorder) []entities.Employee {
	t.Helper()
	var employees []entities.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &employees))
	return employees
}

func TestRootLiveness(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"msg":"Employee API running"}`, rec.Body.String())
}

func TestEmployeeLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/employees", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id":1,"firstName":"Ada","lastName":"Lovelace","title":"Engineer"},
		{"id":2,"firstName":"Grace","lastName":"Hopper","title":"Rear Admiral"}
	]`, rec.Body.String())

	rec = srv.do(http.MethodPost, "/api/employees", `{"firstName":"Alan","lastName":"Turing","title":"Codebreaker"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":3,"firstName":"Alan","lastName":"Turing","title":"Codebreaker"}`, rec.Body.String())

	rec = srv.do(http.MethodDelete, "/api/employees/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = srv.do(http.MethodPut, "/api/employees/2", `{"firstName":"Grace","lastName":"Hopper","title":"Admiral"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"firstName":"Grace","lastName":"Hopper","title":"Admiral"}`, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/employees", "")
	employees := decodeEmployees(t, rec)
	require.Len(t, employees, 2)
	assert.Equal(t, 2, employees[0].ID)
	assert.Equal(t, 3, employees[1].ID)
}

func TestEmployeeErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/employees", `{"firstName":"Alan"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"firstName and lastName are required"}`, rec.Body.String())

	rec = srv.do(http.MethodPut, "/api/employees/99", `{"firstName":"No","lastName":"Body"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())

	rec = srv.do(http.MethodPut, "/api/employees/2", `{"firstName":"","lastName":"Hopper"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/employees/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/employees/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestStorageFailureHidesDetail(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(srv.path), 0o755))
	require.NoError(t, os.WriteFile(srv.path, []byte(`{"employees": "corrupt /secret/path"}`), 0o644))

	rec := srv.do(http.MethodGet, "/api/employees", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Server error"}`, rec.Body.String())

	rec = srv.do(http.MethodPost, "/api/employees", `{"firstName":"Alan","lastName":"Turing"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = srv.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = srv.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	srv.do(http.MethodGet, "/api/employees", "")
	rec := srv.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/employees",status="200"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Metrics.Enabled = false })

	rec := srv.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/", "")
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestWriteGuard(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Auth.Enabled = true })
	body := `{"firstName":"Alan","lastName":"Turing"}`

	rec := srv.do(http.MethodGet, "/api/employees", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay public")

	rec = srv.do(http.MethodPost, "/api/employees", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodPost, "/api/employees", body, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/employees/1", "", "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := services.NewAuthService(srv.config.Auth).Issue("hr-admin")
	require.NoError(t, err)

	rec = srv.do(http.MethodPost, "/api/employees", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RateLimitRequests = 2
		cfg.Security.RateLimitWindow = time.Hour
	})

	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, srv.do(http.MethodGet, "/", "").Code)
}

func TestNewRequiresRegistryWhenMetricsEnabled(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "employees.json"))
	_, err := New(cfg, repository.NewJSONStore(cfg.Storage.Path), nil, logger.NewNop())
	assert.Error(t, err)
}

func TestSwaggerDocs(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/employees/{id}")

	prod := newTestServer(t, func(cfg *config.Config) { cfg.App.Environment = "production" })
	rec = prod.do(http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientErrorsAreNotLoggedAsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := newTestServerWithLogger(t, logger.FromZap(zap.New(core)))

	rec := srv.do(http.MethodDelete, "/api/employees/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodPost, "/api/employees", `{"firstName":"A"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/nothing-here", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	requests := logs.FilterMessage("HTTP request").All()
	require.Len(t, requests, 3)
	assert.Equal(t, int64(404), requests[0].ContextMap()["status_code"])
	assert.Equal(t, int64(400), requests[1].ContextMap()["status_code"])
	for _, entry := range requests {
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.NotContains(t, entry.ContextMap(), "error")
	}
}

func TestStorageFailureIsLoggedOnceWithCause(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := newTestServerWithLogger(t, logger.FromZap(zap.New(core)))
	require.NoError(t, os.MkdirAll(filepath.Dir(srv.path), 0o755))
	require.NoError(t, os.WriteFile(srv.path, []byte(`{"employees": "corrupt"}`), 0o644))

	rec := srv.do(http.MethodGet, "/api/employees", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	failures := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, failures, 1)
	assert.Equal(t, "Internal server error", failures[0].Message)
	assert.Contains(t, failures[0].ContextMap()["error"], "storage load")
	assert.Equal(t, rec.Header().Get("X-Request-Id"), failures[0].ContextMap()["request_id"])

	requests := logs.FilterMessage("HTTP request failed").All()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(500), requests[0].ContextMap()["status_code"])
}
