package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "board"},
		JWT:     config.JWTConfig{Secret: "secret", SkipPaths: []string{"/health"}},
		Cors:    config.CorsConfig{AllowedOrigins: []string{"https://app.example.com"}},
		Server:  config.ServerConfig{HTTP: config.HTTPConfig{BodyLimit: "1K"}},
	}
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), Usecases{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"board"}`, rec.Body.String())
}

func TestServer_RoutesRequireAuth(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), Usecases{})

	for _, target := range []string{"/board", "/board/B1/team", "/board/B1/link"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"statusCode":401`, target)
	}
}

func TestServer_CORS(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), Usecases{})

	req := httptest.NewRequest(http.MethodOptions, "/board", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
