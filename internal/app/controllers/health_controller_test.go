package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveHealth(t *testing.T, h *HealthController, path string) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w.Code, body
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewHealthController(map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		"skipped":  nil,
	})

	code, body := serveHealth(t, h, "/health/ready")
	if code != http.StatusServiceUnavailable || body.Status != "DOWN" {
		t.Fatalf("Ready = %d %s, want 503 DOWN", code, body.Status)
	}
	if body.Checks["database"].Status != "UP" {
		t.Errorf("database check = %+v", body.Checks["database"])
	}
	if c := body.Checks["redis"]; c.Status != "DOWN" || c.Message != "Cannot connect to redis" {
		t.Errorf("redis check = %+v", c)
	}
	if _, ok := body.Checks["skipped"]; ok {
		t.Error("nil check should be skipped")
	}
}

func TestHealthAlwaysUp(t *testing.T) {
	t.Setenv("APP_VERSION", "1.2.3")
	h := NewHealthController(map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return errors.New("down") }),
	})

	code, body := serveHealth(t, h, "/health")
	if code != http.StatusOK || body.Status != "UP" || body.Version != "1.2.3" {
		t.Errorf("Health = %d %+v", code, body)
	}

	code, body = serveHealth(t, NewHealthController(nil), "/health/ready")
	if code != http.StatusOK || body.Status != "UP" || len(body.Checks) != 0 {
		t.Errorf("Ready without checks = %d %+v", code, body)
	}
}
