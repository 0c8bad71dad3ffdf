package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/v1/newsletters", 200, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/newsletters", 200, 20*time.Millisecond)
	m.NewsletterPublished(true, 4)
	m.NewsletterPublished(false, 1)
	m.LoginAttempt(false)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/newsletters", "200")); got != 2 {
		t.Errorf("http requests = %v", got)
	}
	if got := testutil.ToFloat64(m.newslettersPublished); got != 1 {
		t.Errorf("published = %v", got)
	}
	if got := testutil.ToFloat64(m.recipientsCreated); got != 5 {
		t.Errorf("recipients = %v", got)
	}
	if got := testutil.ToFloat64(m.loginAttempts.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed logins = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "daycare_newsletters_published_total 1") {
		t.Errorf("exposition missing published counter:\n%s", rec.Body.String())
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ContentCreated("event")
	m.NewsletterPublished(true, 1)
	m.LoginAttempt(true)
}
