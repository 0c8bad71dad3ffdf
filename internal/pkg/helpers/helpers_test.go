package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("90s", time.Minute); got != 90*time.Second {
		t.Errorf("ParseDuration(90s) = %v", got)
	}
	if got := ParseDuration("soon", time.Minute); got != time.Minute {
		t.Errorf("ParseDuration(soon) = %v, want default", got)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2021-05-04")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate() = %v", got)
	}
	if _, err := ParseDate("04/05/2021"); err == nil {
		t.Error("expected an error for a non ISO date")
	}
}

func TestParseBoolQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		url     string
		want    bool
		wantErr bool
	}{
		{"/events", true, false},
		{"/events?isActive=false", false, false},
		{"/events?isActive=1", true, false},
		{"/events?isActive=maybe", false, true},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", tt.url, nil)
		got, err := ParseBoolQuery(c, "isActive", true)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("%s: got %v, %v", tt.url, got, err)
		}
	}
}
