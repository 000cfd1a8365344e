package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading scrape: %v", err)
	}
	return string(body)
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("update", "conflict", 3*time.Millisecond)
	m.ObserveOperation("update", "conflict", 5*time.Millisecond)

	body := scrape(t, m)

	for _, want := range []string{
		`devicescfg_operations_total{operation="update",outcome="conflict"} 2`,
		`devicescfg_operation_duration_seconds_count{operation="update"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestObserveEventAndBoot(t *testing.T) {
	m := New()
	m.ObserveEvent("SettingsUpdated_v1")
	m.ObserveBootNotification("stored")

	body := scrape(t, m)

	for _, want := range []string{
		`devicescfg_events_published_total{event_type="SettingsUpdated_v1"} 1`,
		`devicescfg_boot_notifications_total{result="stored"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodPatch, "/api/v1/devices/{id}", http.StatusNotFound, time.Millisecond)

	want := `devicescfg_http_requests_total{method="PATCH",route="/api/v1/devices/{id}",status="404"} 1`
	if body := scrape(t, m); !strings.Contains(body, want) {
		t.Errorf("scrape missing %q", want)
	}
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	a, b := New(), New()
	a.ObserveEvent("x")

	if strings.Contains(scrape(t, b), `event_type="x"`) {
		t.Error("metrics leaked between registries")
	}
}
