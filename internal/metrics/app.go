// Package metrics emits application counters through the global telemetry
// system. All helpers are no-ops until telemetry is initialized.
package metrics

import (
	"time"

	"github.com/querygate/querygate/internal/observability"
)

// Metric names following Prometheus conventions.
const (
	AdmissionsTotal      = "app_search_admissions_total"
	SuggestDispatchTotal = "app_suggest_dispatch_total"
	LookupDuration       = "app_lookup_duration_ms"
	HealthCheckTotal     = "app_health_check_total"
)

// RecordAdmission records the outcome of a search admission check.
func RecordAdmission(admitted bool) {
	outcome := "admitted"
	if !admitted {
		outcome = "rejected"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AdmissionsTotal,
			1,
			map[string]string{"outcome": outcome},
		)
	}
}

// RecordSuggestDispatch records a debounced suggestion lookup that actually
// fired (superseded inputs never reach this point).
func RecordSuggestDispatch(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			SuggestDispatchTotal,
			1,
			map[string]string{"status": status},
		)
	}
}

// RecordLookupDuration records how long a lookup took.
func RecordLookupDuration(kind string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			LookupDuration,
			float64(duration.Milliseconds()),
			map[string]string{"kind": kind},
		)
	}
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)
	}
}
