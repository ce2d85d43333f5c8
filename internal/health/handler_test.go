package health

import (
	"context"
	"strings"
	"testing"
)

func TestRunChecksAggregatesWorstStatus(t *testing.T) {
	h := NewHandler("test")
	h.Register("ffmpeg", func(ctx context.Context) (Status, error) {
		return StatusHealthy, nil
	})
	h.Register("tts-backend", func(ctx context.Context) (Status, error) {
		return StatusDegraded, nil
	})

	resp := h.RunChecks(context.Background())
	if resp.Status != StatusDegraded {
		t.Fatalf("expected overall status degraded, got %s", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("expected 2 check results, got %d", len(resp.Checks))
	}
}

func TestReportIncludesEveryCheckSorted(t *testing.T) {
	resp := Response{
		Status: StatusUnhealthy,
		Checks: map[string]CheckResult{
			"zcache":  {Status: StatusHealthy},
			"afmpeg":  {Status: StatusUnhealthy, Error: "not found on PATH"},
		},
	}
	report := resp.Report()
	aIdx := strings.Index(report, "afmpeg")
	zIdx := strings.Index(report, "zcache")
	if aIdx == -1 || zIdx == -1 {
		t.Fatalf("expected both checks in report, got %q", report)
	}
	if aIdx > zIdx {
		t.Fatalf("expected afmpeg before zcache, got %q", report)
	}
	if !strings.Contains(report, "not found on PATH") {
		t.Fatalf("expected error text in report, got %q", report)
	}
}
