package prommetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

var _ badges.Metrics = (*Metrics)(nil)

func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestPrometheusMetrics_RecordLookup(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordLookup(badges.OutcomeSuccess, 20*time.Millisecond)
	metrics.RecordLookup(badges.OutcomeSuccess, 30*time.Millisecond)
	metrics.RecordLookup(badges.OutcomeInvalidID, time.Millisecond)

	family := findFamily(t, reg, "test_lookups_total")
	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		counts[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	if counts[badges.OutcomeSuccess] != 2 {
		t.Errorf("Expected 2 successful lookups, got %v", counts[badges.OutcomeSuccess])
	}
	if counts[badges.OutcomeInvalidID] != 1 {
		t.Errorf("Expected 1 invalid lookup, got %v", counts[badges.OutcomeInvalidID])
	}

	hist := findFamily(t, reg, "test_lookup_duration_seconds")
	if len(hist.GetMetric()) != 2 {
		t.Errorf("Expected 2 duration series, got %d", len(hist.GetMetric()))
	}
}

func TestPrometheusMetrics_RecordTierInference(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordTierInference("exact", "Nitro Gold")
	metrics.RecordTierInference("none", "")

	family := findFamily(t, reg, "test_tier_inferences_total")
	if len(family.GetMetric()) != 2 {
		t.Errorf("Expected 2 series, got %d", len(family.GetMetric()))
	}
}

func TestPrometheusMetrics_RecordGuildScanAndNotification(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordGuildScan(3, true)
	metrics.RecordGuildScan(5, false)
	metrics.RecordNotification(nil)
	metrics.RecordNotification(errors.New("webhook down"))

	scans := findFamily(t, reg, "test_guild_scans_total")
	if len(scans.GetMetric()) != 2 {
		t.Errorf("Expected hit and miss series, got %d", len(scans.GetMetric()))
	}

	checked := findFamily(t, reg, "test_guild_scan_guilds_checked")
	if got := checked.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("Expected 2 samples, got %d", got)
	}

	notifications := findFamily(t, reg, "test_notifications_total")
	for _, m := range notifications.GetMetric() {
		if m.GetCounter().GetValue() != 1 {
			t.Errorf("Expected one notification per status, got %v", m.GetCounter().GetValue())
		}
	}
}
