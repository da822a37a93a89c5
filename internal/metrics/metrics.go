package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"pcsummary/internal/summary"
)

// Metrics holds the gauges published for one processing pass.
type Metrics struct {
	registry  *prometheus.Registry
	alerts    *prometheus.GaugeVec
	standards *prometheus.GaugeVec
	policies  *prometheus.GaugeVec
}

// New creates gauges on a private registry labelled with the customer.
func New(customer string) *Metrics {
	constLabels := prometheus.Labels{"customer": customer}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pcsummary_alerts",
			Help:        "Alert counters from the last processing pass",
			ConstLabels: constLabels,
		}, []string{"counter"}),
		standards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pcsummary_compliance_standard_alerts",
			Help:        "Alerts per compliance standard and policy severity",
			ConstLabels: constLabels,
		}, []string{"standard", "severity"}),
		policies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pcsummary_policy_alerts",
			Help:        "Alerts per policy name",
			ConstLabels: constLabels,
		}, []string{"policy"}),
	}
	m.registry.MustRegister(m.alerts, m.standards, m.policies)
	return m
}

// Observe sets every gauge from s.
func (m *Metrics) Observe(s *summary.Summary) {
	set := func(counter string, v int) {
		m.alerts.WithLabelValues(counter).Set(float64(v))
	}
	set("total", s.TotalAlerts)
	for status, v := range s.Alerts.ByStatus {
		set(status, v)
	}
	set("resolved_deleted", s.Alerts.ResolvedDeleted)
	set("resolved_updated", s.Alerts.ResolvedUpdated)
	for severity, v := range s.Alerts.BySeverity {
		set("resolved_"+severity, v)
	}
	set("shiftable", s.Alerts.Shiftable)
	set("remediable", s.Alerts.Remediable)
	for label, v := range s.PolicyCounts {
		set("policy_"+label, v)
	}

	for name, t := range s.Standards() {
		m.standards.WithLabelValues(name, "high").Set(float64(t.High))
		m.standards.WithLabelValues(name, "medium").Set(float64(t.Medium))
		m.standards.WithLabelValues(name, "low").Set(float64(t.Low))
		for severity, v := range t.Other {
			m.standards.WithLabelValues(name, severity).Set(float64(v))
		}
	}

	for name, t := range s.ByPolicy {
		m.policies.WithLabelValues(name).Set(float64(t.AlertCount))
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the gauges in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
