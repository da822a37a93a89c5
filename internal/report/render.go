package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"pcsummary/internal/summary"
	"pcsummary/pkg/models"
)

var banner = strings.Repeat("#", 81)

// Renderer writes the tab separated summary sheets.
type Renderer struct {
	out   io.Writer
	label string
}

// NewRenderer creates a renderer. label is the time range label printed in
// every sheet banner.
func NewRenderer(out io.Writer, label string) *Renderer {
	return &Renderer{out: out, label: label}
}

// Render writes the compliance standard, policy and summary sheets. The
// sheets are buffered and written in a single call.
func (r *Renderer) Render(s *summary.Summary) error {
	var buf bytes.Buffer
	r.writeStandards(&buf, s)
	r.writePolicies(&buf, s)
	r.writeTotals(&buf, s)
	if _, err := r.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r *Renderer) writeBanner(buf *bytes.Buffer, sheet string) {
	buf.WriteString("\n")
	buf.WriteString(banner + "\n")
	fmt.Fprintf(buf, "# SHEET: %s, Open and Closed Alerts, %s\n", sheet, r.label)
	buf.WriteString(banner + "\n")
	buf.WriteString("\n")
}

func (r *Renderer) writeStandards(buf *bytes.Buffer, s *summary.Summary) {
	r.writeBanner(buf, "By Compliance Standard")
	writeRow(buf, "Compliance Standard", "High-Severity Alert Count", "Medium-Severity Alert Count", "Low-Severity Alert Count")

	tallies := s.Standards()
	for _, name := range sortedKeys(tallies) {
		t := tallies[name]
		writeRow(buf, name, itoa(t.High), itoa(t.Medium), itoa(t.Low))
	}
}

func (r *Renderer) writePolicies(buf *bytes.Buffer, s *summary.Summary) {
	r.writeBanner(buf, "By Policy")
	writeRow(buf, "policyName", "policySeverity", "policyType", "policyShiftable", "policyRemediable", "alertCount", "policyComplianceStandards")

	for _, name := range sortedKeys(s.ByPolicy) {
		tally := s.ByPolicy[name]
		p, ok := s.Index.Lookup(tally.PolicyID)
		if !ok {
			continue
		}
		writeRow(buf,
			p.Name,
			p.Severity,
			p.Type,
			boolLabel(p.Shiftable),
			boolLabel(p.Remediable),
			itoa(tally.AlertCount),
			`"`+strings.Join(p.ComplianceStandards, ",")+`"`,
		)
	}
}

func (r *Renderer) writeTotals(buf *bytes.Buffer, s *summary.Summary) {
	r.writeBanner(buf, "Summary")

	writeRow(buf, "Compliance Standard with Alerts: Total", itoa(len(s.Standards())))
	buf.WriteString("\n")
	writeRow(buf, "Policies with Alerts: Total", itoa(len(s.ByPolicy)))
	buf.WriteString("\n")

	rows := []struct {
		label string
		value int
	}{
		{"Alerts: Total", s.TotalAlerts},
		{"Alerts: Open", s.Alerts.ByStatus[models.StatusOpen]},
		{"Alerts: Resolved", s.Alerts.ByStatus[models.StatusResolved]},
		{"Alerts: Resolved by Delete", s.Alerts.ResolvedDeleted},
		{"Alerts: Resolved by Update", s.Alerts.ResolvedUpdated},
		{"Alerts: High-Severity", s.Alerts.BySeverity[models.SeverityHigh]},
		{"Alerts: Medium-Severity", s.Alerts.BySeverity[models.SeverityMedium]},
		{"Alerts: Low-Severity", s.Alerts.BySeverity[models.SeverityLow]},
		{"Alerts: Anomaly", s.PolicyCounts[models.PolicyTypeAnomaly]},
		{"Alerts: Config", s.PolicyCounts[models.PolicyTypeConfig]},
		{"Alerts: Network", s.PolicyCounts[models.PolicyTypeNetwork]},
		{"Alerts: with IaC", s.Alerts.Shiftable},
		{"Alerts: with Remediation", s.Alerts.Remediable},
	}
	for _, row := range rows {
		writeRow(buf, row.label, itoa(row.value))
	}
	buf.WriteString("\n")
}

func writeRow(buf *bytes.Buffer, cols ...string) {
	buf.WriteString(strings.Join(cols, "\t"))
	buf.WriteString("\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func boolLabel(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
