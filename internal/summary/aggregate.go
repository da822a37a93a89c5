package summary

import (
	"errors"
	"fmt"

	"pcsummary/pkg/models"
)

// ErrUnknownPolicy is returned when an alert references a policy id that was
// not indexed.
var ErrUnknownPolicy = errors.New("alert references unknown policy")

// PolicyTally counts alerts attributed to one policy name. Policies sharing a
// name collapse into one tally that keeps the first id seen.
type PolicyTally struct {
	PolicyID   string `json:"policy_id"`
	AlertCount int    `json:"alert_count"`
}

// AlertCounts are the alert-driven counters.
type AlertCounts struct {
	ByStatus        map[string]int `json:"by_status"`
	ResolvedDeleted int            `json:"resolved_deleted"`
	ResolvedUpdated int            `json:"resolved_updated"`
	// BySeverity is keyed by the resolved policy's severity and counts every
	// alert whatever its status. It backs the "resolved_<severity>" counters.
	BySeverity map[string]int `json:"by_severity"`
	Shiftable  int            `json:"shiftable"`
	Remediable int            `json:"remediable"`
}

// Summary is the complete counter state of one processing pass.
type Summary struct {
	Index *Index
	// ByPolicy is keyed by policy name.
	ByPolicy map[string]*PolicyTally
	// PolicyCounts shares one map between severity and type labels.
	PolicyCounts map[string]int
	Alerts       AlertCounts
	TotalAlerts  int
}

// Standards returns the per compliance standard tallies.
func (s *Summary) Standards() map[string]*SeverityTally {
	return s.Index.Standards
}

// Aggregate runs one pass over alerts, resolving each against ix. The
// compliance standard tallies in ix are updated in place. Any lookup miss
// aborts the pass and no summary is returned.
func Aggregate(ix *Index, alerts []models.Alert) (*Summary, error) {
	s := &Summary{
		Index:        ix,
		ByPolicy:     make(map[string]*PolicyTally),
		PolicyCounts: make(map[string]int),
		Alerts: AlertCounts{
			ByStatus:   make(map[string]int),
			BySeverity: make(map[string]int),
		},
		TotalAlerts: len(alerts),
	}

	for i, alert := range alerts {
		policy, ok := ix.Lookup(alert.Policy.PolicyID)
		if !ok {
			return nil, fmt.Errorf("%w: alert at index %d has policyId %q", ErrUnknownPolicy, i, alert.Policy.PolicyID)
		}

		tally := s.ByPolicy[policy.Name]
		if tally == nil {
			tally = &PolicyTally{PolicyID: policy.ID}
			s.ByPolicy[policy.Name] = tally
		}
		tally.AlertCount++

		for _, standard := range policy.ComplianceStandards {
			st := ix.Standards[standard]
			if st == nil {
				st = &SeverityTally{}
				ix.Standards[standard] = st
			}
			st.add(policy.Severity)
		}

		s.PolicyCounts[policy.Severity]++
		s.PolicyCounts[policy.Type]++

		s.Alerts.ByStatus[alert.Status]++

		if alert.Reason == models.ReasonResourceDeleted {
			s.Alerts.ResolvedDeleted++
		}
		if alert.Reason == models.ReasonResourceUpdated {
			s.Alerts.ResolvedUpdated++
		}

		s.Alerts.BySeverity[policy.Severity]++

		if policy.Shiftable {
			s.Alerts.Shiftable++
		}
		// The alert's embedded copy decides remediability, not the indexed policy.
		if alert.Policy.Remediable {
			s.Alerts.Remediable++
		}
	}

	return s, nil
}
