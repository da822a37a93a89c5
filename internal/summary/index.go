package summary

import (
	"errors"
	"fmt"
	"sort"

	"pcsummary/pkg/models"
)

// ErrMalformedPolicy is returned for a policy without an identifier.
var ErrMalformedPolicy = errors.New("malformed policy")

// PolicyRecord is the normalized form of a policy used during aggregation.
type PolicyRecord struct {
	ID                  string   `json:"policy_id"`
	Name                string   `json:"name"`
	Severity            string   `json:"severity"`
	Type                string   `json:"type"`
	Shiftable           bool     `json:"shiftable"`
	Remediable          bool     `json:"remediable"`
	OpenAlertsCount     int      `json:"open_alerts_count"`
	ComplianceStandards []string `json:"compliance_standards"`
}

// SeverityTally counts alerts by policy severity for one compliance standard.
type SeverityTally struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	// Other holds severities outside high/medium/low.
	Other map[string]int `json:"other,omitempty"`
}

func (t *SeverityTally) add(severity string) {
	switch severity {
	case models.SeverityHigh:
		t.High++
	case models.SeverityMedium:
		t.Medium++
	case models.SeverityLow:
		t.Low++
	default:
		if t.Other == nil {
			t.Other = make(map[string]int)
		}
		t.Other[severity]++
	}
}

// Index is the output of IndexPolicies.
type Index struct {
	Policies  map[string]*PolicyRecord
	Standards map[string]*SeverityTally
}

// Lookup resolves a policy id.
func (ix *Index) Lookup(policyID string) (*PolicyRecord, bool) {
	rec, ok := ix.Policies[policyID]
	return rec, ok
}

// IndexPolicies builds the policy lookup and seeds a zeroed tally for every
// compliance standard referenced by any policy. Duplicate ids overwrite.
func IndexPolicies(policies []models.Policy) (*Index, error) {
	ix := &Index{
		Policies:  make(map[string]*PolicyRecord, len(policies)),
		Standards: make(map[string]*SeverityTally),
	}

	for i, p := range policies {
		if p.PolicyID == "" {
			return nil, fmt.Errorf("%w: policy at index %d has no policyId", ErrMalformedPolicy, i)
		}

		rec := &PolicyRecord{
			ID:                  p.PolicyID,
			Name:                p.Name,
			Severity:            p.Severity,
			Type:                p.PolicyType,
			Shiftable:           contains(p.PolicySubTypes, models.SubTypeBuild),
			Remediable:          p.Remediable,
			OpenAlertsCount:     p.OpenAlertsCount,
			ComplianceStandards: uniqueStandards(p.ComplianceMetadata),
		}
		ix.Policies[p.PolicyID] = rec

		for _, standard := range rec.ComplianceStandards {
			if _, ok := ix.Standards[standard]; !ok {
				ix.Standards[standard] = &SeverityTally{}
			}
		}
	}

	return ix, nil
}

func uniqueStandards(meta []models.ComplianceMetadata) []string {
	if len(meta) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(meta))
	out := make([]string, 0, len(meta))
	for _, m := range meta {
		if _, ok := seen[m.StandardName]; ok {
			continue
		}
		seen[m.StandardName] = struct{}{}
		out = append(out, m.StandardName)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
