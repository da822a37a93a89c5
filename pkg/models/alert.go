package models

// Alert is one entry of the /alert response.
type Alert struct {
	Status string         `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Policy AlertPolicyRef `json:"policy"`
}

// AlertPolicyRef is the policy copy embedded in an alert.
type AlertPolicyRef struct {
	PolicyID   string `json:"policyId"`
	Remediable bool   `json:"remediable"`
}

// Alert statuses.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Resolution reasons.
const (
	ReasonResourceDeleted = "RESOURCE_DELETED"
	ReasonResourceUpdated = "RESOURCE_UPDATED"
)
