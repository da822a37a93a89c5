package models

// Policy is one entry of the /policy response.
type Policy struct {
	PolicyID           string               `json:"policyId"`
	Name               string               `json:"name"`
	Severity           string               `json:"severity"`
	PolicyType         string               `json:"policyType"`
	PolicySubTypes     []string             `json:"policySubTypes"`
	Remediable         bool                 `json:"remediable"`
	OpenAlertsCount    int                  `json:"openAlertsCount"`
	ComplianceMetadata []ComplianceMetadata `json:"complianceMetadata,omitempty"`
}

// ComplianceMetadata tags a policy with a compliance standard.
type ComplianceMetadata struct {
	StandardName string `json:"standardName"`
}

// Severity levels.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Policy types.
const (
	PolicyTypeAnomaly    = "anomaly"
	PolicyTypeAuditEvent = "audit_event"
	PolicyTypeConfig     = "config"
	PolicyTypeNetwork    = "network"
)

// SubTypeBuild marks a policy as applicable to IaC scanning.
const SubTypeBuild = "build"
