package summary

import (
	"encoding/json"
	"fmt"

	"pcsummary/pkg/models"
)

// DecodePolicies parses a persisted /policy response.
func DecodePolicies(data []byte) ([]models.Policy, error) {
	var policies []models.Policy
	if err := json.Unmarshal(data, &policies); err != nil {
		return nil, fmt.Errorf("decode policies: %w", err)
	}
	return policies, nil
}

// DecodeAlerts parses a persisted /alert response.
func DecodeAlerts(data []byte) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return alerts, nil
}
