package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store keeps raw collected documents by name.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// PolicyDocument names the persisted /policy response for a customer.
func PolicyDocument(customer string) string {
	return customer + "-policies.txt"
}

// AlertDocument names the persisted /alert response for a customer.
func AlertDocument(customer string) string {
	return customer + "-alerts.txt"
}
