// Package messaging defines interfaces for real-time communication.
package messaging

import "time"

// LiveEvent is one message pushed over the tenant's live feed
type LiveEvent struct {
	Event     string         `json:"event"`
	TenantID  string         `json:"tenantId"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Broadcaster defines the interface for publishing live events to tenant-scoped clients.
type Broadcaster interface {
	Broadcast(tenantID string, event *LiveEvent)
	ConnectionCount(tenantID string) int
}
