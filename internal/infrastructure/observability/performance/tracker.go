// Package performance provides lightweight operation tracking for the
// analytics core. Markers record duration and outcome per tenant-scoped
// operation and are surfaced through the perf logging channel.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g. "aggregation:daily", "dashboard:build"
	TenantID  string         `json:"tenantId"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now().UTC()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Tracker records operation markers with a bounded per-tenant history
type Tracker struct {
	mu         sync.RWMutex
	history    map[string][]*Marker // tenantID -> completed markers
	maxHistory int
}

// NewTracker creates a new performance tracker
func NewTracker() *Tracker {
	return &Tracker{
		history:    make(map[string][]*Marker),
		maxHistory: 256,
	}
}

// StartOperation begins tracking a tenant-scoped operation
func (t *Tracker) StartOperation(operation, tenantID string) *Marker {
	return &Marker{
		Operation: operation,
		TenantID:  tenantID,
		StartTime: time.Now().UTC(),
	}
}

// CompleteOperation finalizes a marker and records it in history
func (t *Tracker) CompleteOperation(marker *Marker) {
	marker.Complete()

	t.mu.Lock()
	defer t.mu.Unlock()

	markers := append(t.history[marker.TenantID], marker)
	if len(markers) > t.maxHistory {
		markers = markers[len(markers)-t.maxHistory:]
	}
	t.history[marker.TenantID] = markers
}

// GetRecentMetrics returns completed markers for a tenant within a window
func (t *Tracker) GetRecentMetrics(tenantID string, within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-within)
	var out []Marker
	for _, m := range t.history[tenantID] {
		if m.EndTime.After(cutoff) {
			out = append(out, *m)
		}
	}
	return out
}
