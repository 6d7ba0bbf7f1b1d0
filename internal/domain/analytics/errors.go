package analytics

import "fmt"

// ValidationError reports malformed input at the write boundary. The data
// point is rejected synchronously and never partially recorded.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsolationViolation is an internal defect class: a storage operation was
// attempted without a bound tenant filter. It is fatal for the operation
// and raised to the alert channel, never silently corrected.
type IsolationViolation struct {
	Operation string
}

func NewIsolationViolation(operation string) *IsolationViolation {
	return &IsolationViolation{Operation: operation}
}

func (e *IsolationViolation) Error() string {
	return fmt.Sprintf("tenant isolation violation in %s: query constructed without tenant scope", e.Operation)
}

// EntitlementError reports a request for a feature outside the tenant's
// subscription tier. Distinct from "no data": an entitled caller with no
// data gets an empty-but-present result instead.
type EntitlementError struct {
	Feature string
	Tier    string
}

func NewEntitlementError(feature, tier string) *EntitlementError {
	return &EntitlementError{Feature: feature, Tier: tier}
}

func (e *EntitlementError) Error() string {
	return fmt.Sprintf("feature %q not available on tier %q", e.Feature, e.Tier)
}

// AggregationConflict reports a recomputation that produced a different
// value than previously stored for the same key. With a backfill
// acknowledgment this is expected late-arriving data; without one it
// indicates a correctness bug and is logged distinctly.
type AggregationConflict struct {
	TenantID      string
	Platform      Platform
	MetricName    string
	PeriodDate    string
	StoredValue   float64
	ComputedValue float64
	Acknowledged  bool // true when the recompute was an explicit backfill
}

func (e *AggregationConflict) Error() string {
	return fmt.Sprintf("aggregation conflict for %s/%s/%s on %s: stored %g, recomputed %g",
		e.TenantID, e.Platform, e.MetricName, e.PeriodDate, e.StoredValue, e.ComputedValue)
}
