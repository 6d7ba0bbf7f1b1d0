// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/gin-gonic/gin"
)

// respondError maps domain error classes to HTTP status codes
func respondError(c *gin.Context, err error) {
	var validationErr *analytics.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
		return
	}

	var entitlementErr *analytics.EntitlementError
	if errors.As(err, &entitlementErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": entitlementErr.Error(), "feature": entitlementErr.Feature})
		return
	}

	var isolationErr *analytics.IsolationViolation
	if errors.As(err, &isolationErr) {
		// Never leak the violating operation to the caller
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// defaultRangeDays is the dashboard window when no from/to is given
const defaultRangeDays = 30

// parseTimeRange reads from/to query params as period dates. Missing
// params default to the trailing window ending today.
func parseTimeRange(c *gin.Context) (analytics.TimeRange, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -defaultRangeDays)

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(analytics.PeriodDateLayout, from)
		if err != nil {
			return analytics.TimeRange{}, analytics.NewValidationError("from", "expected YYYY-MM-DD")
		}
		start = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(analytics.PeriodDateLayout, to)
		if err != nil {
			return analytics.TimeRange{}, analytics.NewValidationError("to", "expected YYYY-MM-DD")
		}
		end = parsed.AddDate(0, 0, 1) // inclusive end day
	}

	tr := analytics.TimeRange{Start: start, End: end}
	return tr, tr.Validate()
}

// parsePlatforms splits a comma-separated platform filter, empty means all
func parsePlatforms(raw string) []analytics.Platform {
	if raw == "" {
		return nil
	}
	var platforms []analytics.Platform
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			platforms = append(platforms, analytics.Platform(part))
		}
	}
	return platforms
}
