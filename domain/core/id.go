package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID     ID
	MetricKey ID
	PeriodKey ID
)

// String conversions for domain IDs
func (id RunID) String() string     { return ID(id).String() }
func (id MetricKey) String() string { return ID(id).String() }
func (id PeriodKey) String() string { return ID(id).String() }

// ParseMetricKey parses a string into MetricKey
func ParseMetricKey(s string) (MetricKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("metric key cannot be empty")
	}
	return MetricKey(s), nil
}

// ParsePeriodKey parses a string into PeriodKey
func ParsePeriodKey(s string) (PeriodKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("period key cannot be empty")
	}
	return PeriodKey(s), nil
}
