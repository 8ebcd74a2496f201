package graph

import (
	"fmt"
	"strings"
)

// Status represents the health status of a node.
type Status int

const (
	// StatusUnknown is the zero value. It marks a node that has never been
	// evaluated or a name absent from a report; it never results from
	// aggregation.
	StatusUnknown Status = iota
	// StatusHealthy indicates the node is functioning normally.
	StatusHealthy
	// StatusDegraded indicates the node is functioning but with issues.
	StatusDegraded
	// StatusUnhealthy indicates the node is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// ParseStatus converts a string form back into a Status.
// Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "unknown":
		return StatusUnknown, nil
	case "healthy":
		return StatusHealthy, nil
	case "degraded":
		return StatusDegraded, nil
	case "unhealthy":
		return StatusUnhealthy, nil
	default:
		return StatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// MarshalText implements encoding.TextMarshaler so statuses serialize as
// their string forms.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// worst returns the more severe of two statuses. Statuses are totally
// ordered Healthy < Degraded < Unhealthy; StatusUnknown sorts below all of
// them and therefore never wins against a concrete status.
func worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Evaluation is the unit result of evaluating one node: a status plus an
// optional human-readable reason.
type Evaluation struct {
	// Status is the effective health status.
	Status Status `json:"status"`

	// Reason explains the status. It is typically set when the status is
	// not healthy or when an intrinsic check failed.
	Reason string `json:"reason,omitempty"`
}

// Healthy creates a healthy evaluation.
func Healthy(reason string) Evaluation {
	return Evaluation{Status: StatusHealthy, Reason: reason}
}

// Degraded creates a degraded evaluation.
func Degraded(reason string) Evaluation {
	return Evaluation{Status: StatusDegraded, Reason: reason}
}

// Unhealthy creates an unhealthy evaluation.
func Unhealthy(reason string) Evaluation {
	return Evaluation{Status: StatusUnhealthy, Reason: reason}
}
