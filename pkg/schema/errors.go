package schema

import "fmt"

// FieldError represents a single field validation failure.
type FieldError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// WarningCode classifies a recoverable normalization problem.
type WarningCode string

const (
	WarnEdgeDropped     WarningCode = "edge_dropped"
	WarnDataReplaced    WarningCode = "data_replaced"
	WarnPayloadMismatch WarningCode = "payload_mismatch"
	WarnFieldIgnored    WarningCode = "field_ignored"
)

// Warning is a problem that was repaired instead of failing the flow.
type Warning struct {
	Code   WarningCode `json:"code" yaml:"code"`
	Path   string      `json:"path" yaml:"path"`
	Reason string      `json:"reason" yaml:"reason"`

	// EdgeID is set for edge warnings when the edge had an id.
	EdgeID string `json:"edge_id,omitempty" yaml:"edge_id,omitempty"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}
