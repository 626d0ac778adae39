package schema

import (
	"sort"

	"github.com/aretw0/plotline/pkg/domain"
)

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Validate checks the fields of data that the schema knows about.
// Absent fields are fine (payloads are optional); unknown fields are ignored.
// Errors are returned sorted by key so callers get stable output.
func Validate(schema Schema, data map[string]any) []*FieldError {
	var errs []*FieldError
	for key, typ := range schema {
		value, ok := data[key]
		if !ok {
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &FieldError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Key < errs[j].Key })
	return errs
}

var (
	messageSchema = Schema{
		"label":   String(),
		"message": String(),
		"speaker": String(),
	}
	decisionSchema = Schema{
		"label":     String(),
		"condition": String(),
		"options":   Slice(String()),
	}
	actionSchema = Schema{
		"label":  String(),
		"action": String(),
	}
	baseSchema = Schema{
		"label": String(),
	}
)

// PayloadSchema returns the well-known data fields for a node type.
// Unknown types only constrain "label".
func PayloadSchema(nodeType string) Schema {
	switch nodeType {
	case domain.NodeTypeMessage, domain.NodeTypeDialog:
		return messageSchema
	case domain.NodeTypeCondition, domain.NodeTypeDecision:
		return decisionSchema
	case domain.NodeTypeAction:
		return actionSchema
	default:
		return baseSchema
	}
}
