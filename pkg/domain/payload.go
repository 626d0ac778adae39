package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// MessagePayload is the typed view of a message/dialog node's data.
type MessagePayload struct {
	Label   string `json:"label,omitempty" mapstructure:"label"`
	Message string `json:"message" mapstructure:"message"`
	Speaker string `json:"speaker,omitempty" mapstructure:"speaker"`
}

// DecisionPayload is the typed view of a condition/decision node's data.
type DecisionPayload struct {
	Label     string   `json:"label,omitempty" mapstructure:"label"`
	Condition string   `json:"condition,omitempty" mapstructure:"condition"`
	Options   []string `json:"options,omitempty" mapstructure:"options"`
}

// ActionPayload is the typed view of an action node's data.
type ActionPayload struct {
	Label  string `json:"label,omitempty" mapstructure:"label"`
	Action string `json:"action" mapstructure:"action"`
}

// Payload decodes Data into the typed payload matching the node type.
// Unknown types yield a copy of the raw map so model-invented fields survive.
// Keys outside the typed view are ignored here but stay untouched in Data.
func (n Node) Payload() (any, error) {
	switch {
	case n.IsMessage():
		var p MessagePayload
		err := decodePayload(n.Data, &p)
		return p, err
	case n.IsDecision():
		var p DecisionPayload
		err := decodePayload(n.Data, &p)
		return p, err
	case n.Type == NodeTypeAction:
		var p ActionPayload
		err := decodePayload(n.Data, &p)
		return p, err
	default:
		if n.Data == nil {
			return map[string]any{}, nil
		}
		return cloneMap(n.Data), nil
	}
}

func decodePayload(data map[string]any, out any) error {
	if len(data) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
