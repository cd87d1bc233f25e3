package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/io"
)

// WitnessAction represents an action to perform if the corresponding witness
// condition matches.
type WitnessAction byte

const (
	// WitnessDeny rejects the witness if the condition matches.
	WitnessDeny WitnessAction = 0
	// WitnessAllow approves the witness if the condition matches.
	WitnessAllow WitnessAction = 1
)

// WitnessRule represents a single rule for Rules witness scope.
type WitnessRule struct {
	Action    WitnessAction    `json:"action"`
	Condition WitnessCondition `json:"condition"`
}

// Validate checks the rule's action and condition against the limits
// enforced on the wire (nesting depth and And/Or subcondition counts).
func (w *WitnessRule) Validate() error {
	if _, err := w.Action.actionName(); err != nil {
		return err
	}
	return validateCondition(w.Condition, MaxConditionNesting)
}

type witnessRuleAux struct {
	Action    string          `json:"action"`
	Condition json.RawMessage `json:"condition"`
}

// EncodeBinary implements the Serializable interface.
func (w *WitnessRule) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(w.Action))
	w.Condition.EncodeBinary(bw)
}

// DecodeBinary implements the Serializable interface.
func (w *WitnessRule) DecodeBinary(br *io.BinReader) {
	w.Action = WitnessAction(br.ReadB())
	if br.Err == nil && w.Action != WitnessDeny && w.Action != WitnessAllow {
		br.Err = fmt.Errorf("%w: unknown witness rule action %d", clienterr.ErrInvalidScope, w.Action)
		return
	}
	w.Condition = DecodeBinaryCondition(br)
}

// actionName returns the JSON name for the action.
func (a WitnessAction) actionName() (string, error) {
	switch a {
	case WitnessDeny:
		return "Deny", nil
	case WitnessAllow:
		return "Allow", nil
	default:
		return "", fmt.Errorf("%w: unknown witness rule action %d", clienterr.ErrInvalidScope, a)
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (w *WitnessRule) MarshalJSON() ([]byte, error) {
	name, err := w.Action.actionName()
	if err != nil {
		return nil, err
	}
	cond, err := w.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(&witnessRuleAux{
		Action:    name,
		Condition: cond,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *WitnessRule) UnmarshalJSON(data []byte) error {
	aux := &witnessRuleAux{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var action WitnessAction
	switch aux.Action {
	case "Deny":
		action = WitnessDeny
	case "Allow":
		action = WitnessAllow
	default:
		return fmt.Errorf("%w: unknown witness rule action %q", clienterr.ErrInvalidScope, aux.Action)
	}
	cond, err := UnmarshalConditionJSON(aux.Condition)
	if err != nil {
		return err
	}
	w.Action = action
	w.Condition = cond
	return nil
}
