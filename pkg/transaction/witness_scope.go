package transaction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halyard-dev/neokit/pkg/clienterr"
)

// WitnessScope represents a set of witness flags for a Transaction signer.
type WitnessScope byte

const (
	// None specifies that no contract was witnessed. Only sign the
	// transaction itself, the witness pays fees but is not valid during
	// execution.
	None WitnessScope = 0
	// CalledByEntry means that the witness is only valid in the context of
	// the entry script, expiring on deeper internal invocations. A safe
	// default for NEP-17 transfers.
	CalledByEntry WitnessScope = 0x01
	// CustomContracts restricts the witness to a custom set of contract
	// hashes.
	CustomContracts WitnessScope = 0x10
	// CustomGroups restricts the witness to a custom set of contract
	// group keys.
	CustomGroups WitnessScope = 0x20
	// Rules restricts the witness with a set of witness rules evaluated
	// by the node.
	Rules WitnessScope = 0x40
	// Global allows the witness in all contexts. This cannot be combined
	// with other flags.
	Global WitnessScope = 0x80
)

var scopeName = map[WitnessScope]string{
	None:            "None",
	CalledByEntry:   "CalledByEntry",
	CustomContracts: "CustomContracts",
	CustomGroups:    "CustomGroups",
	Rules:           "WitnessRules",
	Global:          "Global",
}

// orderedScopes are all non-None flags in their serialization order.
var orderedScopes = []WitnessScope{CalledByEntry, CustomContracts, CustomGroups, Rules, Global}

// ScopesFromString converts a string of comma-separated scopes to a set of
// scopes (case-sensitive). The string can combine several scopes, e.g.
// "CalledByEntry,CustomGroups". An empty string is an error.
func ScopesFromString(s string) (WitnessScope, error) {
	var result WitnessScope
	dict := make(map[string]WitnessScope, len(scopeName))
	for scope, name := range scopeName {
		dict[name] = scope
	}
	var isGlobal bool
	for _, scopeStr := range strings.Split(s, ",") {
		scope, ok := dict[strings.TrimSpace(scopeStr)]
		if !ok {
			return result, fmt.Errorf("%w: invalid witness scope: %v", clienterr.ErrInvalidScope, scopeStr)
		}
		if isGlobal && scope != Global {
			return result, fmt.Errorf("%w: Global scope can not be combined with other scopes", clienterr.ErrInvalidScope)
		}
		result |= scope
		if scope == Global {
			isGlobal = true
			if result != Global {
				return result, fmt.Errorf("%w: Global scope can not be combined with other scopes", clienterr.ErrInvalidScope)
			}
		}
	}
	return result, nil
}

// ScopesFromByte converts a byte to a set of scopes, rejecting unknown bits
// and invalid combinations.
func ScopesFromByte(b byte) (WitnessScope, error) {
	var res = WitnessScope(b)
	if res&^(CalledByEntry|CustomContracts|CustomGroups|Rules|Global) != 0 {
		return 0, fmt.Errorf("%w: unknown scope bits in %#x", clienterr.ErrInvalidScope, b)
	}
	if res&Global != 0 && res != Global {
		return 0, fmt.Errorf("%w: Global scope can not be combined with other scopes", clienterr.ErrInvalidScope)
	}
	return res, nil
}

// String implements the fmt.Stringer interface.
func (s WitnessScope) String() string {
	if s == None {
		return scopeName[None]
	}
	var parts = make([]string, 0, 5)
	for _, scope := range orderedScopes {
		if s&scope != 0 {
			parts = append(parts, scopeName[scope])
			s &^= scope
		}
	}
	if s != 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON implements the json.Marshaler interface.
func (s WitnessScope) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *WitnessScope) UnmarshalJSON(data []byte) error {
	var js string
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	scopes, err := ScopesFromString(js)
	if err != nil {
		return err
	}
	*s = scopes
	return nil
}
