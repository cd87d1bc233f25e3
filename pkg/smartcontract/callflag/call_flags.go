package callflag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CallFlag represents a call flag.
type CallFlag byte

// Default flags.
const (
	ReadStates CallFlag = 1 << iota
	WriteStates
	AllowCall
	AllowNotify

	States            = ReadStates | WriteStates
	ReadOnly          = ReadStates | AllowCall
	All               = States | AllowCall | AllowNotify
	NoneFlag CallFlag = 0
)

var flagString = map[CallFlag]string{
	ReadStates:  "ReadStates",
	WriteStates: "WriteStates",
	AllowCall:   "AllowCall",
	AllowNotify: "AllowNotify",
	States:      "States",
	ReadOnly:    "ReadOnly",
	All:         "All",
	NoneFlag:    "None",
}

// basicFlags are all flags that are not combinations of other flags.
var basicFlags = []CallFlag{ReadStates, WriteStates, AllowCall, AllowNotify}

// Has returns true iff all bits set in cf are also set in f.
func (f CallFlag) Has(cf CallFlag) bool {
	return f&cf == cf
}

// String implements the fmt.Stringer interface.
func (f CallFlag) String() string {
	if s, ok := flagString[f]; ok {
		return s
	}
	ss := make([]string, 0, 4)
	for _, b := range basicFlags {
		if f.Has(b) {
			ss = append(ss, flagString[b])
			f &^= b
		}
	}
	if f != 0 {
		return "UNKNOWN"
	}
	return strings.Join(ss, ", ")
}

// FromString parses a string and returns corresponding CallFlag.
func FromString(s string) (CallFlag, error) {
	var res CallFlag
	if s == "" {
		return res, fmt.Errorf("empty flag")
	}
	ss := strings.Split(s, ",")
	for _, sub := range ss {
		sub = strings.TrimSpace(sub)
		var found bool
		for f, name := range flagString {
			if name == sub {
				res |= f
				found = true
				break
			}
		}
		if !found {
			return res, fmt.Errorf("unknown flag: %q", sub)
		}
	}
	return res, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f CallFlag) MarshalJSON() ([]byte, error) {
	if f.String() == "UNKNOWN" {
		return nil, fmt.Errorf("can't marshal unknown flag value %d", f)
	}
	return json.Marshal(f.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *CallFlag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	res, err := FromString(s)
	if err != nil {
		return err
	}
	*f = res
	return nil
}
