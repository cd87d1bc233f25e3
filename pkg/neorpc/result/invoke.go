package result

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/vm/stackitem"
	"github.com/halyard-dev/neokit/pkg/vm/vmstate"
)

// Invoke represents a code invocation result and is used by several RPC calls
// that invoke functions, scripts and generic bytecode.
type Invoke struct {
	State          string
	GasConsumed    int64
	Script         []byte
	Stack          []stackitem.Item
	FaultException string
	Notifications  []NotificationEvent
	Session        uuid.UUID
}

type invokeAux struct {
	State          string              `json:"state"`
	GasConsumed    int64               `json:"gasconsumed,string"`
	Script         []byte              `json:"script"`
	Stack          json.RawMessage     `json:"stack"`
	FaultException *string             `json:"exception"`
	Notifications  []NotificationEvent `json:"notifications"`
	Session        string              `json:"session,omitempty"`
}

// ExecutionError returns nil if the invocation ended up in the HALT state
// and an ExecutionFailedError carrying the state and the VM exception
// otherwise.
func (r *Invoke) ExecutionError() error {
	if r.State == vmstate.Halt.String() {
		return nil
	}
	return &clienterr.ExecutionFailedError{
		State:     r.State,
		Exception: r.FaultException,
	}
}

// iteratorInterfaceName is a string used to mark the Iterator inside the
// InteropInterface.
const iteratorInterfaceName = "IIterator"

type iteratorAux struct {
	Type      string            `json:"type"`
	Interface string            `json:"interface,omitempty"`
	ID        string            `json:"id,omitempty"`
	Value     []json.RawMessage `json:"iterator,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
}

// Iterator represents a VM iterator identifier. If the server supports
// session-based iterators, ID is set and values can be fetched with
// traverseiterator. Otherwise the server may expand the iterator in place
// filling Values and the Truncated flag.
type Iterator struct {
	// ID represents the iterator ID, non-nil iff the server supports
	// sessions.
	ID *uuid.UUID

	// Values contains deserialized VM iterator values.
	Values    []stackitem.Item
	Truncated bool
}

// MarshalJSON implements the json.Marshaler interface.
func (r Iterator) MarshalJSON() ([]byte, error) {
	var aux iteratorAux
	aux.Type = stackitem.InteropT.String()
	if r.ID != nil {
		aux.Interface = iteratorInterfaceName
		aux.ID = r.ID.String()
	}
	if r.Values != nil {
		value := make([]json.RawMessage, len(r.Values))
		for i := range r.Values {
			var err error
			value[i], err = stackitem.ToJSONWithTypes(r.Values[i])
			if err != nil {
				return nil, err
			}
		}
		aux.Value = value
	}
	aux.Truncated = r.Truncated
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Iterator) UnmarshalJSON(data []byte) error {
	aux := new(iteratorAux)
	err := json.Unmarshal(data, aux)
	if err != nil {
		return err
	}
	if len(aux.Interface) != 0 {
		if aux.Interface != iteratorInterfaceName {
			return fmt.Errorf("unknown InteropInterface: %s", aux.Interface)
		}
		var iID uuid.UUID
		iID, err = uuid.Parse(aux.ID)
		if err != nil {
			return fmt.Errorf("failed to unmarshal iterator ID: %w", err)
		}
		r.ID = &iID
	}
	if aux.Value != nil {
		r.Values = make([]stackitem.Item, len(aux.Value))
		for j := range r.Values {
			r.Values[j], err = stackitem.FromJSONWithTypes(aux.Value[j])
			if err != nil {
				return fmt.Errorf("failed to unmarshal iterator values: %w", err)
			}
		}
	}
	r.Truncated = aux.Truncated
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (r Invoke) MarshalJSON() ([]byte, error) {
	arr := make([]json.RawMessage, len(r.Stack))
	for i := range arr {
		var (
			data []byte
			err  error
		)
		if iter, ok := r.Stack[i].Value().(Iterator); ok && r.Stack[i].Type() == stackitem.InteropT {
			data, err = json.Marshal(iter)
		} else {
			data, err = stackitem.ToJSONWithTypes(r.Stack[i])
		}
		if err != nil {
			return nil, fmt.Errorf("can't marshal stack item #%d: %w", i, err)
		}
		arr[i] = data
	}
	st, err := json.Marshal(arr)
	if err != nil {
		return nil, err
	}
	var sessionID string
	if r.Session != (uuid.UUID{}) {
		sessionID = r.Session.String()
	}
	aux := &invokeAux{
		GasConsumed:   r.GasConsumed,
		Script:        r.Script,
		State:         r.State,
		Stack:         st,
		Notifications: r.Notifications,
		Session:       sessionID,
	}
	if len(r.FaultException) != 0 {
		aux.FaultException = &r.FaultException
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Invoke) UnmarshalJSON(data []byte) error {
	var err error
	aux := new(invokeAux)
	if err = json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Session) != 0 {
		r.Session, err = uuid.Parse(aux.Session)
		if err != nil {
			return fmt.Errorf("failed to parse session ID: %w", err)
		}
	}
	var arr []json.RawMessage
	if err = json.Unmarshal(aux.Stack, &arr); err == nil {
		st := make([]stackitem.Item, len(arr))
		for i := range arr {
			st[i], err = stackitem.FromJSONWithTypes(arr[i])
			if err != nil {
				break
			}
			if st[i].Type() == stackitem.InteropT {
				var iter = Iterator{}
				err = json.Unmarshal(arr[i], &iter)
				if err != nil {
					break
				}
				st[i] = stackitem.NewInterop(iter)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to unmarshal stack: %w", err)
		}
		r.Stack = st
	}
	r.GasConsumed = aux.GasConsumed
	r.Script = aux.Script
	r.State = aux.State
	if aux.FaultException != nil {
		r.FaultException = *aux.FaultException
	}
	r.Notifications = aux.Notifications
	return nil
}
