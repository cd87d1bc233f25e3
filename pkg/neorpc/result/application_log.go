package result

import (
	"encoding/json"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/stackitem"
)

// NotificationEvent is an event emitted by a contract during execution.
type NotificationEvent struct {
	Contract util.Uint160   `json:"contract"`
	Name     string         `json:"eventname"`
	Item     stackitem.Item `json:"-"`
}

type notificationEventAux struct {
	Contract util.Uint160    `json:"contract"`
	Name     string          `json:"eventname"`
	Item     json.RawMessage `json:"state"`
}

// MarshalJSON implements the json.Marshaler interface.
func (ne NotificationEvent) MarshalJSON() ([]byte, error) {
	item, err := stackitem.ToJSONWithTypes(ne.Item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&notificationEventAux{
		Contract: ne.Contract,
		Name:     ne.Name,
		Item:     item,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (ne *NotificationEvent) UnmarshalJSON(data []byte) error {
	aux := new(notificationEventAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	item, err := stackitem.FromJSONWithTypes(aux.Item)
	if err != nil {
		return fmt.Errorf("failed to unmarshal event state: %w", err)
	}
	ne.Contract = aux.Contract
	ne.Name = aux.Name
	ne.Item = item
	return nil
}

// Execution is a result of a single script execution as recorded by the
// node's application log.
type Execution struct {
	Trigger        string
	VMState        string
	GasConsumed    int64
	Stack          []stackitem.Item
	Events         []NotificationEvent
	FaultException string
}

type executionAux struct {
	Trigger        string              `json:"trigger"`
	VMState        string              `json:"vmstate"`
	GasConsumed    int64               `json:"gasconsumed,string"`
	Stack          json.RawMessage     `json:"stack"`
	Events         []NotificationEvent `json:"notifications"`
	FaultException *string             `json:"exception,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (e Execution) MarshalJSON() ([]byte, error) {
	arr := make([]json.RawMessage, len(e.Stack))
	for i := range arr {
		data, err := stackitem.ToJSONWithTypes(e.Stack[i])
		if err != nil {
			return nil, err
		}
		arr[i] = data
	}
	st, err := json.Marshal(arr)
	if err != nil {
		return nil, err
	}
	aux := &executionAux{
		Trigger:     e.Trigger,
		VMState:     e.VMState,
		GasConsumed: e.GasConsumed,
		Stack:       st,
		Events:      e.Events,
	}
	if len(e.FaultException) != 0 {
		aux.FaultException = &e.FaultException
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *Execution) UnmarshalJSON(data []byte) error {
	aux := new(executionAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(aux.Stack, &arr); err == nil {
		st := make([]stackitem.Item, len(arr))
		for i := range arr {
			var err error
			st[i], err = stackitem.FromJSONWithTypes(arr[i])
			if err != nil {
				return fmt.Errorf("failed to unmarshal stack: %w", err)
			}
		}
		e.Stack = st
	}
	e.Trigger = aux.Trigger
	e.VMState = aux.VMState
	e.GasConsumed = aux.GasConsumed
	e.Events = aux.Events
	if aux.FaultException != nil {
		e.FaultException = *aux.FaultException
	}
	return nil
}

// ApplicationLog represents the results of the script executions for a block
// or a transaction.
type ApplicationLog struct {
	Container  util.Uint256 `json:"-"`
	Executions []Execution  `json:"executions"`
}

type applicationLogAux struct {
	TxHash     *util.Uint256     `json:"txid,omitempty"`
	BlockHash  *util.Uint256     `json:"blockhash,omitempty"`
	Executions []json.RawMessage `json:"executions"`
}

// MarshalJSON implements the json.Marshaler interface.
func (l ApplicationLog) MarshalJSON() ([]byte, error) {
	result := &applicationLogAux{
		Executions: make([]json.RawMessage, len(l.Executions)),
	}
	result.TxHash = &l.Container
	for i := range result.Executions {
		data, err := json.Marshal(l.Executions[i])
		if err != nil {
			return nil, err
		}
		result.Executions[i] = data
	}
	return json.Marshal(result)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (l *ApplicationLog) UnmarshalJSON(data []byte) error {
	aux := new(applicationLogAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	switch {
	case aux.TxHash != nil:
		l.Container = *aux.TxHash
	case aux.BlockHash != nil:
		l.Container = *aux.BlockHash
	default:
		return fmt.Errorf("no transaction or block hash")
	}
	l.Executions = make([]Execution, len(aux.Executions))
	for i := range l.Executions {
		if err := json.Unmarshal(aux.Executions[i], &l.Executions[i]); err != nil {
			return fmt.Errorf("failed to unmarshal execution #%d: %w", i, err)
		}
	}
	return nil
}
