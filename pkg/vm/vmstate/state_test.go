package vmstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFromString(t *testing.T) {
	var (
		s   State
		err error
	)

	s, err = FromString("HALT")
	assert.NoError(t, err)
	assert.Equal(t, Halt, s)

	s, err = FromString("FAULT")
	assert.NoError(t, err)
	assert.Equal(t, Fault, s)

	s, err = FromString("NONE")
	assert.NoError(t, err)
	assert.Equal(t, None, s)

	s, err = FromString("HALT, BREAK")
	assert.NoError(t, err)
	assert.Equal(t, Halt|Break, s)

	s, err = FromString("FAULT, BREAK")
	assert.NoError(t, err)
	assert.Equal(t, Fault|Break, s)

	_, err = FromString("HALT, KEK")
	assert.Error(t, err)
}

func TestState_HasFlag(t *testing.T) {
	assert.True(t, Halt.HasFlag(Halt))
	assert.True(t, (Halt | Break).HasFlag(Halt))
	assert.False(t, Halt.HasFlag(Fault))
	assert.False(t, None.HasFlag(Halt))
}

func TestStateJSON(t *testing.T) {
	for _, s := range []State{None, Halt, Fault, Break, Halt | Break} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var s2 State
		require.NoError(t, json.Unmarshal(data, &s2))
		assert.Equal(t, s, s2)
	}

	var s State
	assert.Error(t, json.Unmarshal([]byte("123"), &s))
}
