package callflag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallFlagHas(t *testing.T) {
	assert.True(t, AllowCall.Has(AllowCall))
	assert.False(t, AllowCall.Has(AllowNotify))
	assert.True(t, (AllowCall | AllowNotify).Has(AllowCall))
	assert.False(t, AllowCall.Has(AllowCall|AllowNotify))
	assert.True(t, All.Has(ReadOnly))
	assert.True(t, NoneFlag.Has(NoneFlag))
}

func TestCallFlagString(t *testing.T) {
	assert.Equal(t, "None", NoneFlag.String())
	assert.Equal(t, "All", All.String())
	assert.Equal(t, "ReadOnly", ReadOnly.String())
	assert.Equal(t, "ReadStates, AllowNotify", (ReadStates | AllowNotify).String())
}

func TestFromString(t *testing.T) {
	for _, f := range []CallFlag{NoneFlag, ReadStates, States, ReadOnly, All, ReadStates | AllowNotify} {
		res, err := FromString(f.String())
		require.NoError(t, err)
		require.Equal(t, f, res)
	}
	_, err := FromString("Whatever")
	require.Error(t, err)
	_, err = FromString("")
	require.Error(t, err)
}

func TestCallFlagJSON(t *testing.T) {
	data, err := json.Marshal(ReadOnly)
	require.NoError(t, err)
	require.Equal(t, `"ReadOnly"`, string(data))

	var f CallFlag
	require.NoError(t, json.Unmarshal(data, &f))
	require.Equal(t, ReadOnly, f)

	require.Error(t, json.Unmarshal([]byte(`"Whatever"`), &f))
	require.Error(t, json.Unmarshal([]byte(`42`), &f))
}
