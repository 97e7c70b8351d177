package builtin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		expr    string
		want    any
		ok      bool
		wantErr bool
	}{
		{`base64("hi")`, "aGk=", true, false},
		{`base64Decode("aGk=")`, "hi", true, false},
		{`base64Decode("%%%")`, "", true, true},
		{`md5("a")`, "0cc175b9c0f1b6a831c399e269772661", true, false},
		{`urlEncode("a b")`, "a+b", true, false},
		{`upper('abc')`, "ABC", true, false},
		{`lower("ABC")`, "abc", true, false},
		{`base64()`, "", true, true},
		{`nope()`, nil, false, false},
		{`not a call`, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok, err := r.Call(tt.expr)
			assert.Equal(t, tt.ok, ok)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_UUID(t *testing.T) {
	got, ok, err := NewRegistry().Call("uuid()")
	require.True(t, ok)
	require.NoError(t, err)
	_, err = uuid.Parse(got.(string))
	assert.NoError(t, err)
}

func TestRegistry_Random(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 20; i++ {
		got, _, err := r.Call("random(3, 5)")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 3)
		assert.LessOrEqual(t, got, 5)
	}

	_, _, err := r.Call("random(a, 5)")
	assert.Error(t, err)
	_, _, err = r.Call("random(5, 1)")
	assert.Error(t, err)
}

func TestRegistry_RandomString(t *testing.T) {
	got, _, err := NewRegistry().Call("randomString(12)")
	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestRegistry_Env(t *testing.T) {
	t.Setenv("SOFTSPEC_TEST_VALUE", "xyz")
	got, ok, err := NewRegistry().Call("env(SOFTSPEC_TEST_VALUE)")
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, "xyz", got)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func([]string) (any, error) { return 42, nil })

	got, ok, err := r.Call("answer()")
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Contains(t, r.Names(), "answer")
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d,e"}, parseArgs(`a, "b c", 'd,e'`))
	assert.Nil(t, parseArgs(""))
}
