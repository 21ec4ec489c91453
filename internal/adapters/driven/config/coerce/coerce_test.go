package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "abc", String("abc"))
	assert.Equal(t, "0012", String("0012"), "strings keep leading zeros")
	assert.Equal(t, "42", String(int64(42)))
	assert.Equal(t, "1.5", String(1.5))
	assert.Equal(t, "true", String(true))
	assert.Empty(t, String([]any{"a"}))
	assert.Empty(t, String(nil))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"toml integer", int64(50), 50},
		{"go int", 7, 7},
		{"float truncates", 9.9, 9},
		{"string", " 120 ", 120},
		{"bad string", "ten", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in))
		})
	}
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 2.5, Float("2.5"))
	assert.Equal(t, 4.0, Float(int64(4)))
	assert.Equal(t, 0.0, Float(true))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true))
	assert.True(t, Bool("1"))
	assert.True(t, Bool(" true "))
	assert.False(t, Bool("yes"))
	assert.False(t, Bool(int64(1)))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"acme", "globex"}, StringSlice([]any{"acme", 3, "globex"}))
	assert.Equal(t, []string{"acme", "globex"}, StringSlice("acme, ,globex,"))
	assert.Equal(t, []string{"x"}, StringSlice([]string{"x"}))
	assert.Nil(t, StringSlice(int64(1)))
}
