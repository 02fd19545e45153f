package erralph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTitle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid key", ErrInvalidKey, "InvalidKey"},
		{"invalid model", ErrInvalidModel, "InvalidModel"},
		{"connection not open", ErrConnectionNotOpen, "ConnectionNotOpen"},
		{"unwrapped generic", errors.New("boom"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.err, "conn-1", "key-1")
			assert.Equal(t, tt.want, e.Title())
		})
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	e := New(ErrInvalidRecord, "conn-1", "orders")
	msg := e.Message()
	assert.Contains(t, msg, "conn-1")
	assert.Contains(t, msg, "orders")
	assert.Contains(t, msg, "InvalidRecord")
}

func TestErrorUnwrap(t *testing.T) {
	e := New(ErrInvalidKey, "c", "k")
	assert.True(t, errors.Is(e, ErrInvalidKey))
	assert.False(t, errors.Is(e, ErrInvalidModel))
}

func TestErrorWithArgsAndData(t *testing.T) {
	e := New(ErrInvalidRecord, "c", "k").
		WithArgs(map[string]any{"n": 3}).
		WithData("payload")
	assert.Equal(t, 3, e.Args["n"])
	assert.Equal(t, "payload", e.Data)
}

func TestDumpChainDoesNotPanic(t *testing.T) {
	e := New(ErrInvalidRecord, "c", "k")
	assert.NotPanics(t, func() { DumpChain(e) })
	assert.NotPanics(t, func() { DumpChain(nil) })
}
