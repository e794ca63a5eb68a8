package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Symbols_symbolicateInternsOnce(t *testing.T) {
	var t1 symbols
	a := t1.symbolicate("foo")
	b := t1.symbolicate("foo")
	require.Equal(t, a, b)

	c := t1.symbolicate("bar")
	require.NotEqual(t, a, c)
}

func Test_Symbols_lookupDoesNotIntern(t *testing.T) {
	var t1 symbols
	_, ok := t1.lookup("never-interned")
	require.False(t, ok)

	id := t1.symbolicate("known")
	found, ok := t1.lookup("known")
	require.True(t, ok)
	require.Equal(t, id, found)
}

func Test_Symbols_stringRoundTrip(t *testing.T) {
	var t1 symbols
	id := t1.symbolicate("hello")
	require.Equal(t, "hello", t1.string(id))
}

func Test_Symbols_stringOutOfRange(t *testing.T) {
	var t1 symbols
	require.Equal(t, "", t1.string(42))
}

func Test_Symbols_reservedBooleanIDs(t *testing.T) {
	vm := New()
	require.Equal(t, "false", vm.symbols.string(uint(SymFalse)))
	require.Equal(t, "true", vm.symbols.string(uint(SymTrue)))
}
