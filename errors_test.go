package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_HaltError_nilIsPlainHalted(t *testing.T) {
	var err haltError
	require.Equal(t, "halted", err.Error())
	require.NoError(t, err.Unwrap())
}

func Test_HaltError_wrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := haltError{cause}
	require.Contains(t, err.Error(), "boom")
	require.Equal(t, cause, err.Unwrap())
	require.True(t, errors.Is(err, cause))
}

func Test_CompileError_formatsWhereAndCause(t *testing.T) {
	err := compileError{"if-cond", unknownIdentifierError("x")}
	require.Contains(t, err.Error(), "if-cond")
	require.Contains(t, err.Error(), `"x"`)
}

func Test_TypeError_formatsWantGot(t *testing.T) {
	err := typeError{Op: OpADD, Want: KindNumber, Got: KindSymbol}
	require.Equal(t, "ADD: expected number operand, got symbol", err.Error())
}

func Test_UnknownOpcode_formats(t *testing.T) {
	err := unknownOpcode(200)
	require.Equal(t, "unknown opcode 200", err.Error())
}
