package main

import (
	"context"
	"errors"
	"io"
	"io/ioutil"

	"github.com/atto-lang/atto/internal/flushio"
	"github.com/atto-lang/atto/internal/panicerr"
)

// VMOption configures a VM at construction time, the same closed
// functional-options shape as gothird's api.go/options.go.
type VMOption interface{ apply(vm *VM) }

// New builds a VM with opts applied over the defaults (discarded output, no
// tracing, unbounded heap/stacks).
func New(opts ...VMOption) *VM {
	vm := newVM()
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	return vm
}

// Run executes the VM's current top-level stream to completion. It
// recovers any halt or unexpected panic via internal/panicerr and unwraps a
// plain haltError down to its wrapped cause, so callers only ever see the
// condition that actually aborted evaluation, or nil.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.exec(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

// WithInput queues r as a source of top-level forms, behind anything queued
// by an earlier WithInput call -- the same ordered-queue-of-sources idiom as
// gothird's own withInput, generalized from FORTH bootstrap text + stdin to
// script files + stdin.
func WithInput(r io.Reader) VMOption  { return inputOption{r} }
func WithOutput(w io.Writer) VMOption { return outputOption{w} }
func WithLogf(logfn func(mess string, args ...interface{})) VMOption {
	return withLogfn(logfn)
}
func WithHeapLimit(limit uint) VMOption      { return heapLimitOption(limit) }
func WithDataStackLimit(limit uint) VMOption { return dataStackLimitOption(limit) }
func WithCallStackLimit(limit uint) VMOption { return callStackLimitOption(limit) }

var defaultOptions = VMOptions(
	outputOption{ioutil.Discard},
)

// VMOptions flattens opts into a single VMOption, dropping nils the way
// gothird's options slice does so callers can freely pass a conditionally-
// nil option.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*VM) {}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type inputOption struct{ io.Reader }

func (i inputOption) apply(vm *VM) { vm.Queue = append(vm.Queue, i.Reader) }

type outputOption struct{ io.Writer }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		_ = vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

type heapLimitOption uint

func (lim heapLimitOption) apply(vm *VM) { vm.heap.SetLimit(uint(lim)) }

type dataStackLimitOption uint

func (lim dataStackLimitOption) apply(vm *VM) { vm.dataStack.Limit = uint(lim) }

type callStackLimitOption uint

func (lim callStackLimitOption) apply(vm *VM) { vm.callStack.Limit = uint(lim) }
