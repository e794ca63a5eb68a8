/* Command atto: a small, lazily evaluated functional language in the Lisp
family.

Atto reads S-expression definitions and expressions, compiles them to a
custom bytecode, and runs them on a stack-based virtual machine with
call-by-need semantics for composite expressions (lists, `if`, and function
application) -- see SPEC_FULL.md and DESIGN.md for the full design and its
grounding.

This file wires three independently testable pieces together: internal/sexpr
(lexing and parsing), semantic.go (typed expression tree construction), and
the compiler/VM pair (compiler.go, vm.go). It also owns the REPL shell and
the SIGINT-driven cooperative cancellation gothird's own scripting leaves to
golang.org/x/sync/errgroup (scripts/gen_vm_expects.go), generalized here from
a one-shot subprocess pipeline to a long-lived interactive session.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atto-lang/atto/internal/logio"
	"github.com/atto-lang/atto/internal/sexpr"
)

func main() {
	var (
		heapLimit      uint
		dataStackLimit uint
		callStackLimit uint
		timeout        time.Duration
		trace          bool
		dump           bool
	)
	flag.UintVar(&heapLimit, "heap-limit", 0, "bound heap object count (0 = unbounded)")
	flag.UintVar(&dataStackLimit, "data-stack-limit", 0, "bound data stack depth (0 = unbounded)")
	flag.UintVar(&callStackLimit, "call-stack-limit", 0, "bound call stack depth (0 = unbounded)")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable step trace logging")
	flag.BoolVar(&dump, "dump", false, "print a stack/heap dump after each input")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	opts := []VMOption{
		WithOutput(os.Stdout),
		WithHeapLimit(heapLimit),
		WithDataStackLimit(dataStackLimit),
		WithCallStackLimit(callStackLimit),
	}
	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		opts = append(opts, WithInput(f))
	}
	opts = append(opts, WithInput(os.Stdin))

	vm := New(opts...)
	traceLog := log.Leveledf("TRACE")
	vm.logfn = func(mess string, args ...interface{}) {
		if vm.flags&FlagVerbose != 0 {
			traceLog(mess, args...)
		}
	}
	if trace {
		vm.flags |= FlagVerbose
	}
	driver := NewDriver(vm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if timeout != 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, timeout)
		defer timeoutCancel()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return watchInterrupt(ctx, cancel) })
	eg.Go(func() error {
		defer cancel()
		return repl(ctx, driver, &log, dump)
	})

	if err := eg.Wait(); err != nil {
		log.ErrorIf(err)
		os.Exit(log.ExitCode())
	}
}

// watchInterrupt cancels ctx on SIGINT, the cooperative "clear RUNNING
// between steps" hook §5 asks implementers targeting a REPL to provide.
func watchInterrupt(ctx context.Context, cancel context.CancelFunc) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	select {
	case <-sig:
		cancel()
	case <-ctx.Done():
	}
	return nil
}

// repl implements §6's REPL interface: one form read at a time (no prompt is
// printed, and a form may span lines or share a line with others), an
// increasing result counter, and meta-commands. Its source is the VM's own
// fileinput.Input queue (script files given on the command line, then
// stdin), so errors can report a "name:line" location the way gothird's own
// fileinput-backed scanning does, instead of only a bare message.
func repl(ctx context.Context, driver *Driver, log *logio.Logger, dump bool) error {
	reader := sexpr.NewReader(driver.vm)

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		node, err := reader.Read()
		if err != nil {
			return nil
		}

		if node.IsAtom() && len(node.Atom) > 0 && node.Atom[0] == '-' {
			if handleMeta(driver, node.Atom) {
				continue
			}
			return nil
		}

		form, err := ParseForm(node)
		if err != nil {
			log.Errorf("compile (%v): %v", driver.vm.Last.Location, err)
			continue
		}

		obj, err := driver.Eval(ctx, form)
		if err != nil {
			if errors.As(err, new(fatalError)) {
				return fmt.Errorf("eval (%v): %w", driver.vm.Last.Location, err)
			}
			log.Errorf("eval (%v): %v", driver.vm.Last.Location, err)
			continue
		}
		if _, isDefine := form.(Define); isDefine {
			continue
		}

		n++
		fmt.Println(driver.Format(n, obj))
		if dump {
			fmt.Fprint(os.Stderr, driver.vm.DumpStack())
		}
	}
}

// handleMeta dispatches one of §6's REPL meta-commands; it returns false
// for `-exit` so repl can stop cleanly.
func handleMeta(driver *Driver, cmd string) bool {
	switch cmd {
	case "-exit":
		return false
	case "-stack":
		fmt.Fprint(os.Stderr, driver.vm.DumpStack())
	case "-heap-usage":
		used, limit := driver.vm.HeapUsage()
		fmt.Fprintf(os.Stderr, "heap: %d/%d\n", used, limit)
	case "-verbose-on":
		driver.vm.flags |= FlagVerbose
	case "-verbose-off":
		driver.vm.flags &^= FlagVerbose
	case "-env", "-help":
		fmt.Fprintln(os.Stderr, "atto: -exit -stack -heap-usage -verbose-on -verbose-off")
	default:
		fmt.Fprintf(os.Stderr, "atto: unknown meta-command %q\n", cmd)
	}
	return true
}
