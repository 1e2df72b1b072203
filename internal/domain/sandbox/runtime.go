package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// State tracks the isolate lifecycle. Disposed is terminal; no operation is
// valid after it.
type State int

const (
	StateUninitialized State = iota
	StateIsolateCreated
	StateContextCreated
	StateRunning
	StateDone
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIsolateCreated:
		return "isolate_created"
	case StateContextCreated:
		return "context_created"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// maxCallStackSize bounds recursion depth; goja exposes no direct heap
// ceiling, so the stack bound plus per-run VM disposal is the enforcement.
const maxCallStackSize = 1024

// Runner owns one isolate for exactly one run: creation with a memory
// ceiling, script compilation, interruptible execution and guaranteed
// teardown. It is not safe for concurrent use; a run is a single logical
// thread of control.
type Runner struct {
	vm    *goja.Runtime
	state State
}

// NewRunner allocates a fresh isolate bounded by memoryLimitMB and prepares
// its single global scope. The returned runner must be disposed on every exit
// path.
func NewRunner(memoryLimitMB int64) (r *Runner, err *RunError) {
	defer func() {
		if p := recover(); p != nil {
			r = nil
			err = resourceError("isolate creation failed: %v", p)
		}
	}()

	r = &Runner{state: StateUninitialized}

	vm := goja.New()
	if memoryLimitMB > 0 {
		vm.SetMaxCallStackSize(maxCallStackSize)
	}
	r.vm = vm
	r.state = StateIsolateCreated

	if err := r.hardenGlobals(); err != nil {
		r.state = StateDone
		return nil, err
	}
	r.state = StateContextCreated
	return r, nil
}

// hardenGlobals strips ambient host access from the global scope before any
// bridge binding or user code runs.
func (r *Runner) hardenGlobals() *RunError {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.GlobalObject().Set(name, goja.Undefined()); err != nil {
			return resourceError("failed to harden global %s: %v", name, err)
		}
	}

	// Timers would need an event loop the sandbox deliberately does not have.
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)
	return nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Execute compiles and runs one script inside the isolate. The deadline and
// cancellation of ctx interrupt the engine mid-execution; the classified
// failure is returned as a *RunError.
func (r *Runner) Execute(ctx context.Context, name, src string) (goja.Value, *RunError) {
	if r.state == StateDisposed {
		return nil, runtimeError("%s", ErrDisposed.Error())
	}

	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, compileError(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, classifyInterrupt(err)
	}

	r.state = StateRunning
	defer func() { r.state = StateDone }()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, runErr := r.vm.RunProgram(prog)
	close(done)
	r.vm.ClearInterrupt()

	if runErr != nil {
		return nil, classifyRunError(runErr)
	}
	return val, nil
}

// Settle inspects the value produced by an async top-level script. With
// capability calls resolving synchronously under the hood, the returned
// promise is settled by the time execution returns; a promise that can never
// settle is a defect in the submitted code.
func (r *Runner) Settle(val goja.Value) (goja.Value, *RunError) {
	if val == nil {
		return goja.Undefined(), nil
	}
	p, ok := val.Export().(*goja.Promise)
	if !ok {
		return val, nil
	}

	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		return nil, runtimeError("%s", rejectionMessage(p.Result()))
	default:
		return nil, runtimeError("script suspended on a promise that can never settle")
	}
}

// Dispose releases the context and the isolate. The first call wins; any
// later call reports ErrDisposed.
func (r *Runner) Dispose() error {
	if r.state == StateDisposed {
		return ErrDisposed
	}
	if r.vm != nil {
		r.vm.ClearInterrupt()
	}
	r.vm = nil
	r.state = StateDisposed
	return nil
}

// classifyRunError maps an engine error into the run error taxonomy.
func classifyRunError(err error) *RunError {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return classifyInterrupt(cause)
		}
		return timeoutError(fmt.Sprintf("execution interrupted: %v", interrupted.Value()))
	}

	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return resourceError("call stack limit exceeded")
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return runtimeError("%s", exception.Error())
	}

	return runtimeError("%s", err.Error())
}

func classifyInterrupt(cause error) *RunError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return timeoutError("execution deadline exceeded")
	}
	return timeoutError(fmt.Sprintf("execution interrupted: %v", cause))
}

// rejectionMessage renders the value a promise was rejected with.
func rejectionMessage(val goja.Value) string {
	if val == nil {
		return "unknown rejection"
	}
	return val.String()
}
