package sandbox

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
)

// hostInvokeName is the single hidden hook the generated shims call through.
const hostInvokeName = "__hostInvoke"

// reservedNames cannot be used as capability names; they collide with the
// collector surface or the bridge internals.
var reservedNames = map[string]struct{}{
	"log":          {},
	"error":        {},
	"finalAnswer":  {},
	"console":      {},
	hostInvokeName: {},
	"setTimeout":   {},
	"setInterval":  {},
	"globalThis":   {},
	"require":      {},
	"process":      {},
	"module":       {},
	"exports":      {},
}

// RecordFunc observes one capability invocation for metrics.
type RecordFunc func(name string, ok bool, duration time.Duration)

// Bridge wires the collector surface and the capability shims into an
// isolate's global scope. Arguments and results cross the boundary copied by
// value; only the capabilities explicitly installed are reachable from inside.
type Bridge struct {
	runner    *Runner
	collector *Collector
	handles   map[string]capability.Handle
	log       *logging.Logger
	record    RecordFunc
}

// NewBridge creates a bridge for one run.
func NewBridge(runner *Runner, collector *Collector, log *logging.Logger, record RecordFunc) *Bridge {
	if record == nil {
		record = func(string, bool, time.Duration) {}
	}
	return &Bridge{
		runner:    runner,
		collector: collector,
		handles:   map[string]capability.Handle{},
		log:       log,
		record:    record,
	}
}

// Install binds the collector surface, the host hook and the generated
// capability shims. It runs the bootstrap under ctx's deadline and fails fast
// with a bridge error before any user code can execute.
func (b *Bridge) Install(ctx context.Context, handles map[string]capability.Handle) *RunError {
	if err := b.validate(handles); err != nil {
		return err
	}
	for name, h := range handles {
		b.handles[name] = h
	}

	if err := b.installCollector(); err != nil {
		return err
	}
	if err := b.installHostHook(ctx); err != nil {
		return err
	}

	bootstrap := b.compileShims()
	if bootstrap == "" {
		return nil
	}
	if _, err := b.runner.Execute(ctx, "bootstrap", bootstrap); err != nil {
		if err.Kind == ErrorTimeout {
			return err
		}
		return bridgeError("bootstrap failed: %s", err.Message)
	}
	return nil
}

// validate rejects illegal or colliding capability names before anything is
// bound.
func (b *Bridge) validate(handles map[string]capability.Handle) *RunError {
	global := b.runner.vm.GlobalObject()
	for name := range handles {
		if !capability.ValidName(name) {
			return bridgeError("illegal capability name: %q", name)
		}
		if _, reserved := reservedNames[name]; reserved {
			return bridgeError("capability name is reserved: %q", name)
		}
		if v := global.Get(name); v != nil && !goja.IsUndefined(v) {
			return bridgeError("capability name collides with a global: %q", name)
		}
	}
	return nil
}

// installCollector binds log/error/finalAnswer plus a console alias.
func (b *Bridge) installCollector() *RunError {
	vm := b.runner.vm

	logFn := func(call goja.FunctionCall) goja.Value {
		b.collector.Log(joinArgs(call))
		return goja.Undefined()
	}
	errFn := func(call goja.FunctionCall) goja.Value {
		b.collector.Error(joinArgs(call))
		return goja.Undefined()
	}
	finalFn := func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		if !b.collector.SetFinalAnswer(text) {
			b.log.Warn("finalAnswer called more than once; ignoring subsequent calls")
		}
		return goja.Undefined()
	}

	bindings := map[string]any{
		"log":         logFn,
		"error":       errFn,
		"finalAnswer": finalFn,
	}
	for name, fn := range bindings {
		if err := vm.Set(name, fn); err != nil {
			return bridgeError("failed to bind %s: %v", name, err)
		}
	}

	console := vm.NewObject()
	console.Set("log", logFn)
	console.Set("info", logFn)
	console.Set("warn", errFn)
	console.Set("error", errFn)
	if err := vm.Set("console", console); err != nil {
		return bridgeError("failed to bind console: %v", err)
	}
	return nil
}

// installHostHook binds the blocking cross-boundary call every shim routes
// through. A capability error becomes a thrown value inside the sandbox, so
// user code can catch it; uncaught it surfaces as a runtime error.
func (b *Bridge) installHostHook(ctx context.Context) *RunError {
	vm := b.runner.vm

	hook := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("malformed capability call"))
		}
		name := call.Arguments[0].String()
		handle, ok := b.handles[name]
		if !ok {
			panic(vm.NewTypeError("unknown capability: %s", name))
		}

		var raw []capability.Value
		if exported := call.Arguments[1].Export(); exported != nil {
			if slice, ok := exported.([]any); ok {
				raw = slice
			}
		}
		args, err := capability.NormalizeSlice(raw)
		if err != nil {
			panic(vm.NewTypeError("%s: %s", name, err.Error()))
		}

		start := time.Now()
		result, err := handle.Invoke(ctx, args)
		b.record(name, err == nil, time.Since(start))
		if err != nil {
			panic(vm.NewGoError(fmt.Errorf("%s: %w", name, err)))
		}
		return vm.ToValue(result)
	}

	if err := vm.Set(hostInvokeName, hook); err != nil {
		return bridgeError("failed to bind host hook: %v", err)
	}
	return nil
}

// compileShims emits the bootstrap source: one async global function per
// capability, forwarding through the host hook. Names are validated before
// this point, so direct interpolation is safe.
func (b *Bridge) compileShims() string {
	if len(b.handles) == 0 {
		return ""
	}

	names := make([]string, 0, len(b.handles))
	for name := range b.handles {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "globalThis.%s = async (...args) => %s(%q, args);\n", name, hostInvokeName, name)
	}
	return sb.String()
}

// joinArgs renders console arguments as a single space-joined line.
func joinArgs(call goja.FunctionCall) string {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
