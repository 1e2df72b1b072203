/*
Package sandbox executes agent-generated JavaScript inside isolated,
resource-bounded goja runtimes.

# Overview

Each run owns a fresh isolate end to end. A run gets:

  - A memory-bounded VM with hardened globals (no require, process, timers)
  - A single global scope that never outlives the run
  - A console-like surface (log/error) and a write-once final answer slot
  - Host capabilities exposed as async functions, copy-in/copy-out only
  - A single wall-clock deadline covering bootstrap install and user code

# Architecture

The run pipeline is Service → Runner → Bridge → Collector:

 1. Runner: goja VM lifecycle with an explicit state machine ending in
    Disposed on every exit path
 2. Bridge: generates and executes the shim bootstrap that binds each
    capability into the global scope
 3. Collector: ordered stdout/stderr capture plus the final answer slot
 4. Service: composes the above, classifies failures and never throws

# Security Model

Sandboxed code cannot touch host memory, the filesystem or the network.
Capability handles are the only way out: arguments and results are
structurally copied at the boundary, functions and host objects cannot cross,
and only explicitly installed capabilities are reachable. A hostile script can
at worst burn its own budget; the deadline interrupt and per-run disposal
contain it.

# Usage Example

	svc := sandbox.NewService(sandbox.DefaultConfig(), logger)
	caps := map[string]capability.Handle{
		"double": capability.New("double", doubleFn),
	}
	res := svc.Run(ctx, code, caps, 5*time.Second)
	if !res.OK() {
		logger.Warn("run failed", zap.String("error", res.Error))
	}
*/
package sandbox
