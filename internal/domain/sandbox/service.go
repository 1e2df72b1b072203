package sandbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/monitoring"
)

// Service is the public entry point for sandboxed execution. Runs are
// independent: each builds a fresh isolate, collector and bridge, and tears
// everything down before returning. Run never panics and never returns an
// error to the caller; failures are flattened into the Result.
type Service struct {
	cfg     Config
	limiter *Limiter
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewService creates a sandbox service with the given budget configuration.
func NewService(cfg Config, log *logging.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MemoryLimitMB <= 0 {
		cfg.MemoryLimitMB = DefaultConfig().MemoryLimitMB
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		cfg:     cfg,
		limiter: NewLimiter(cfg.MaxConcurrentRuns),
		log:     log.Named("sandbox"),
	}
}

// WithMetrics attaches a metrics collector.
func (s *Service) WithMetrics(m *monitoring.Metrics) *Service {
	s.metrics = m
	return s
}

// Stats returns run-slot bookkeeping for health reporting.
func (s *Service) Stats() map[string]any {
	return s.limiter.Stats()
}

// Close stops accepting new runs. In-flight runs finish normally.
func (s *Service) Close() {
	s.limiter.Close()
}

// Run executes agent-generated code with the supplied capabilities under a
// single total deadline covering bootstrap install and user code. A zero
// timeout uses the configured default.
func (s *Service) Run(ctx context.Context, code string, caps map[string]capability.Handle, timeout time.Duration) *Result {
	res := &Result{
		RunID:  uuid.NewString(),
		Stdout: []string{},
		Stderr: []string{},
	}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		s.finish(res)
	}()
	defer func() {
		if p := recover(); p != nil {
			res.fail(runtimeError("unexpected panic during run: %v", p))
		}
	}()

	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		res.fail(resourceError("no run slot available: %v", err))
		return res
	}
	defer s.limiter.Release()

	if s.metrics != nil {
		s.metrics.RunStarted()
		defer s.metrics.RunFinished()
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runner, rerr := NewRunner(s.cfg.MemoryLimitMB)
	if rerr != nil {
		res.fail(rerr)
		return res
	}
	defer func() {
		if err := runner.Dispose(); err != nil {
			s.log.Warn("runner dispose failed", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}()

	collector := NewCollector()
	bridgeLog := logging.FromZap(s.log.With(zap.String("run_id", res.RunID)))
	bridge := NewBridge(runner, collector, bridgeLog, s.recordCapability)
	defer collector.Drain(res)

	if err := bridge.Install(runCtx, caps); err != nil {
		res.fail(err)
		return res
	}

	val, execErr := runner.Execute(runCtx, "user_code", wrapCode(code))
	if execErr != nil {
		res.fail(execErr)
		return res
	}
	if _, settleErr := runner.Settle(val); settleErr != nil {
		res.fail(settleErr)
		return res
	}
	return res
}

// wrapCode puts user code inside an implicit async top-level block so
// awaiting capability calls is legal.
func wrapCode(code string) string {
	return "(async () => {\n" + code + "\n})()"
}

func (s *Service) recordCapability(name string, ok bool, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCapabilityCall(name, ok, duration)
	}
}

// finish records metrics and logs the classified outcome.
func (s *Service) finish(res *Result) {
	outcome := "completed"
	if res.ErrorKind != "" {
		outcome = string(res.ErrorKind)
	}
	if s.metrics != nil {
		s.metrics.RecordRun(outcome, res.Duration)
	}

	fields := []zap.Field{
		zap.String("run_id", res.RunID),
		zap.String("outcome", outcome),
		zap.Duration("duration", res.Duration),
		zap.Int("stdout_lines", len(res.Stdout)),
		zap.Int("stderr_lines", len(res.Stderr)),
	}
	if res.ErrorKind != "" {
		s.log.Warn("run failed", append(fields, zap.String("error", res.Error))...)
		return
	}
	s.log.Info("run completed", fields...)
}
