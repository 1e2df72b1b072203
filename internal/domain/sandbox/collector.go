package sandbox

import (
	"sync"
)

// Collector captures the console-like surface of one run: ordered stdout and
// stderr lines plus the single write-once final answer slot. It grants no I/O
// capability; lines only become visible to the host when the run drains them.
type Collector struct {
	mu     sync.Mutex
	stdout []string
	stderr []string
	final  *string
	dupes  int
}

// NewCollector creates an empty collector for one run.
func NewCollector() *Collector {
	return &Collector{
		stdout: []string{},
		stderr: []string{},
	}
}

// Log appends a line to stdout.
func (c *Collector) Log(line string) {
	c.mu.Lock()
	c.stdout = append(c.stdout, line)
	c.mu.Unlock()
}

// Error appends a line to stderr.
func (c *Collector) Error(line string) {
	c.mu.Lock()
	c.stderr = append(c.stderr, line)
	c.mu.Unlock()
}

// SetFinalAnswer writes the final answer slot. The first call wins; later
// calls are no-ops and return false so the bridge can emit a warning.
func (c *Collector) SetFinalAnswer(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.final != nil {
		c.dupes++
		return false
	}
	c.final = &text
	return true
}

// DuplicateFinalCalls reports how many final-answer writes were ignored.
func (c *Collector) DuplicateFinalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dupes
}

// Drain copies the collected output into a result. On a failed run the final
// answer stays absent; error and final answer are mutually exclusive.
func (c *Collector) Drain(res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res.Stdout = append([]string{}, c.stdout...)
	res.Stderr = append([]string{}, c.stderr...)
	if c.final != nil && res.ErrorKind == "" {
		v := *c.final
		res.FinalAnswer = &v
	}
}
