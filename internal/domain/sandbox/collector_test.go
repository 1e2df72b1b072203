package sandbox

import (
	"sync"
	"testing"
)

func TestCollectorOrdering(t *testing.T) {
	c := NewCollector()
	c.Log("first")
	c.Error("oops")
	c.Log("second")

	res := &Result{}
	c.Drain(res)

	if len(res.Stdout) != 2 || res.Stdout[0] != "first" || res.Stdout[1] != "second" {
		t.Errorf("stdout = %v, want [first second]", res.Stdout)
	}
	if len(res.Stderr) != 1 || res.Stderr[0] != "oops" {
		t.Errorf("stderr = %v, want [oops]", res.Stderr)
	}
}

func TestCollectorFinalAnswerFirstWriteWins(t *testing.T) {
	c := NewCollector()

	if !c.SetFinalAnswer("one") {
		t.Error("first SetFinalAnswer should win")
	}
	if c.SetFinalAnswer("two") {
		t.Error("second SetFinalAnswer should be ignored")
	}
	if c.SetFinalAnswer("three") {
		t.Error("third SetFinalAnswer should be ignored")
	}
	if got := c.DuplicateFinalCalls(); got != 2 {
		t.Errorf("DuplicateFinalCalls() = %d, want 2", got)
	}

	res := &Result{}
	c.Drain(res)
	if res.FinalAnswer == nil || *res.FinalAnswer != "one" {
		t.Errorf("FinalAnswer = %v, want one", res.FinalAnswer)
	}
}

func TestCollectorDrainOnFailure(t *testing.T) {
	c := NewCollector()
	c.SetFinalAnswer("partial")
	c.Log("before crash")

	res := &Result{}
	res.fail(runtimeError("boom"))
	c.Drain(res)

	if res.FinalAnswer != nil {
		t.Errorf("FinalAnswer = %v, want absent on failed run", *res.FinalAnswer)
	}
	if len(res.Stdout) != 1 {
		t.Errorf("stdout = %v, want the pre-failure line", res.Stdout)
	}
}

func TestCollectorConcurrentWrites(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Log("line")
			c.SetFinalAnswer("answer")
		}()
	}
	wg.Wait()

	res := &Result{}
	c.Drain(res)
	if len(res.Stdout) != 50 {
		t.Errorf("stdout lines = %d, want 50", len(res.Stdout))
	}
	if res.FinalAnswer == nil || *res.FinalAnswer != "answer" {
		t.Errorf("FinalAnswer = %v, want answer", res.FinalAnswer)
	}
	if got := c.DuplicateFinalCalls(); got != 49 {
		t.Errorf("DuplicateFinalCalls() = %d, want 49", got)
	}
}
