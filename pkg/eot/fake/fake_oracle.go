// Package fake provides a scripted oracle for tests.
package fake

import (
	"context"
	"sync"

	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/eot"
)

// Oracle returns scripted verdicts in order. Once the script is exhausted
// it keeps returning the last verdict (or fail-open if none were given).
type Oracle struct {
	mu     sync.Mutex
	script []eot.Verdict
	calls  int
}

// NewOracle creates a fake oracle with the given verdict script.
func NewOracle(script ...eot.Verdict) *Oracle {
	return &Oracle{script: script}
}

// NewOracleWithValues creates a fake oracle that always answers with one
// probability thresholded at threshold.
func NewOracleWithValues(probability, threshold float64) *Oracle {
	return &Oracle{script: []eot.Verdict{{
		Probability: probability,
		IsComplete:  probability >= threshold,
	}}}
}

// Evaluate pops the next scripted verdict.
func (f *Oracle) Evaluate(ctx context.Context, seg audio.Segment) eot.Verdict {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++
	if len(f.script) == 0 {
		return eot.FailOpen
	}
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	return f.script[idx]
}

// Calls returns how many times Evaluate was invoked.
func (f *Oracle) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
