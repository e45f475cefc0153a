// Package eot implements the end-of-turn oracle client. The oracle is a
// remote probabilistic classifier that scores whether a user has finished
// their conversational turn, given the most recent audio segment.
package eot

import (
	"context"

	"github.com/parleyvoice/parley/pkg/audio"
)

// Verdict is the oracle's decision for one segment. It is derived fresh per
// segment and never cached.
type Verdict struct {
	// Probability that the user's turn is complete, in [0,1].
	Probability float64

	// IsComplete is Probability thresholded against the configured value.
	IsComplete bool
}

// FailOpen is the verdict substituted whenever the oracle cannot answer.
// Treating failures as "turn complete" guarantees the conversation never
// stalls on oracle unavailability.
var FailOpen = Verdict{Probability: 1.0, IsComplete: true}

// Oracle decides turn completion for audio segments. Implementations must
// be stateless and safe for concurrent use by many sessions, and must never
// block the decision path: a Verdict is always returned, errors are
// absorbed into the fail-open policy.
type Oracle interface {
	Evaluate(ctx context.Context, seg audio.Segment) Verdict
}
