package turn

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/internal/metrics"
	"github.com/parleyvoice/parley/pkg/ai/stt"
	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/eot"
	"github.com/parleyvoice/parley/pkg/responder"
)

// State represents the controller's position in the turn lifecycle.
type State int32

const (
	// StateIdle - no buffered text.
	StateIdle State = iota
	// StateBuffering - one or more fragments appended, awaiting completion.
	StateBuffering
	// StateFlushing - dispatch to the responder in progress.
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StateFlushing:
		return "Flushing"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Flush triggers, used as metric labels.
const (
	triggerVerdict = "verdict"
	triggerTimeout = "timeout"
)

// Controller drives one conversational session. For each incoming segment
// it consults the oracle, updates the turn buffer, and either emits a
// partial notification or finalizes the turn through the responder.
//
// No failure of the oracle, transcriber, or responder ever escapes the
// controller: each is absorbed into a no-op, a logged warning, or a
// client-visible error notification.
type Controller struct {
	oracle      eot.Oracle
	transcriber stt.Transcriber
	responder   responder.Responder
	notifier    Notifier

	buffer     *Buffer
	state      atomic.Int32
	forceAfter time.Duration

	// Serializes the segment path against the staleness path so the
	// buffer has a single mutator at a time.
	mu sync.Mutex

	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// Config holds dependencies for creating a Controller.
type Config struct {
	Oracle      eot.Oracle
	Transcriber stt.Transcriber
	Responder   responder.Responder
	Notifier    Notifier

	// ForceAfter is the silence timeout after which a buffered turn is
	// flushed even without a completion verdict.
	ForceAfter time.Duration

	// Logger is optional; a named child of the global logger is used
	// when nil.
	Logger *zap.SugaredLogger
}

// NewController creates a Controller in the Idle state.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if cfg.Responder == nil {
		return nil, fmt.Errorf("responder is required")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if cfg.ForceAfter <= 0 {
		return nil, fmt.Errorf("force-after timeout must be positive")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Named("turn")
	}
	return &Controller{
		oracle:      cfg.Oracle,
		transcriber: cfg.Transcriber,
		responder:   cfg.Responder,
		notifier:    cfg.Notifier,
		buffer:      NewBuffer(),
		forceAfter:  cfg.ForceAfter,
		log:         log,
		metrics:     metrics.Default,
	}, nil
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(next State) {
	prev := State(c.state.Swap(int32(next)))
	if prev != next {
		c.metrics.StateTransitions.WithLabelValues(prev.String(), next.String()).Inc()
	}
}

// ProcessSegment runs one decision cycle for a newly arrived segment.
// The oracle evaluation and the transcription are issued together and
// joined before the buffer is touched.
func (c *Controller) ProcessSegment(ctx context.Context, seg audio.Segment) {
	verdictCh := make(chan eot.Verdict, 1)
	go func() {
		verdictCh <- c.oracle.Evaluate(ctx, seg)
	}()

	text, err := c.transcriber.Transcribe(ctx, seg)
	verdict := <-verdictCh

	if ctx.Err() != nil {
		// Session gone; late results are discarded.
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// The segment's audio is dropped; the conversation continues.
		c.log.Warnw("transcription failed, dropping segment",
			"error", err, "duration", seg.Duration())
		c.metrics.SegmentsDropped.WithLabelValues("transcriber_error").Inc()
		return
	}

	if !c.buffer.Append(text, time.Now()) {
		// Silence misclassified as speech: no state change, no notification.
		c.metrics.SegmentsDropped.WithLabelValues("empty_text").Inc()
		return
	}
	if c.State() == StateIdle {
		c.setState(StateBuffering)
	}

	if !verdict.IsComplete {
		c.metrics.TranscriptionsPartial.Inc()
		if nerr := c.notifier.NotifyTranscription(ctx, c.buffer.Peek(), verdict.Probability, true); nerr != nil {
			c.log.Warnw("partial notification failed", "error", nerr)
		}
		return
	}

	c.flushLocked(ctx, verdict, triggerVerdict)
}

// CheckStale force-flushes the buffered turn if no fragment has arrived
// within the configured timeout. Driven by the session loop's poll ticker,
// independent of segment arrival.
func (c *Controller) CheckStale(ctx context.Context, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() != StateBuffering || !c.buffer.IsStale(now, c.forceAfter) {
		return
	}
	c.log.Debugw("turn stale, forcing flush", "fragments", c.buffer.Fragments())
	c.flushLocked(ctx, eot.Verdict{Probability: 1.0, IsComplete: true}, triggerTimeout)
}

// Reset discards any buffered turn. Called on session teardown; a
// disconnected client cannot receive a response, so nothing is dispatched.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer.Clear()
	c.setState(StateIdle)
}

// flushLocked finalizes the buffered turn: snapshot, clear, dispatch.
// The buffer is cleared before dispatch is attempted so a responder
// failure can never cause the same text to be reprocessed.
func (c *Controller) flushLocked(ctx context.Context, verdict eot.Verdict, trigger string) {
	c.setState(StateFlushing)
	defer c.setState(StateIdle)

	text := c.buffer.Peek()
	fragments := c.buffer.Fragments()
	c.buffer.Clear()

	c.metrics.TurnsFinalized.WithLabelValues(trigger).Inc()
	c.metrics.TurnFragments.Observe(float64(fragments))

	if nerr := c.notifier.NotifyTranscription(ctx, text, verdict.Probability, false); nerr != nil {
		c.log.Warnw("final transcription notification failed", "error", nerr)
	}

	start := time.Now()
	reply, err := c.responder.Respond(ctx, text)
	if err != nil {
		c.metrics.DispatchErrors.Inc()
		c.log.Errorw("responder dispatch failed", "error", err, "trigger", trigger)
		if nerr := c.notifier.NotifyError(ctx, "response generation failed"); nerr != nil {
			c.log.Warnw("error notification failed", "error", nerr)
		}
		return
	}

	if nerr := c.notifier.NotifyReply(ctx, reply.Text); nerr != nil {
		c.log.Warnw("reply notification failed", "error", nerr)
	}
	for chunk := range reply.Audio {
		if ctx.Err() != nil {
			return
		}
		if nerr := c.notifier.NotifyAudio(ctx, chunk); nerr != nil {
			c.log.Warnw("audio delivery failed", "error", nerr)
			break
		}
	}
	c.metrics.DispatchLatency.Observe(time.Since(start).Seconds())

	c.log.Infow("turn finalized",
		"trigger", trigger, "fragments", fragments, "chars", len(text))
}
