// Package session drives one conversational connection's duty cycle: it
// feeds arriving segments to the turn controller and independently enforces
// the forced-flush timeout even when no new audio arrives.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/internal/metrics"
	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/turn"
)

const (
	// DefaultPollInterval paces the staleness check. It must stay
	// materially shorter than the forced-flush timeout.
	DefaultPollInterval = time.Second

	// DefaultQueueDepth bounds segments queued while a flush is in
	// progress; they are processed strictly in arrival order.
	DefaultQueueDepth = 4
)

// Session owns exactly one turn controller and processes its segments on a
// single goroutine. Sessions are fully isolated; nothing mutable is shared
// between them.
type Session struct {
	id           string
	controller   *turn.Controller
	segments     chan audio.Segment
	pollInterval time.Duration
	log          *zap.SugaredLogger
	metrics      *metrics.Metrics
}

// Config holds configuration for creating a Session.
type Config struct {
	Controller   *turn.Controller
	PollInterval time.Duration // defaults to DefaultPollInterval
	QueueDepth   int           // defaults to DefaultQueueDepth
	ID           string        // defaults to a fresh UUID
}

// New creates a Session ready to run.
func New(cfg Config) (*Session, error) {
	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}
	if cfg.QueueDepth < 0 {
		return nil, fmt.Errorf("queue depth must be positive")
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	return &Session{
		id:           cfg.ID,
		controller:   cfg.Controller,
		segments:     make(chan audio.Segment, cfg.QueueDepth),
		pollInterval: cfg.PollInterval,
		log:          logging.Named("session").With("session_id", cfg.ID),
		metrics:      metrics.Default,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Offer enqueues a segment for processing without blocking. Returns false
// when the queue is full and the segment was dropped; the transport keeps
// reading so the connection stays responsive.
func (s *Session) Offer(seg audio.Segment) bool {
	select {
	case s.segments <- seg:
		s.metrics.SegmentsReceived.Inc()
		s.metrics.AudioBytes.Add(float64(len(seg.PCM)))
		return true
	default:
		s.metrics.SegmentsDropped.WithLabelValues("queue_full").Inc()
		s.log.Warnw("segment queue full, dropping segment", "duration", seg.Duration())
		return false
	}
}

// Run executes the duty cycle until ctx is cancelled. Each cycle performs
// at most one of: process a queued segment, or check staleness. On return
// any buffered-but-unflushed text has been discarded.
func (s *Session) Run(ctx context.Context) error {
	s.metrics.SessionsTotal.Inc()
	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()
	defer s.controller.Reset()

	s.log.Infow("session started", "poll_interval", s.pollInterval)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Infow("session closed", "reason", ctx.Err())
			return nil
		case seg := <-s.segments:
			s.controller.ProcessSegment(ctx, seg)
		case <-ticker.C:
			s.controller.CheckStale(ctx, time.Now())
		}
	}
}
