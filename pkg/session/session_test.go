package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	sttfake "github.com/parleyvoice/parley/pkg/ai/stt/fake"
	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/eot"
	eotfake "github.com/parleyvoice/parley/pkg/eot/fake"
	respfake "github.com/parleyvoice/parley/pkg/responder/fake"
	"github.com/parleyvoice/parley/pkg/turn"
)

// nullNotifier satisfies turn.Notifier; session tests observe the fake
// responder instead of the notification stream.
type nullNotifier struct{}

func (nullNotifier) NotifyTranscription(context.Context, string, float64, bool) error { return nil }
func (nullNotifier) NotifyReply(context.Context, string) error                        { return nil }
func (nullNotifier) NotifyAudio(context.Context, audio.Chunk) error                   { return nil }
func (nullNotifier) NotifyError(context.Context, string) error                        { return nil }

func segment(t *testing.T) audio.Segment {
	t.Helper()
	seg, err := audio.NewSegment(make([]byte, audio.SampleRate/10*audio.BytesPerSample), time.Now())
	if err != nil {
		t.Fatalf("building segment: %v", err)
	}
	return seg
}

func newSession(t *testing.T, oracle eot.Oracle, texts []string, resp *respfake.Responder, forceAfter, poll time.Duration) *Session {
	t.Helper()
	ctrl, err := turn.NewController(turn.Config{
		Oracle:      oracle,
		Transcriber: sttfake.NewTranscriberWithText(texts...),
		Responder:   resp,
		Notifier:    nullNotifier{},
		ForceAfter:  forceAfter,
	})
	if err != nil {
		t.Fatalf("building controller: %v", err)
	}
	s, err := New(Config{Controller: ctrl, PollInterval: poll})
	if err != nil {
		t.Fatalf("building session: %v", err)
	}
	return s
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSessionProcessesOfferedSegments(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	s := newSession(t,
		eotfake.NewOracle(eot.Verdict{Probability: 0.9, IsComplete: true}),
		[]string{"hello assistant"},
		resp, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Run(ctx)
	}()

	is.True(s.Offer(segment(t)))
	eventually(t, time.Second, func() bool { return len(resp.Turns()) == 1 })
	is.Equal(resp.Turns(), []string{"hello assistant"})

	cancel()
	wg.Wait()
}

// The forced flush must fire from the poll ticker alone, with no further
// audio arriving.
func TestSessionForcedFlushWithoutNewAudio(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	s := newSession(t,
		eotfake.NewOracle(eot.Verdict{Probability: 0.2}),
		[]string{"I need..."},
		resp, 100*time.Millisecond, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	s.Offer(segment(t))
	eventually(t, time.Second, func() bool { return len(resp.Turns()) == 1 })
	is.Equal(resp.Turns(), []string{"I need..."})
}

// Segments offered while a flush blocks are queued and processed strictly
// in arrival order once the flush completes.
func TestSessionQueuesSegmentsDuringFlush(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	resp.Block = make(chan struct{})
	s := newSession(t,
		eotfake.NewOracle(eot.Verdict{Probability: 0.9, IsComplete: true}),
		[]string{"first", "second", "third"},
		resp, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	s.Offer(segment(t))
	eventually(t, time.Second, func() bool { return len(resp.Turns()) == 1 })

	// Flush is now blocked inside the responder; these queue up.
	is.True(s.Offer(segment(t)))
	is.True(s.Offer(segment(t)))

	close(resp.Block)
	eventually(t, time.Second, func() bool { return len(resp.Turns()) == 3 })
	is.Equal(resp.Turns(), []string{"first", "second", "third"})
}

func TestSessionOfferDropsWhenQueueFull(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	ctrl, err := turn.NewController(turn.Config{
		Oracle:      eotfake.NewOracle(eot.Verdict{Probability: 0.9, IsComplete: true}),
		Transcriber: sttfake.NewTranscriberWithText("x"),
		Responder:   resp,
		Notifier:    nullNotifier{},
		ForceAfter:  time.Second,
	})
	is.NoErr(err)
	s, err := New(Config{Controller: ctrl, QueueDepth: 2})
	is.NoErr(err)

	// Session not running: the queue fills and overflow is dropped.
	is.True(s.Offer(segment(t)))
	is.True(s.Offer(segment(t)))
	is.True(!s.Offer(segment(t)))
}

func TestSessionDisconnectDiscardsBufferedText(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	s := newSession(t,
		eotfake.NewOracle(eot.Verdict{Probability: 0.1}),
		[]string{"never to be flushed"},
		resp, time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	s.Offer(segment(t))
	time.Sleep(50 * time.Millisecond) // let the loop buffer the fragment

	cancel()
	<-done
	is.Equal(len(resp.Turns()), 0) // buffered text discarded, never dispatched
}

func TestSessionIDsAreUnique(t *testing.T) {
	is := is.New(t)

	resp := respfake.NewResponder("ok")
	ctrl, err := turn.NewController(turn.Config{
		Oracle:      eotfake.NewOracle(),
		Transcriber: sttfake.NewTranscriberWithText(),
		Responder:   resp,
		Notifier:    nullNotifier{},
		ForceAfter:  time.Second,
	})
	is.NoErr(err)

	a, err := New(Config{Controller: ctrl})
	is.NoErr(err)
	b, err := New(Config{Controller: ctrl})
	is.NoErr(err)
	is.True(a.ID() != b.ID())
}
