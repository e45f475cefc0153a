package events

import (
	"context"

	"github.com/parleyvoice/parley/pkg/responder"
)

// publishingResponder decorates a Responder, emitting a finalized-turn
// event for every dispatched turn.
type publishingResponder struct {
	inner responder.Responder
	pub   *Publisher
}

// WrapResponder returns a Responder that publishes each finalized turn
// before delegating to inner.
func WrapResponder(inner responder.Responder, pub *Publisher) responder.Responder {
	return &publishingResponder{inner: inner, pub: pub}
}

func (r *publishingResponder) Respond(ctx context.Context, userText string) (*responder.Reply, error) {
	r.pub.Publish(ctx, userText)
	return r.inner.Respond(ctx, userText)
}
