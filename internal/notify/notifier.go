// Package notify delivers balance-change notifications to wallet owners.
// Delivery failure is always non-fatal to the caller: the poller logs and
// moves on.
package notify

import (
	"context"
	"errors"
)

// Sink attempts delivery of a message to a chat recipient. Implementations
// must never panic on delivery failure; they return an error the poller
// absorbs per wallet.
type Sink interface {
	// Name returns the sink identifier (e.g. "telegram", "kafka").
	Name() string
	// Send delivers text to the chat identified by chatID.
	Send(ctx context.Context, chatID int64, text string) error
}

// Multi fans a notification out to every sink. All sinks are attempted;
// their errors are joined.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out sink over the given sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string { return "multi" }

// Send attempts delivery on every sink and returns the joined errors, or
// nil when all succeeded.
func (m *Multi) Send(ctx context.Context, chatID int64, text string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Send(ctx, chatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
