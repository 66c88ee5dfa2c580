package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	t.Parallel()
	dispatcher := NewInMemoryDispatcher()

	var got []EventType
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("handler invocations: got %d, want 2", len(got))
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()
	dispatcher := NewInMemoryDispatcher()

	invoked := false
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		invoked = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventCommentAdded}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !invoked {
		t.Error("second handler not invoked after first errored")
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	t.Parallel()
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Error("handler invoked for foreign event type")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
