package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestMultiPublisher(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}
	m := NewMultiPublisher(ok, nil, failing, NewLogPublisher(zerolog.Nop()))

	err := m.Publish(context.Background(), Event{Type: TypeEventCreated, EntityID: 3})
	if err == nil || !errors.Is(err, failing.err) {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(ok.events) != 1 || len(failing.events) != 1 {
		t.Errorf("every publisher should receive the event")
	}
}

func TestEventTopic(t *testing.T) {
	tests := map[string]string{
		TypeNewsletterPublished: "newsletter",
		TypeAnnouncementCreated: "announcement",
		TypeEventCreated:        "event",
		"plain":                 "plain",
	}
	for typ, want := range tests {
		if got := (Event{Type: typ}).Topic(); got != want {
			t.Errorf("Topic(%q) = %q, want %q", typ, got, want)
		}
	}
}
