// Package messaging publishes content events after they are committed.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event types
const (
	TypeNewsletterPublished = "newsletter.published"
	TypeAnnouncementCreated = "announcement.created"
	TypeEventCreated        = "event.created"
)

// Event is a notification about new or published content
type Event struct {
	Type       string    `json:"type"`
	EntityID   int64     `json:"entityId"`
	Title      string    `json:"title"`
	ActorID    int64     `json:"actorId,omitempty"`
	Recipients int64     `json:"recipients,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Topic returns the content kind of the event, "newsletter" for newsletter.published
func (e Event) Topic() string {
	topic, _, _ := strings.Cut(e.Type, ".")
	return topic
}

// Publisher delivers content events
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// LogPublisher writes events to the log
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(_ context.Context, evt Event) error {
	p.logger.Info().
		Str("type", evt.Type).
		Int64("entityID", evt.EntityID).
		Str("title", evt.Title).
		Msg("Content event")
	return nil
}

// MultiPublisher sends every event to all of its publishers
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher combines publishers; nil entries are skipped
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish delivers evt to every publisher and joins their errors
func (m *MultiPublisher) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
