package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shalom-church/portal/internal/domain"
)

func TestPublishInvokesEveryHandlerDespiteFailures(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls []string
	d.Subscribe(EventContentPublished, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	d.Subscribe(EventContentPublished, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventType("other"), func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventContentPublished})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestContentPublishedPayload(t *testing.T) {
	n := domain.NotificationEvent{ContentType: domain.ContentSermon, Title: "Graça"}

	got, ok := Event{Payload: n}.ContentPublishedPayload()
	assert.True(t, ok)
	assert.Equal(t, n, got)

	got, ok = Event{Payload: &n}.ContentPublishedPayload()
	assert.True(t, ok)
	assert.Equal(t, "Graça", got.Title)

	_, ok = Event{Payload: "nope"}.ContentPublishedPayload()
	assert.False(t, ok)
}
