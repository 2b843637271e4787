package events

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestEmitFansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	bus := &Bus{Logger: zerolog.Nop(), Notifiers: []Notifier{first, second}}

	err := bus.Emit(context.Background(), TopicOrderCreated, Payload{"orderId": "ORD-1"})
	require.NoError(t, err)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, TopicOrderCreated, first.events[0].Topic)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	ok := &recordingNotifier{}
	bus := &Bus{Logger: zerolog.Nop(), Notifiers: []Notifier{failing, ok}}

	err := bus.Emit(context.Background(), TopicOrderCreated, nil)
	require.Error(t, err)
	// A failing notifier must not stop delivery to the others.
	require.Len(t, ok.events, 1)
}

func TestEmitRequiresTopic(t *testing.T) {
	bus := &Bus{Logger: zerolog.Nop()}
	require.Error(t, bus.Emit(context.Background(), "  ", nil))
}
