package controls

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chargeview/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chargeview/internal/testutil"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*kafka.ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *kafka.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) messages() []*kafka.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kafka.ProducerMessage(nil), p.msgs...)
}

func TestEventPublisher_Publish(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewEventPublisher(rec, "chargeview-test", nil)
	st := InitialState()
	st.Structure = "1ABC"
	st.ViewType = vtypes.ViewSurface

	require.NoError(t, pub.Publish(context.Background(), StateEvent{ID: "ev-1", Operation: OpView, State: st}))
	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, kafka.TopicControlsState, msgs[0].Topic)
	assert.Equal(t, []byte("1ABC"), msgs[0].Key)
	assert.Equal(t, kafka.EventControlsChanged, msgs[0].Headers["event_type"])

	env, err := kafka.DecodeEnvelope(msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "chargeview-test", env.Source)
	assert.Equal(t, OpView, env.Metadata["operation"])
	var got StateEvent
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, "ev-1", got.ID)
	assert.Equal(t, vtypes.ViewSurface, got.State.ViewType)
}

func TestEventPublisher_LoadGoesToBothTopics(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewEventPublisher(rec, "chargeview-test", nil)

	require.NoError(t, pub.Publish(context.Background(), StateEvent{Operation: OpLoad, State: InitialState()}))
	msgs := rec.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, kafka.TopicControlsState, msgs[0].Topic)
	assert.Equal(t, kafka.TopicStructureLoaded, msgs[1].Topic)
	assert.Nil(t, msgs[1].Key)
}

func TestEventPublisher_WithTopic(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewEventPublisher(rec, "chargeview-test", nil).WithTopic("viewer.state").WithTopic("")

	require.NoError(t, pub.Publish(context.Background(), StateEvent{Operation: OpLoad, State: InitialState()}))
	msgs := rec.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "viewer.state", msgs[0].Topic)
	assert.Equal(t, kafka.TopicStructureLoaded, msgs[1].Topic)
}

func TestEventPublisher_Run(t *testing.T) {
	rec := &recordingPublisher{err: errors.New(errors.ErrCodeMessageQueueError, "broker down")}
	log := testutil.NewMockLogger()
	pub := NewEventPublisher(rec, "chargeview-test", log)

	events := make(chan StateEvent, 2)
	events <- StateEvent{ID: "a", Operation: OpView, State: InitialState()}
	events <- StateEvent{ID: "b", Operation: OpColoring, State: InitialState()}
	close(events)

	done := make(chan struct{})
	go func() {
		pub.Run(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
	assert.Equal(t, 2, log.CountLevel("warn"))
	assert.True(t, log.HasMessage("warn", "failed to publish state event"))
}

func TestEventPublisher_RunStopsOnCancel(t *testing.T) {
	pub := NewEventPublisher(&recordingPublisher{}, "chargeview-test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pub.Run(ctx, make(chan StateEvent))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

//Personal.AI order the ending
