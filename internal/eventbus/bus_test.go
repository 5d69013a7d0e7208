package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New()
	id1, ch1 := bus.Subscribe(4)
	id2, ch2 := bus.Subscribe(4)
	defer bus.Unsubscribe(id1)
	defer bus.Unsubscribe(id2)

	bus.PublishNew(TypeInterruptDetected, "t1", "", nil)

	e1 := <-ch1
	e2 := <-ch2
	assert.Equal(t, TypeInterruptDetected, e1.Type)
	assert.Equal(t, "t1", e1.ThreadID)
	assert.Equal(t, e1.ID, e2.ID)
	assert.NotEmpty(t, e1.ID)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	defer bus.Unsubscribe(id)

	bus.PublishNew(TypePollCompleted, "", "first", nil)
	bus.PublishNew(TypePollCompleted, "", "second", nil)

	e := <-ch
	assert.Equal(t, "first", e.Payload)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra event: %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	bus.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open)
}
