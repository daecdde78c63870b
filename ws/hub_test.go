package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Message
	failed bool
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("connection reset")
	}
	f.frames = append(f.frames, v.(Message))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.frames))
	copy(out, f.frames)
	return out
}

func connect(h *Hub) (*client, *fakeConn) {
	fc := &fakeConn{}
	cl := &client{id: uuid.NewString(), conn: fc}
	h.register(cl)
	return cl, fc
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := NewHub()
	_, c1 := connect(h)
	_, c2 := connect(h)

	h.Broadcast("newOrder", "payload")

	require.Len(t, c1.received(), 1)
	require.Len(t, c2.received(), 1)
	assert.Equal(t, "newOrder", c1.received()[0].Event)
}

func TestBroadcastToReachesOnlyRoomMembers(t *testing.T) {
	h := NewHub()
	inRoom, c1 := connect(h)
	_, c2 := connect(h)

	h.handleClientMessage(inRoom, Message{Event: "joinBranchRoom", Payload: "b1"})

	h.BroadcastTo("branch-b1", "orderStatusChanged", "payload")

	// the joining client got an ack frame plus the broadcast
	frames := c1.received()
	require.Len(t, frames, 2)
	assert.Equal(t, "joinedRoom", frames[0].Event)
	assert.Equal(t, "branch-b1", frames[0].Payload)
	assert.Equal(t, "orderStatusChanged", frames[1].Event)

	assert.Empty(t, c2.received())
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	h := NewHub()
	cl, fc := connect(h)

	h.handleClientMessage(cl, Message{Event: "joinOrderRoom", Payload: "o1"})
	h.handleClientMessage(cl, Message{Event: "leaveOrderRoom", Payload: "o1"})

	h.BroadcastTo("order-o1", "orderStatusChanged", "payload")

	frames := fc.received()
	require.Len(t, frames, 2)
	assert.Equal(t, "joinedRoom", frames[0].Event)
	assert.Equal(t, "leftRoom", frames[1].Event)
}

func TestRoomMembershipSurvivesUnrelatedTraffic(t *testing.T) {
	h := NewHub()
	cl, fc := connect(h)

	h.handleClientMessage(cl, Message{Event: "joinSessionRoom", Payload: "s1"})

	h.BroadcastTo("session-s1", "sessionCheckout", "payload")
	h.BroadcastTo("session-s1", "orderStatusChanged", "payload")

	// membership is not torn down when the entity closes; both frames land
	assert.Len(t, fc.received(), 3)
}

func TestUnknownEventAndBadPayloadAreIgnored(t *testing.T) {
	h := NewHub()
	cl, fc := connect(h)

	h.handleClientMessage(cl, Message{Event: "selfDestruct", Payload: "s1"})
	h.handleClientMessage(cl, Message{Event: "joinSessionRoom", Payload: 42})
	h.handleClientMessage(cl, Message{Event: "joinSessionRoom", Payload: ""})

	assert.Empty(t, fc.received())
}

func TestFailedWriteEvictsClient(t *testing.T) {
	h := NewHub()
	cl, fc := connect(h)
	_, healthy := connect(h)

	h.handleClientMessage(cl, Message{Event: "joinBranchRoom", Payload: "b1"})
	fc.failed = true

	h.Broadcast("newOrder", "payload")

	assert.True(t, fc.closed)
	assert.Len(t, healthy.received(), 1)

	// the evicted client is gone from its rooms too
	h.BroadcastTo("branch-b1", "newOrder", "payload")
	h.mu.Lock()
	_, stillRegistered := h.clients[cl]
	h.mu.Unlock()
	assert.False(t, stillRegistered)
}
