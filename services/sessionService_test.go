package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/errs"
	"go-restaurant-pos/models"
)

type recordedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingNotifier struct {
	events []recordedEvent
}

func (n *recordingNotifier) Broadcast(event string, payload interface{}) {
	n.events = append(n.events, recordedEvent{Event: event, Payload: payload})
}

func (n *recordingNotifier) BroadcastTo(room string, event string, payload interface{}) {
	n.events = append(n.events, recordedEvent{Room: room, Event: event, Payload: payload})
}

func (n *recordingNotifier) eventsNamed(event string) []recordedEvent {
	var out []recordedEvent
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeSessionStore struct {
	sessions map[primitive.ObjectID]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[primitive.ObjectID]*models.Session{}}
}

func (f *fakeSessionStore) Insert(ctx context.Context, session *models.Session) error {
	for _, s := range f.sessions {
		if s.Qr_code == session.Qr_code {
			return ErrDuplicate
		}
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return primitive.M{"_id": s.ID, "qr_code": s.Qr_code}, nil
}

func (f *fakeSessionStore) FindByQrCode(ctx context.Context, qrCode string, includeInactive bool) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.Qr_code != qrCode {
			continue
		}
		if !includeInactive && !s.Open() {
			continue
		}
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (f *fakeSessionStore) Find(ctx context.Context, filter SessionFilter) ([]primitive.M, error) {
	var out []primitive.M
	for _, s := range f.sessions {
		if filter.ActiveOnly && !s.Open() {
			continue
		}
		out = append(out, primitive.M{"_id": s.ID})
	}
	return out, nil
}

func (f *fakeSessionStore) FindActiveByTable(ctx context.Context, tableID primitive.ObjectID) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.Table_id == tableID && s.Open() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeSessionStore) UpsertMember(ctx context.Context, sessionID primitive.ObjectID, member models.SessionMember) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || !s.Open() {
		return nil, ErrNoMatch
	}
	for i := range s.Members {
		if s.Members[i].Client_id == member.Client_id {
			s.Members[i].User_label = member.User_label
			cp := *s
			return &cp, nil
		}
	}
	s.Members = append(s.Members, member)
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) AddOrderID(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || !s.Open() {
		return nil, ErrNoMatch
	}
	for _, existing := range s.Order_ids {
		if existing == orderID {
			cp := *s
			return &cp, nil
		}
	}
	s.Order_ids = append(s.Order_ids, orderID)
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) SetCheckoutAt(ctx context.Context, sessionID primitive.ObjectID, at time.Time) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || !s.Open() {
		return nil, ErrNoMatch
	}
	s.Checkout_at = &at
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.sessions, id)
	return s, nil
}

func newTestSessionService() (*SessionService, *fakeSessionStore, *recordingNotifier) {
	store := newFakeSessionStore()
	notifier := &recordingNotifier{}
	return NewSessionService(store, notifier), store, notifier
}

func TestCheckInGeneratesQrCode(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)

	// 16 random bytes hex encoded
	assert.Len(t, session.Qr_code, 32)
	assert.NotNil(t, session.Members)
	assert.Nil(t, session.Checkout_at)

	other, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)
	assert.NotEqual(t, session.Qr_code, other.Qr_code)
}

func TestCheckInSuppliedDuplicateIsConflict(t *testing.T) {
	svc, _, _ := newTestSessionService()

	_, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "table-at-the-window")
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "table-at-the-window")
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestJoinTwiceUpdatesLabelInPlace(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), session.Qr_code, "client-1", "Alice")
	require.NoError(t, err)

	updated, err := svc.Join(context.Background(), session.Qr_code, "client-1", "Alice on a new phone")
	require.NoError(t, err)

	require.Len(t, updated.Members, 1)
	assert.Equal(t, "Alice on a new phone", updated.Members[0].User_label)
}

func TestJoinRequiresClientIDAndLabel(t *testing.T) {
	svc, _, _ := newTestSessionService()

	_, err := svc.Join(context.Background(), "whatever", "", "Alice")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.Join(context.Background(), "whatever", "client-1", "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestJoinAfterCheckoutIsInvalidState(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)
	_, err = svc.Checkout(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), session.Qr_code, "client-1", "Alice")
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestJoinUnknownQrCodeIsNotFound(t *testing.T) {
	svc, _, _ := newTestSessionService()

	_, err := svc.Join(context.Background(), "no-such-code", "client-1", "Alice")
	assert.True(t, errs.IsNotFound(err))
}

func TestAttachOrderIsIdempotent(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)

	orderID := primitive.NewObjectID()
	_, err = svc.AttachOrder(context.Background(), session.ID, orderID)
	require.NoError(t, err)
	updated, err := svc.AttachOrder(context.Background(), session.ID, orderID)
	require.NoError(t, err)

	assert.Len(t, updated.Order_ids, 1)
}

func TestAttachOrderToClosedSessionIsInvalidState(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)
	_, err = svc.Checkout(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = svc.AttachOrder(context.Background(), session.ID, primitive.NewObjectID())
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestCheckoutIsNotIdempotent(t *testing.T) {
	svc, store, notifier := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)

	closed, err := svc.Checkout(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.Checkout_at)
	firstCheckout := *closed.Checkout_at

	// once to the session room, once to the branch room
	assert.Len(t, notifier.eventsNamed(EventSessionCheckout), 2)

	_, err = svc.Checkout(context.Background(), session.ID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))

	persisted, err := store.FindByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, firstCheckout, *persisted.Checkout_at)
	assert.Len(t, notifier.eventsNamed(EventSessionCheckout), 2)
}

func TestCheckoutUnknownSessionIsNotFound(t *testing.T) {
	svc, _, _ := newTestSessionService()

	_, err := svc.Checkout(context.Background(), primitive.NewObjectID())
	assert.True(t, errs.IsNotFound(err))
}

func TestMemberLabel(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.CheckIn(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), session.Qr_code, "client-1", "Alice")
	require.NoError(t, err)

	label, ok := svc.MemberLabel(context.Background(), session.ID, "client-1")
	assert.True(t, ok)
	assert.Equal(t, "Alice", label)

	_, ok = svc.MemberLabel(context.Background(), session.ID, "client-2")
	assert.False(t, ok)
}

func TestFindActiveByTableReturnsNilWhenFree(t *testing.T) {
	svc, _, _ := newTestSessionService()

	session, err := svc.FindActiveByTable(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, session)
}
