package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/errs"
	"go-restaurant-pos/models"
)

// Store sentinels. Repositories translate their engine's errors into these so
// the services can map them onto the API error taxonomy.
var (
	// ErrNotFound: an id or key did not resolve to a document.
	ErrNotFound = errors.New("not found")
	// ErrNoMatch: a conditional update matched nothing, either because the
	// document is missing or because its state precondition failed.
	ErrNoMatch = errors.New("no document matched")
	// ErrDuplicate: a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate key")
)

// SessionFilter narrows session list queries. Nil/zero fields are ignored.
type SessionFilter struct {
	BranchID   *primitive.ObjectID
	TableID    *primitive.ObjectID
	ActiveOnly bool
}

// SessionStore is the persistence surface the session lifecycle needs. Every
// mutation of the member and order-id arrays is a single atomic operation
// conditioned on the session still being open; there is no read-modify-save
// path for those fields.
type SessionStore interface {
	Insert(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error)
	FindByQrCode(ctx context.Context, qrCode string, includeInactive bool) (*models.Session, error)
	Find(ctx context.Context, filter SessionFilter) ([]primitive.M, error)
	FindActiveByTable(ctx context.Context, tableID primitive.ObjectID) (*models.Session, error)

	// UpsertMember updates the label of an existing member with the same
	// client id, or appends a new member. Returns ErrNoMatch when the
	// session is missing or checked out.
	UpsertMember(ctx context.Context, sessionID primitive.ObjectID, member models.SessionMember) (*models.Session, error)
	// AddOrderID appends the order id if absent. Returns ErrNoMatch when
	// the session is missing or checked out.
	AddOrderID(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error)
	// SetCheckoutAt stamps the checkout time on a still-open session.
	// Returns ErrNoMatch when the session is missing or already closed.
	SetCheckoutAt(ctx context.Context, sessionID primitive.ObjectID, at time.Time) (*models.Session, error)

	Delete(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
}

// SessionService owns check-in, member joins, order attachment and checkout
// for dining sessions.
type SessionService struct {
	store    SessionStore
	notifier Notifier
}

func NewSessionService(store SessionStore, notifier Notifier) *SessionService {
	return &SessionService{store: store, notifier: notifier}
}

// qrCodeAttempts bounds the retry loop on generated-token collisions. With
// 128 bits of entropy a single collision is already implausible.
const qrCodeAttempts = 3

func generateQrCode() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("qr code entropy source failed: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// CheckIn opens a new session on a table. When qrCode is empty a random
// token is generated; uniqueness is guaranteed by the storage index, with a
// retry on the (theoretical) generated collision. A caller-supplied duplicate
// is a conflict, not something to retry.
func (s *SessionService) CheckIn(ctx context.Context, branchID, tableID primitive.ObjectID, qrCode string) (*models.Session, error) {
	supplied := qrCode != ""

	for attempt := 0; attempt < qrCodeAttempts; attempt++ {
		code := qrCode
		if !supplied {
			code = generateQrCode()
		}

		now := time.Now().UTC()
		session := &models.Session{
			ID:         primitive.NewObjectID(),
			Branch_id:  branchID,
			Table_id:   tableID,
			Qr_code:    code,
			Members:    []models.SessionMember{},
			Checkin_at: now,
			Order_ids:  []primitive.ObjectID{},
			Created_at: now,
			Updated_at: now,
		}

		err := s.store.Insert(ctx, session)
		if errors.Is(err, ErrDuplicate) {
			if supplied {
				return nil, errs.Conflict("qr code %q is already in use", code)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	return nil, errs.Conflict("could not allocate a unique qr code")
}

// Join adds a member to the session behind a QR code. Joining twice with the
// same client id updates the label in place, so a page refresh does not
// produce a duplicate member.
func (s *SessionService) Join(ctx context.Context, qrCode, clientID, userLabel string) (*models.Session, error) {
	if clientID == "" {
		return nil, errs.Validation("client id is required")
	}
	if userLabel == "" {
		return nil, errs.Validation("user label is required")
	}

	// closed sessions are still looked up here so the caller gets a
	// precise "already checked out" instead of a generic not-found
	session, err := s.store.FindByQrCode(ctx, qrCode, true)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("session with qr code %q not found", qrCode)
	}
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, errs.InvalidState("session is already checked out")
	}

	member := models.SessionMember{
		Client_id:  clientID,
		User_label: userLabel,
		Joined_at:  time.Now().UTC(),
	}
	updated, err := s.store.UpsertMember(ctx, session.ID, member)
	if errors.Is(err, ErrNoMatch) {
		return nil, s.closedOrMissing(ctx, session.ID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachOrder appends an order reference to an open session. Attaching the
// same order twice leaves the list unchanged.
func (s *SessionService) AttachOrder(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error) {
	updated, err := s.store.AddOrderID(ctx, sessionID, orderID)
	if errors.Is(err, ErrNoMatch) {
		return nil, s.closedOrMissing(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Checkout closes the session permanently. A second checkout is an error,
// not a no-op, and does not move the original timestamp.
func (s *SessionService) Checkout(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, error) {
	updated, err := s.store.SetCheckoutAt(ctx, sessionID, time.Now().UTC())
	if errors.Is(err, ErrNoMatch) {
		if _, ferr := s.findExisting(ctx, sessionID); ferr != nil {
			return nil, ferr
		}
		return nil, errs.InvalidState("session already checked out")
	}
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastTo(SessionRoom(updated.ID.Hex()), EventSessionCheckout, updated)
	s.notifier.BroadcastTo(BranchRoom(updated.Branch_id.Hex()), EventSessionCheckout, updated)
	return updated, nil
}

// MemberLabel resolves the display label of a session member, best effort.
func (s *SessionService) MemberLabel(ctx context.Context, sessionID primitive.ObjectID, clientID string) (string, bool) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return "", false
	}
	for _, m := range session.Members {
		if m.Client_id == clientID {
			return m.User_label, true
		}
	}
	return "", false
}

func (s *SessionService) FindByID(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	resolved, err := s.store.FindByIDResolved(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("session %s not found", id.Hex())
	}
	return resolved, err
}

// FindByQrCode looks a session up by its QR token. Closed sessions are
// excluded unless includeInactive is set; joining decides separately.
func (s *SessionService) FindByQrCode(ctx context.Context, qrCode string, includeInactive bool) (*models.Session, error) {
	session, err := s.store.FindByQrCode(ctx, qrCode, includeInactive)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("session with qr code %q not found", qrCode)
	}
	return session, err
}

func (s *SessionService) Find(ctx context.Context, filter SessionFilter) ([]primitive.M, error) {
	return s.store.Find(ctx, filter)
}

// FindActiveByTable returns the open session on a table, or nil when the
// table has none.
func (s *SessionService) FindActiveByTable(ctx context.Context, tableID primitive.ObjectID) (*models.Session, error) {
	session, err := s.store.FindActiveByTable(ctx, tableID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return session, err
}

// Delete removes a session administratively.
func (s *SessionService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	deleted, err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("session %s not found", id.Hex())
	}
	return deleted, err
}

// closedOrMissing turns a failed conditional update into the precise error:
// the session either does not exist or is already checked out.
func (s *SessionService) closedOrMissing(ctx context.Context, sessionID primitive.ObjectID) error {
	if _, err := s.findExisting(ctx, sessionID); err != nil {
		return err
	}
	return errs.InvalidState("cannot modify a checked-out session")
}

func (s *SessionService) findExisting(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("session %s not found", sessionID.Hex())
	}
	return session, err
}
