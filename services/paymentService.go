package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/errs"
	"go-restaurant-pos/gateway"
	"go-restaurant-pos/models"
)

// minPromptPayAmount is the smallest charge the gateway accepts, in THB.
const minPromptPayAmount = 20.0

// promptPayExpiry is how long a generated QR stays scannable.
const promptPayExpiry = 24 * time.Hour

// PaymentFilter narrows payment list queries. Nil/zero fields are ignored.
type PaymentFilter struct {
	OrderID   *primitive.ObjectID
	SessionID *primitive.ObjectID
	BranchID  *primitive.ObjectID
	Status    string
	Method    string
}

// PaymentUpdate carries a partial update; nil fields are left untouched.
type PaymentUpdate struct {
	Amount *float64
	Method *string
	Status *string
}

// PaymentStore is the persistence surface for payments.
type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	Find(ctx context.Context, filter PaymentFilter) ([]primitive.M, error)
	Update(ctx context.Context, id primitive.ObjectID, update PaymentUpdate) (*models.Payment, error)
	UpdateStatusAndDetails(ctx context.Context, id primitive.ObjectID, status string, details map[string]interface{}) (*models.Payment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
}

// PaymentGateway is the slice of the Omise API the payment flow needs.
type PaymentGateway interface {
	CreateSource(ctx context.Context, amountSatang int64) (*gateway.Source, error)
	CreateCharge(ctx context.Context, amountSatang int64, sourceID, description string, metadata map[string]string, returnURI string) (*gateway.Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error)
}

// CreatePaymentRequest records a cash or card settlement.
type CreatePaymentRequest struct {
	Order_id   primitive.ObjectID `json:"order_id" validate:"required"`
	Session_id primitive.ObjectID `json:"session_id" validate:"required"`
	Branch_id  primitive.ObjectID `json:"branch_id" validate:"required"`
	Amount     float64            `json:"amount" validate:"required,gt=0"`
	Method     string             `json:"method" validate:"required,eq=cash|eq=card"`
	Status     string             `json:"status"`
}

// CreatePromptPayRequest starts a PromptPay charge for an order.
type CreatePromptPayRequest struct {
	Order_id    primitive.ObjectID `json:"order_id" validate:"required"`
	Session_id  primitive.ObjectID `json:"session_id" validate:"required"`
	Branch_id   primitive.ObjectID `json:"branch_id" validate:"required"`
	Amount      float64            `json:"amount" validate:"required,gt=0"`
	Description string             `json:"description"`
	Metadata    map[string]string  `json:"metadata"`
}

// PaymentService owns payment bookkeeping: recording cash and card
// settlements and driving the PromptPay charge lifecycle against the
// gateway.
type PaymentService struct {
	store     PaymentStore
	gateway   PaymentGateway
	notifier  Notifier
	returnURI string
}

func NewPaymentService(store PaymentStore, gw PaymentGateway, notifier Notifier, returnURI string) *PaymentService {
	return &PaymentService{store: store, gateway: gw, notifier: notifier, returnURI: returnURI}
}

// Create records a cash or card payment. These are settled out of band, so
// the caller chooses the status; it defaults to pending.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if req.Method != models.PaymentCash && req.Method != models.PaymentCard {
		return nil, errs.Validation("payment method must be cash or card")
	}
	if req.Amount <= 0 {
		return nil, errs.Validation("amount must be positive")
	}
	status := req.Status
	if status == "" {
		status = models.PaymentPending
	}
	if !validPaymentStatus(status) {
		return nil, errs.Validation("unknown payment status %q", status)
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		ID:         primitive.NewObjectID(),
		Order_id:   req.Order_id,
		Session_id: req.Session_id,
		Branch_id:  req.Branch_id,
		Amount:     req.Amount,
		Method:     req.Method,
		Status:     status,
		Created_at: now,
		Updated_at: now,
	}
	if err := s.store.Insert(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatePromptPay creates a PromptPay source and charge at the gateway and
// persists the pending payment with a scannable QR image URL and a snapshot
// of the charge.
func (s *PaymentService) CreatePromptPay(ctx context.Context, req CreatePromptPayRequest) (*models.Payment, error) {
	if req.Amount < minPromptPayAmount {
		return nil, errs.Validation("amount must be at least %.0f THB", minPromptPayAmount)
	}

	amountSatang := int64(req.Amount * 100)

	source, err := s.gateway.CreateSource(ctx, amountSatang)
	if err != nil {
		return nil, errs.Gateway(err, "create promptpay source")
	}

	description := req.Description
	if description == "" {
		description = "Payment for order: " + req.Order_id.Hex()
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]string{"orderId": req.Order_id.Hex()}
	}

	charge, err := s.gateway.CreateCharge(ctx, amountSatang, source.ID, description, metadata, s.returnURI)
	if err != nil {
		return nil, errs.Gateway(err, "create promptpay charge")
	}

	qrImage := source.QRCodeURL()
	if qrImage == "" {
		qrImage = gateway.FallbackQRCodeURL(charge.ID)
	}

	now := time.Now().UTC()
	expires := now.Add(promptPayExpiry)
	payment := &models.Payment{
		ID:              primitive.NewObjectID(),
		Order_id:        req.Order_id,
		Session_id:      req.Session_id,
		Branch_id:       req.Branch_id,
		Amount:          req.Amount,
		Method:          models.PaymentPromptPay,
		Status:          models.PaymentPending,
		Source_id:       source.ID,
		Transaction_id:  charge.ID,
		Payment_details: charge.Snapshot,
		Qr_code_image:   qrImage,
		Expires_at:      &expires,
		Created_at:      now,
		Updated_at:      now,
	}
	if err := s.store.Insert(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ReconcileFromWebhook applies a charge event pushed by the gateway. The
// event's status decides the mapping; a fresh retrieve refreshes the stored
// snapshot.
func (s *PaymentService) ReconcileFromWebhook(ctx context.Context, chargeID, chargeStatus string) (*models.Payment, error) {
	payment, err := s.store.FindByTransactionID(ctx, chargeID)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("no payment for charge %s", chargeID)
	}
	if err != nil {
		return nil, err
	}

	charge, err := s.gateway.RetrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, errs.Gateway(err, "retrieve charge %s", chargeID)
	}
	return s.reconcile(ctx, payment, chargeStatus, charge)
}

// CheckPromptPayStatus polls the gateway for a pending PromptPay payment and
// applies any status change. Payments already in a terminal state are
// returned as-is without a gateway call.
func (s *PaymentService) CheckPromptPayStatus(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("payment %s not found", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	if payment.Method != models.PaymentPromptPay {
		return nil, errs.InvalidState("payment %s is not a promptpay payment", id.Hex())
	}
	if payment.Status != models.PaymentPending {
		return payment, nil
	}

	charge, err := s.gateway.RetrieveCharge(ctx, payment.Transaction_id)
	if err != nil {
		return nil, errs.Gateway(err, "retrieve charge %s", payment.Transaction_id)
	}
	return s.reconcile(ctx, payment, charge.Status, charge)
}

// reconcile maps a gateway charge status onto the payment and persists and
// announces the change. Both the webhook and the polling path funnel through
// here so the mapping can never drift between them.
func (s *PaymentService) reconcile(ctx context.Context, payment *models.Payment, gatewayStatus string, charge *gateway.Charge) (*models.Payment, error) {
	status := mapChargeStatus(gatewayStatus)
	if status == payment.Status && charge == nil {
		return payment, nil
	}

	var details map[string]interface{}
	if charge != nil {
		details = charge.Snapshot
	}

	updated, err := s.store.UpdateStatusAndDetails(ctx, payment.ID, status, details)
	if err != nil {
		return nil, err
	}

	if status != payment.Status {
		s.notifier.BroadcastTo(BranchRoom(updated.Branch_id.Hex()), EventPaymentStatusChanged, updated)
		s.notifier.BroadcastTo(OrderRoom(updated.Order_id.Hex()), EventPaymentStatusChanged, updated)
	}
	return updated, nil
}

// mapChargeStatus translates Omise charge statuses into payment statuses.
// Anything unrecognized stays pending rather than guessing.
func mapChargeStatus(chargeStatus string) string {
	switch chargeStatus {
	case "successful":
		return models.PaymentPaid
	case "failed", "expired":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

// UpdateStatus sets a payment status by hand, for cash and card settlements
// closed at the counter.
func (s *PaymentService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Payment, error) {
	if !validPaymentStatus(status) {
		return nil, errs.Validation("unknown payment status %q", status)
	}
	updated, err := s.store.Update(ctx, id, PaymentUpdate{Status: &status})
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("payment %s not found", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	s.notifier.BroadcastTo(BranchRoom(updated.Branch_id.Hex()), EventPaymentStatusChanged, updated)
	s.notifier.BroadcastTo(OrderRoom(updated.Order_id.Hex()), EventPaymentStatusChanged, updated)
	return updated, nil
}

func (s *PaymentService) FindByID(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	resolved, err := s.store.FindByIDResolved(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("payment %s not found", id.Hex())
	}
	return resolved, err
}

func (s *PaymentService) Find(ctx context.Context, filter PaymentFilter) ([]primitive.M, error) {
	return s.store.Find(ctx, filter)
}

func (s *PaymentService) Update(ctx context.Context, id primitive.ObjectID, update PaymentUpdate) (*models.Payment, error) {
	if update.Status != nil && !validPaymentStatus(*update.Status) {
		return nil, errs.Validation("unknown payment status %q", *update.Status)
	}
	if update.Amount != nil && *update.Amount <= 0 {
		return nil, errs.Validation("amount must be positive")
	}
	updated, err := s.store.Update(ctx, id, update)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("payment %s not found", id.Hex())
	}
	return updated, err
}

func (s *PaymentService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	deleted, err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("payment %s not found", id.Hex())
	}
	return deleted, err
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentExpired:
		return true
	}
	return false
}
