package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/errs"
	"go-restaurant-pos/gateway"
	"go-restaurant-pos/models"
)

type fakePaymentStore struct {
	payments map[primitive.ObjectID]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[primitive.ObjectID]*models.Payment{}}
}

func (f *fakePaymentStore) Insert(ctx context.Context, payment *models.Payment) error {
	cp := *payment
	f.payments[payment.ID] = &cp
	return nil
}

func (f *fakePaymentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return primitive.M{"_id": p.ID, "status": p.Status}, nil
}

func (f *fakePaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.Transaction_id == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakePaymentStore) Find(ctx context.Context, filter PaymentFilter) ([]primitive.M, error) {
	var out []primitive.M
	for _, p := range f.payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, primitive.M{"_id": p.ID})
	}
	return out, nil
}

func (f *fakePaymentStore) Update(ctx context.Context, id primitive.ObjectID, update PaymentUpdate) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Amount != nil {
		p.Amount = *update.Amount
	}
	if update.Method != nil {
		p.Method = *update.Method
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) UpdateStatusAndDetails(ctx context.Context, id primitive.ObjectID, status string, details map[string]interface{}) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Status = status
	if details != nil {
		p.Payment_details = details
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.payments, id)
	return p, nil
}

type fakeGateway struct {
	chargeStatus  string
	sourceQR      string
	sourceCalls   int
	chargeCalls   int
	retrieveCalls int
	failSource    bool
}

func (f *fakeGateway) CreateSource(ctx context.Context, amountSatang int64) (*gateway.Source, error) {
	f.sourceCalls++
	if f.failSource {
		return nil, errors.New("omise: connection refused")
	}
	source := &gateway.Source{ID: "src_test_1", Type: "promptpay", Amount: amountSatang, Currency: "thb"}
	if f.sourceQR != "" {
		source.ScannableCode = &gateway.ScannableCode{}
		source.ScannableCode.Image.DownloadURI = f.sourceQR
	}
	return source, nil
}

func (f *fakeGateway) CreateCharge(ctx context.Context, amountSatang int64, sourceID, description string, metadata map[string]string, returnURI string) (*gateway.Charge, error) {
	f.chargeCalls++
	return &gateway.Charge{
		ID:          "chrg_test_1",
		Status:      "pending",
		Amount:      amountSatang,
		Currency:    "thb",
		Description: description,
		Snapshot:    map[string]interface{}{"id": "chrg_test_1", "status": "pending"},
	}, nil
}

func (f *fakeGateway) RetrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	f.retrieveCalls++
	return &gateway.Charge{
		ID:       chargeID,
		Status:   f.chargeStatus,
		Snapshot: map[string]interface{}{"id": chargeID, "status": f.chargeStatus},
	}, nil
}

func newTestPaymentService() (*PaymentService, *fakePaymentStore, *fakeGateway, *recordingNotifier) {
	store := newFakePaymentStore()
	gw := &fakeGateway{chargeStatus: "pending"}
	notifier := &recordingNotifier{}
	return NewPaymentService(store, gw, notifier, "https://example.com/return"), store, gw, notifier
}

func promptPayRequest(amount float64) CreatePromptPayRequest {
	return CreatePromptPayRequest{
		Order_id:   primitive.NewObjectID(),
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Amount:     amount,
	}
}

func TestCreatePromptPayBelowFloorNeverTouchesGateway(t *testing.T) {
	svc, _, gw, _ := newTestPaymentService()

	_, err := svc.CreatePromptPay(context.Background(), promptPayRequest(19.99))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, 0, gw.sourceCalls)
	assert.Equal(t, 0, gw.chargeCalls)
}

func TestCreatePromptPayPersistsPendingPayment(t *testing.T) {
	svc, _, gw, _ := newTestPaymentService()
	gw.sourceQR = "https://api.omise.co/sources/src_test_1/qr.png"

	payment, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPromptPay, payment.Method)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, "src_test_1", payment.Source_id)
	assert.Equal(t, "chrg_test_1", payment.Transaction_id)
	assert.Equal(t, gw.sourceQR, payment.Qr_code_image)
	assert.NotNil(t, payment.Payment_details)

	require.NotNil(t, payment.Expires_at)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *payment.Expires_at, time.Minute)
}

func TestCreatePromptPayFallsBackToChargeQrURL(t *testing.T) {
	svc, _, _, _ := newTestPaymentService()

	payment, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	require.NoError(t, err)
	assert.Equal(t, gateway.FallbackQRCodeURL("chrg_test_1"), payment.Qr_code_image)
}

func TestCreatePromptPayGatewayFailureIsGatewayError(t *testing.T) {
	svc, store, gw, _ := newTestPaymentService()
	gw.failSource = true

	_, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	assert.Equal(t, errs.KindGateway, errs.KindOf(err))
	assert.Empty(t, store.payments)
}

func TestWebhookExpiredMapsToFailedWithSingleEmission(t *testing.T) {
	svc, _, gw, notifier := newTestPaymentService()

	payment, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	require.NoError(t, err)
	notifier.events = nil
	gw.chargeStatus = "expired"

	updated, err := svc.ReconcileFromWebhook(context.Background(), payment.Transaction_id, "expired")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, updated.Status)

	// branch room and order room, exactly once each
	events := notifier.eventsNamed(EventPaymentStatusChanged)
	require.Len(t, events, 2)
	assert.Equal(t, BranchRoom(payment.Branch_id.Hex()), events[0].Room)
	assert.Equal(t, OrderRoom(payment.Order_id.Hex()), events[1].Room)
}

func TestWebhookUnknownChargeIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestPaymentService()

	_, err := svc.ReconcileFromWebhook(context.Background(), "chrg_unknown", "successful")
	assert.True(t, errs.IsNotFound(err))
}

func TestCheckPromptPayStatusPaidRoundTrip(t *testing.T) {
	svc, _, gw, notifier := newTestPaymentService()

	payment, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	require.NoError(t, err)
	notifier.events = nil
	gw.chargeStatus = "successful"

	updated, err := svc.CheckPromptPayStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Status)
	assert.Len(t, notifier.eventsNamed(EventPaymentStatusChanged), 2)

	// a second poll is a no-op: terminal payments never hit the gateway again
	retrievesSoFar := gw.retrieveCalls
	again, err := svc.CheckPromptPayStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, again.Status)
	assert.Equal(t, retrievesSoFar, gw.retrieveCalls)
	assert.Len(t, notifier.eventsNamed(EventPaymentStatusChanged), 2)
}

func TestCheckPromptPayStatusPendingStaysPending(t *testing.T) {
	svc, _, _, notifier := newTestPaymentService()

	payment, err := svc.CreatePromptPay(context.Background(), promptPayRequest(150))
	require.NoError(t, err)
	notifier.events = nil

	updated, err := svc.CheckPromptPayStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, updated.Status)
	assert.Empty(t, notifier.eventsNamed(EventPaymentStatusChanged))
}

func TestCheckPromptPayStatusRejectsCashPayment(t *testing.T) {
	svc, _, _, _ := newTestPaymentService()

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		Order_id:   primitive.NewObjectID(),
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Amount:     120,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)

	_, err = svc.CheckPromptPayStatus(context.Background(), payment.ID)
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestCreateCashPaymentDefaultsToPending(t *testing.T) {
	svc, _, _, _ := newTestPaymentService()

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		Order_id:   primitive.NewObjectID(),
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Amount:     120,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestCreateRejectsPromptPayMethod(t *testing.T) {
	svc, _, _, _ := newTestPaymentService()

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		Order_id:   primitive.NewObjectID(),
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Amount:     120,
		Method:     models.PaymentPromptPay,
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestUpdateStatusSettlesCashPayment(t *testing.T) {
	svc, _, _, notifier := newTestPaymentService()

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		Order_id:   primitive.NewObjectID(),
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Amount:     120,
		Method:     models.PaymentCash,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), payment.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Status)
	assert.Len(t, notifier.eventsNamed(EventPaymentStatusChanged), 2)

	_, err = svc.UpdateStatus(context.Background(), payment.ID, "settled-ish")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
