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

type fakeOrderStore struct {
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeOrderStore) Insert(ctx context.Context, order *models.Order) error {
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return primitive.M{"_id": o.ID, "status": o.Status}, nil
}

func (f *fakeOrderStore) Find(ctx context.Context, filter OrderFilter) ([]primitive.M, error) {
	var out []primitive.M
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, primitive.M{"_id": o.ID, "status": o.Status})
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNoMatch
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.orders, id)
	return o, nil
}

func (f *fakeOrderStore) WeeklySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]DailySales, error) {
	return nil, nil
}

func (f *fakeOrderStore) HourlySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]HourlySales, error) {
	return []HourlySales{
		{Hour: 12, TotalSales: 640, Count: 4},
		{Hour: 19, TotalSales: 1280, Count: 7},
	}, nil
}

func (f *fakeOrderStore) SalesByPeriod(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time, groupBy string) ([]PeriodSalesRow, error) {
	return []PeriodSalesRow{
		{Period: PeriodKey{Year: 2025, Month: 6, Day: 2}, TotalSales: 900, OrderCount: 4, CustomerCount: 3},
	}, nil
}

func (f *fakeOrderStore) PopularMenuItems(ctx context.Context, branchID *primitive.ObjectID, limit int, start, end time.Time) ([]PopularMenuItem, error) {
	return []PopularMenuItem{
		{Name: "Pad Thai", TotalCount: 30, Orders: 20},
		{Name: "Green Curry", TotalCount: 10, Orders: 8},
	}, nil
}

type fakeSessionDirectory struct {
	labels   map[string]string
	attached []primitive.ObjectID
}

func (f *fakeSessionDirectory) AttachOrder(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error) {
	f.attached = append(f.attached, orderID)
	return &models.Session{ID: sessionID, Order_ids: f.attached}, nil
}

func (f *fakeSessionDirectory) MemberLabel(ctx context.Context, sessionID primitive.ObjectID, clientID string) (string, bool) {
	label, ok := f.labels[clientID]
	return label, ok
}

func newTestOrderService() (*OrderService, *fakeOrderStore, *fakeSessionDirectory, *recordingNotifier) {
	store := newFakeOrderStore()
	sessions := &fakeSessionDirectory{labels: map[string]string{"client-1": "Alice"}}
	notifier := &recordingNotifier{}
	return NewOrderService(store, sessions, notifier), store, sessions, notifier
}

func validOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Session_id: primitive.NewObjectID(),
		Branch_id:  primitive.NewObjectID(),
		Table_id:   primitive.NewObjectID(),
		Order_lines: []models.OrderLine{
			{Menu_item_id: primitive.NewObjectID(), Qty: 2, Note: "no peanuts"},
		},
		Total_amount: 240,
		Client_id:    "client-1",
	}
}

func TestCreateOrderResolvesOrderByFromSession(t *testing.T) {
	svc, _, sessions, notifier := newTestOrderService()

	order, err := svc.Create(context.Background(), validOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, models.OrderReceived, order.Status)
	assert.Equal(t, "Alice", order.Order_by)
	require.Len(t, sessions.attached, 1)
	assert.Equal(t, order.ID, sessions.attached[0])

	// one global, one to the branch room
	events := notifier.eventsNamed(EventNewOrder)
	require.Len(t, events, 2)
	assert.Equal(t, "", events[0].Room)
	assert.Equal(t, BranchRoom(order.Branch_id.Hex()), events[1].Room)
}

func TestCreateOrderKeepsExplicitOrderBy(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	req := validOrderRequest()
	req.Order_by = "Waiter on behalf of table 4"
	order, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Waiter on behalf of table 4", order.Order_by)
}

func TestCreateOrderRejectsBadLines(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	req := validOrderRequest()
	req.Order_lines = nil
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	req = validOrderRequest()
	req.Order_lines[0].Qty = 0
	_, err = svc.Create(context.Background(), req)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestUpdateStatusEmitsToAllFourScopes(t *testing.T) {
	svc, _, _, notifier := newTestOrderService()

	order, err := svc.Create(context.Background(), validOrderRequest())
	require.NoError(t, err)
	notifier.events = nil

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, updated.Status)

	events := notifier.eventsNamed(EventOrderStatusChanged)
	require.Len(t, events, 4)
	rooms := []string{events[0].Room, events[1].Room, events[2].Room, events[3].Room}
	assert.Equal(t, []string{
		"",
		BranchRoom(order.Branch_id.Hex()),
		SessionRoom(order.Session_id.Hex()),
		OrderRoom(order.ID.Hex()),
	}, rooms)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validOrderRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderPaid)
	require.NoError(t, err)
	back, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderReceived)
	require.NoError(t, err)
	assert.Equal(t, models.OrderReceived, back.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validOrderRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "vaporized")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestUpdateStatusUnknownOrderIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID(), models.OrderServed)
	assert.True(t, errs.IsNotFound(err))
}

func TestHourlySalesZeroFillsAllBuckets(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	rows, err := svc.HourlySales(context.Background(), nil, time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 24)

	assert.Equal(t, "00:00-01:00", rows[0].TimeRange)
	assert.Equal(t, float64(0), rows[0].TotalSales)
	assert.Equal(t, float64(640), rows[12].TotalSales)
	assert.Equal(t, "19:00-20:00", rows[19].TimeRange)
	assert.Equal(t, 7, rows[19].Count)
}

func TestSalesByPeriodComputesAverage(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	rows, err := svc.SalesByPeriod(context.Background(), nil, time.Time{}, time.Time{}, "day")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "2025-06-02", rows[0].Period)
	assert.Equal(t, float64(225), rows[0].AverageOrderValue)
	assert.Equal(t, 3, rows[0].CustomerCount)
}

func TestSalesByPeriodRejectsUnknownGrouping(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	_, err := svc.SalesByPeriod(context.Background(), nil, time.Time{}, time.Time{}, "fortnight")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestPopularMenuItemsComputesPercentages(t *testing.T) {
	svc, _, _, _ := newTestOrderService()

	items, err := svc.PopularMenuItems(context.Background(), nil, 0, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, float64(75), items[0].Percentage)
	assert.Equal(t, float64(25), items[1].Percentage)
}
