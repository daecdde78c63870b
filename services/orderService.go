package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/errs"
	"go-restaurant-pos/models"
)

// OrderFilter narrows order list queries. Nil/zero fields are ignored.
type OrderFilter struct {
	SessionID *primitive.ObjectID
	BranchID  *primitive.ObjectID
	TableID   *primitive.ObjectID
	Status    string
	ClientID  string
	OrderBy   string
	StartDate *time.Time
	EndDate   *time.Time
}

// Report row shapes decoded from the aggregation pipelines.

type DailySales struct {
	Day        int     `bson:"day" json:"day"`
	DayName    string  `bson:"-" json:"day_name"`
	TotalSales float64 `bson:"total_sales" json:"total_sales"`
	Count      int     `bson:"count" json:"count"`
}

type HourlySales struct {
	Hour       int     `bson:"hour" json:"hour"`
	TimeRange  string  `bson:"-" json:"time_range"`
	TotalSales float64 `bson:"total_sales" json:"total_sales"`
	Count      int     `bson:"count" json:"count"`
}

type PeriodKey struct {
	Year  int `bson:"year"`
	Month int `bson:"month"`
	Day   int `bson:"day"`
	Hour  int `bson:"hour"`
	Week  int `bson:"week"`
}

type PeriodSalesRow struct {
	Period        PeriodKey `bson:"period"`
	TotalSales    float64   `bson:"total_sales"`
	OrderCount    int       `bson:"order_count"`
	CustomerCount int       `bson:"customer_count"`
}

type PeriodSales struct {
	Period            string  `json:"period"`
	TotalSales        float64 `json:"total_sales"`
	OrderCount        int     `json:"order_count"`
	CustomerCount     int     `json:"customer_count"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type PopularMenuItem struct {
	Menu_item_id primitive.ObjectID `bson:"menu_item_id" json:"menu_item_id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	TotalCount   int                `bson:"total_count" json:"total_count"`
	Orders       int                `bson:"orders" json:"orders"`
	Percentage   float64            `bson:"-" json:"percentage"`
}

// OrderStore is the persistence surface for orders, including the read-side
// report aggregations.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error)
	Find(ctx context.Context, filter OrderFilter) ([]primitive.M, error)
	// UpdateStatus sets the status unconditionally and returns the updated
	// order, or ErrNoMatch when the order does not exist.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)

	WeeklySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]DailySales, error)
	HourlySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]HourlySales, error)
	SalesByPeriod(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time, groupBy string) ([]PeriodSalesRow, error)
	PopularMenuItems(ctx context.Context, branchID *primitive.ObjectID, limit int, start, end time.Time) ([]PopularMenuItem, error)
}

// SessionDirectory is the narrow slice of the session lifecycle that orders
// depend on. Keeping it this small is what breaks the orders<->sessions
// dependency cycle.
type SessionDirectory interface {
	AttachOrder(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error)
	MemberLabel(ctx context.Context, sessionID primitive.ObjectID, clientID string) (string, bool)
}

// CreateOrderRequest carries a member's submitted order.
type CreateOrderRequest struct {
	Session_id   primitive.ObjectID `json:"session_id" validate:"required"`
	Branch_id    primitive.ObjectID `json:"branch_id" validate:"required"`
	Table_id     primitive.ObjectID `json:"table_id" validate:"required"`
	Order_lines  []models.OrderLine `json:"order_lines" validate:"required,min=1,dive"`
	Total_amount float64            `json:"total_amount" validate:"min=0"`
	Client_id    string             `json:"client_id"`
	Order_by     string             `json:"order_by"`
}

// OrderService owns order creation and status progression.
type OrderService struct {
	store    OrderStore
	sessions SessionDirectory
	notifier Notifier
}

func NewOrderService(store OrderStore, sessions SessionDirectory, notifier Notifier) *OrderService {
	return &OrderService{store: store, sessions: sessions, notifier: notifier}
}

// Create persists a new order against an open session, attaches it to the
// session and announces it globally and to the branch room.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Order_lines) == 0 {
		return nil, errs.Validation("order must contain at least one line")
	}
	for i, line := range req.Order_lines {
		if line.Qty < 1 {
			return nil, errs.Validation("order line %d: qty must be at least 1", i)
		}
		if line.Menu_item_id.IsZero() {
			return nil, errs.Validation("order line %d: menu item id is required", i)
		}
	}
	if req.Total_amount < 0 {
		return nil, errs.Validation("total amount must not be negative")
	}

	orderBy := req.Order_by
	if req.Client_id != "" && orderBy == "" {
		if label, ok := s.sessions.MemberLabel(ctx, req.Session_id, req.Client_id); ok {
			orderBy = label
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:           primitive.NewObjectID(),
		Session_id:   req.Session_id,
		Branch_id:    req.Branch_id,
		Table_id:     req.Table_id,
		Status:       models.OrderReceived,
		Order_lines:  req.Order_lines,
		Total_amount: req.Total_amount,
		Client_id:    req.Client_id,
		Order_by:     orderBy,
		Created_at:   now,
		Updated_at:   now,
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, err
	}
	if _, err := s.sessions.AttachOrder(ctx, order.Session_id, order.ID); err != nil {
		return nil, err
	}

	payload := s.resolvedOrFallback(ctx, order)
	s.notifier.Broadcast(EventNewOrder, payload)
	s.notifier.BroadcastTo(BranchRoom(order.Branch_id.Hex()), EventNewOrder, payload)

	return order, nil
}

// UpdateStatus moves an order to any of the four statuses. There is no
// transition table; every status is reachable from every other. The change is
// announced to every subscription pattern in use: globally for dashboards,
// per branch for kitchen displays, per session for customer apps and per
// order for staff detail views.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, errs.Validation("unknown order status %q", status)
	}

	order, err := s.store.UpdateStatus(ctx, id, status)
	if errors.Is(err, ErrNoMatch) {
		return nil, errs.NotFound("order %s not found", id.Hex())
	}
	if err != nil {
		return nil, err
	}

	payload := s.resolvedOrFallback(ctx, order)
	s.notifier.Broadcast(EventOrderStatusChanged, payload)
	s.notifier.BroadcastTo(BranchRoom(order.Branch_id.Hex()), EventOrderStatusChanged, payload)
	s.notifier.BroadcastTo(SessionRoom(order.Session_id.Hex()), EventOrderStatusChanged, payload)
	s.notifier.BroadcastTo(OrderRoom(order.ID.Hex()), EventOrderStatusChanged, payload)

	return order, nil
}

func (s *OrderService) FindByID(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	resolved, err := s.store.FindByIDResolved(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("order %s not found", id.Hex())
	}
	return resolved, err
}

func (s *OrderService) Find(ctx context.Context, filter OrderFilter) ([]primitive.M, error) {
	return s.store.Find(ctx, filter)
}

func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	deleted, err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NotFound("order %s not found", id.Hex())
	}
	return deleted, err
}

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeeklySales groups sales per day of week over the window, defaulting to
// the last seven days.
func (s *OrderService) WeeklySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]DailySales, error) {
	now := time.Now().UTC()
	if start.IsZero() {
		start = now.AddDate(0, 0, -7)
	}
	if end.IsZero() {
		end = now
	}

	rows, err := s.store.WeeklySales(ctx, branchID, start, end)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		// mongo $dayOfWeek: 1 = Sunday
		rows[i].DayName = dayNames[(rows[i].Day-1)%7]
	}
	return rows, nil
}

// HourlySales returns 24 buckets for one day, zero-filled where nothing was
// sold.
func (s *OrderService) HourlySales(ctx context.Context, branchID *primitive.ObjectID, day time.Time) ([]HourlySales, error) {
	if day.IsZero() {
		day = time.Now().UTC()
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Second)

	rows, err := s.store.HourlySales(ctx, branchID, start, end)
	if err != nil {
		return nil, err
	}

	byHour := make(map[int]HourlySales, len(rows))
	for _, r := range rows {
		byHour[r.Hour] = r
	}
	out := make([]HourlySales, 24)
	for hour := 0; hour < 24; hour++ {
		row := byHour[hour]
		row.Hour = hour
		row.TimeRange = fmt.Sprintf("%02d:00-%02d:00", hour, hour+1)
		out[hour] = row
	}
	return out, nil
}

// SalesByPeriod buckets sales and distinct-customer counts by hour, day,
// week or month over the window, defaulting to the last 30 days.
func (s *OrderService) SalesByPeriod(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time, groupBy string) ([]PeriodSales, error) {
	switch groupBy {
	case "hour", "day", "week", "month":
	case "":
		groupBy = "day"
	default:
		return nil, errs.Validation("unknown grouping %q", groupBy)
	}

	now := time.Now().UTC()
	if start.IsZero() {
		start = now.AddDate(0, 0, -30)
	}
	if end.IsZero() {
		end = now
	}

	rows, err := s.store.SalesByPeriod(ctx, branchID, start, end, groupBy)
	if err != nil {
		return nil, err
	}

	out := make([]PeriodSales, 0, len(rows))
	for _, r := range rows {
		var period string
		switch groupBy {
		case "hour":
			period = fmt.Sprintf("%d-%02d-%02d %02d:00", r.Period.Year, r.Period.Month, r.Period.Day, r.Period.Hour)
		case "day":
			period = fmt.Sprintf("%d-%02d-%02d", r.Period.Year, r.Period.Month, r.Period.Day)
		case "week":
			period = fmt.Sprintf("%d-W%02d", r.Period.Year, r.Period.Week)
		case "month":
			period = fmt.Sprintf("%d-%02d", r.Period.Year, r.Period.Month)
		}

		avg := 0.0
		if r.OrderCount > 0 {
			avg = math.Round(r.TotalSales/float64(r.OrderCount)*100) / 100
		}
		out = append(out, PeriodSales{
			Period:            period,
			TotalSales:        r.TotalSales,
			OrderCount:        r.OrderCount,
			CustomerCount:     r.CustomerCount,
			AverageOrderValue: avg,
		})
	}
	return out, nil
}

// PopularMenuItems ranks menu items by ordered quantity over the window,
// defaulting to the last 30 days, and annotates each with its share of the
// ranked total.
func (s *OrderService) PopularMenuItems(ctx context.Context, branchID *primitive.ObjectID, limit int, start, end time.Time) ([]PopularMenuItem, error) {
	if limit <= 0 {
		limit = 10
	}
	now := time.Now().UTC()
	if start.IsZero() {
		start = now.AddDate(0, 0, -30)
	}
	if end.IsZero() {
		end = now
	}

	items, err := s.store.PopularMenuItems(ctx, branchID, limit, start, end)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, it := range items {
		total += it.TotalCount
	}
	if total > 0 {
		for i := range items {
			items[i].Percentage = math.Round(float64(items[i].TotalCount)/float64(total)*100*100) / 100
		}
	}
	return items, nil
}

// resolvedOrFallback fetches the order with its related entities inlined for
// a notification payload, falling back to the bare order if resolution fails.
func (s *OrderService) resolvedOrFallback(ctx context.Context, order *models.Order) interface{} {
	resolved, err := s.store.FindByIDResolved(ctx, order.ID)
	if err != nil {
		return order
	}
	return resolved
}
