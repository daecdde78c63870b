package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-pos/database"
	"go-restaurant-pos/models"
	"go-restaurant-pos/services"
)

// OrderRepository stores orders in mongo and serves the sales report
// aggregations.
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(client *mongo.Client) *OrderRepository {
	return &OrderRepository{coll: database.OpenCollection(client, "order")}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	_, err := r.coll.InsertOne(ctx, order)
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// orderLookupStages inlines the branch, table and session documents and the
// menu items referenced by the order lines.
func orderLookupStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "branch"},
			{Key: "localField", Value: "branch_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "branch"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$branch"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "table"},
			{Key: "localField", Value: "table_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "table"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$table"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "session"},
			{Key: "localField", Value: "session_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "session"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$session"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "menu_item"},
			{Key: "localField", Value: "order_lines.menu_item_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "menu_items"},
		}}},
	}
}

func (r *OrderRepository) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	pipeline := append([]bson.D{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, orderLookupStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var results []primitive.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, services.ErrNotFound
	}
	return results[0], nil
}

func (r *OrderRepository) Find(ctx context.Context, filter services.OrderFilter) ([]primitive.M, error) {
	match := bson.M{}
	if filter.SessionID != nil {
		match["session_id"] = *filter.SessionID
	}
	if filter.BranchID != nil {
		match["branch_id"] = *filter.BranchID
	}
	if filter.TableID != nil {
		match["table_id"] = *filter.TableID
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.ClientID != "" {
		match["client_id"] = filter.ClientID
	}
	if filter.OrderBy != "" {
		match["order_by"] = filter.OrderBy
	}
	if dateRange := createdAtRange(filter.StartDate, filter.EndDate); len(dateRange) > 0 {
		match["created_at"] = dateRange
	}

	pipeline := append([]bson.D{
		{{Key: "$match", Value: match}},
	}, orderLookupStages()...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var results []primitive.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		after,
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func createdAtRange(start, end *time.Time) bson.M {
	dateRange := bson.M{}
	if start != nil {
		dateRange["$gte"] = *start
	}
	if end != nil {
		dateRange["$lte"] = *end
	}
	return dateRange
}

// reportMatch is the shared first stage of every report pipeline: paid-status
// filtering is deliberately absent, every order in the window counts.
func reportMatch(branchID *primitive.ObjectID, start, end time.Time) bson.M {
	match := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	if branchID != nil {
		match["branch_id"] = *branchID
	}
	return match
}

func (r *OrderRepository) WeeklySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]services.DailySales, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: reportMatch(branchID, start, end)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dayOfWeek", Value: "$created_at"}}},
			{Key: "total_sales", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "day", Value: "$_id"},
			{Key: "total_sales", Value: 1},
			{Key: "count", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "day", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []services.DailySales
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrderRepository) HourlySales(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time) ([]services.HourlySales, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: reportMatch(branchID, start, end)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$hour", Value: "$created_at"}}},
			{Key: "total_sales", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "hour", Value: "$_id"},
			{Key: "total_sales", Value: 1},
			{Key: "count", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "hour", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []services.HourlySales
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrderRepository) SalesByPeriod(ctx context.Context, branchID *primitive.ObjectID, start, end time.Time, groupBy string) ([]services.PeriodSalesRow, error) {
	var groupID bson.D
	switch groupBy {
	case "hour":
		groupID = bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$created_at"}}},
			{Key: "month", Value: bson.D{{Key: "$month", Value: "$created_at"}}},
			{Key: "day", Value: bson.D{{Key: "$dayOfMonth", Value: "$created_at"}}},
			{Key: "hour", Value: bson.D{{Key: "$hour", Value: "$created_at"}}},
		}
	case "week":
		groupID = bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$created_at"}}},
			{Key: "week", Value: bson.D{{Key: "$week", Value: "$created_at"}}},
		}
	case "month":
		groupID = bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$created_at"}}},
			{Key: "month", Value: bson.D{{Key: "$month", Value: "$created_at"}}},
		}
	default:
		groupID = bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$created_at"}}},
			{Key: "month", Value: bson.D{{Key: "$month", Value: "$created_at"}}},
			{Key: "day", Value: bson.D{{Key: "$dayOfMonth", Value: "$created_at"}}},
		}
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: reportMatch(branchID, start, end)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: groupID},
			{Key: "total_sales", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "order_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "clients", Value: bson.D{{Key: "$addToSet", Value: "$client_id"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "period", Value: "$_id"},
			{Key: "total_sales", Value: 1},
			{Key: "order_count", Value: 1},
			{Key: "customer_count", Value: bson.D{{Key: "$size", Value: "$clients"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "period.year", Value: 1},
			{Key: "period.month", Value: 1},
			{Key: "period.week", Value: 1},
			{Key: "period.day", Value: 1},
			{Key: "period.hour", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []services.PeriodSalesRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrderRepository) PopularMenuItems(ctx context.Context, branchID *primitive.ObjectID, limit int, start, end time.Time) ([]services.PopularMenuItem, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: reportMatch(branchID, start, end)}},
		{{Key: "$unwind", Value: "$order_lines"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$order_lines.menu_item_id"},
			{Key: "total_count", Value: bson.D{{Key: "$sum", Value: "$order_lines.qty"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "menu_item"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "menu_item"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$menu_item"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "menu_item_id", Value: "$_id"},
			{Key: "name", Value: "$menu_item.name"},
			{Key: "price", Value: "$menu_item.price"},
			{Key: "total_count", Value: 1},
			{Key: "orders", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var items []services.PopularMenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
