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

// PaymentRepository stores payments in mongo.
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(client *mongo.Client) *PaymentRepository {
	return &PaymentRepository{coll: database.OpenCollection(client, "payment")}
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	_, err := r.coll.InsertOne(ctx, payment)
	return err
}

func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func paymentLookupStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "order"},
			{Key: "localField", Value: "order_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "order"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$order"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
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
	}
}

func (r *PaymentRepository) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	pipeline := append([]bson.D{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, paymentLookupStages()...)

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

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Find(ctx context.Context, filter services.PaymentFilter) ([]primitive.M, error) {
	match := bson.M{}
	if filter.OrderID != nil {
		match["order_id"] = *filter.OrderID
	}
	if filter.SessionID != nil {
		match["session_id"] = *filter.SessionID
	}
	if filter.BranchID != nil {
		match["branch_id"] = *filter.BranchID
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.Method != "" {
		match["method"] = filter.Method
	}

	pipeline := append([]bson.D{
		{{Key: "$match", Value: match}},
	}, paymentLookupStages()...)
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

func (r *PaymentRepository) Update(ctx context.Context, id primitive.ObjectID, update services.PaymentUpdate) (*models.Payment, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Amount != nil {
		set["amount"] = *update.Amount
	}
	if update.Method != nil {
		set["method"] = *update.Method
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) UpdateStatusAndDetails(ctx context.Context, id primitive.ObjectID, status string, details map[string]interface{}) (*models.Payment, error) {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if details != nil {
		set["payment_details"] = details
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
