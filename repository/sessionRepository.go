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

// SessionRepository stores table sessions in mongo. Every mutation that
// depends on the session still being open runs as one conditional
// findAndModify so that concurrent joins, order attachments and checkouts
// can never interleave a stale read.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(client *mongo.Client) *SessionRepository {
	return &SessionRepository{coll: database.OpenCollection(client, "session")}
}

func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	_, err := r.coll.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicate
	}
	return err
}

func (r *SessionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// sessionLookupStages inlines the branch and table documents and replaces the
// order id list with the order documents themselves.
func sessionLookupStages() []bson.D {
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
			{Key: "from", Value: "order"},
			{Key: "localField", Value: "order_ids"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "orders"},
		}}},
	}
}

func (r *SessionRepository) FindByIDResolved(ctx context.Context, id primitive.ObjectID) (primitive.M, error) {
	pipeline := append([]bson.D{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, sessionLookupStages()...)

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

func (r *SessionRepository) FindByQrCode(ctx context.Context, qrCode string, includeInactive bool) (*models.Session, error) {
	filter := bson.M{"qr_code": qrCode}
	if !includeInactive {
		filter["checkout_at"] = nil
	}
	var session models.Session
	err := r.coll.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Find(ctx context.Context, filter services.SessionFilter) ([]primitive.M, error) {
	match := bson.M{}
	if filter.BranchID != nil {
		match["branch_id"] = *filter.BranchID
	}
	if filter.TableID != nil {
		match["table_id"] = *filter.TableID
	}
	if filter.ActiveOnly {
		match["checkout_at"] = nil
	}

	pipeline := append([]bson.D{
		{{Key: "$match", Value: match}},
	}, sessionLookupStages()...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "checkin_at", Value: -1}}}})

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

func (r *SessionRepository) FindActiveByTable(ctx context.Context, tableID primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.coll.FindOne(ctx, bson.M{"table_id": tableID, "checkout_at": nil}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpsertMember re-labels the member if the client id is already present,
// otherwise appends it, in either case only while the session is open. The
// two findAndModify calls each carry the full guard, so a concurrent checkout
// between them surfaces as ErrNoMatch rather than a half-applied write.
func (r *SessionRepository) UpsertMember(ctx context.Context, sessionID primitive.ObjectID, member models.SessionMember) (*models.Session, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	now := time.Now().UTC()

	var session models.Session
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "checkout_at": nil, "members.client_id": member.Client_id},
		bson.M{"$set": bson.M{
			"members.$.user_label": member.User_label,
			"updated_at":           now,
		}},
		after,
	).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "checkout_at": nil, "members.client_id": bson.M{"$ne": member.Client_id}},
		bson.M{
			"$push": bson.M{"members": member},
			"$set":  bson.M{"updated_at": now},
		},
		after,
	).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) AddOrderID(ctx context.Context, sessionID, orderID primitive.ObjectID) (*models.Session, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "checkout_at": nil},
		bson.M{
			"$addToSet": bson.M{"order_ids": orderID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		after,
	).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) SetCheckoutAt(ctx context.Context, sessionID primitive.ObjectID, at time.Time) (*models.Session, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session models.Session
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "checkout_at": nil},
		bson.M{"$set": bson.M{"checkout_at": at, "updated_at": at}},
		after,
	).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
