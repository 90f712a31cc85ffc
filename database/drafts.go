package db

import (
	"complaint-portal/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DraftRepo struct {
	db   *Database
	coll *mongo.Collection
}

func (r *DraftRepo) Create(ctx context.Context, d *models.Draft) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, d)
	return err
}

func (r *DraftRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draft, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var d models.Draft
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *DraftRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Draft, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	drafts := []models.Draft{}
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *DraftRepo) Update(ctx context.Context, d *models.Draft) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *DraftRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *DraftRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *DraftRepo) Promoted(ctx context.Context, limit int) ([]primitive.ObjectID, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, PromotedPipeline(limit))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// PromotedPipeline runs on the drafts collection and joins each draft to the
// complaint created from it, so only drafts that still exist are scanned.
func PromotedPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ComplaintCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "sourceDraft"},
			{Key: "as", Value: "promotedTo"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "promotedTo", Value: bson.D{{Key: "$ne", Value: bson.A{}}}}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
