package db

import (
	"complaint-portal/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HRRepo struct {
	db   *Database
	coll *mongo.Collection
}

func (r *HRRepo) Create(ctx context.Context, p *models.HRProfile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return duplicate(err)
}

func (r *HRRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.HRProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *HRRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.HRProfile, error) {
	return r.findOne(ctx, bson.M{"user": userID})
}

func (r *HRRepo) findOne(ctx context.Context, filter bson.M) (*models.HRProfile, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p models.HRProfile
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *HRRepo) FindByUsers(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*models.HRProfile, error) {
	out := make(map[primitive.ObjectID]*models.HRProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	profiles, err := r.find(ctx, bson.M{"user": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].User] = &profiles[i]
	}
	return out, nil
}

func (r *HRRepo) List(ctx context.Context) ([]models.HRProfile, error) {
	return r.find(ctx, bson.M{})
}

func (r *HRRepo) find(ctx context.Context, filter bson.M) ([]models.HRProfile, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	profiles := []models.HRProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *HRRepo) Update(ctx context.Context, p *models.HRProfile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"organization": p.Organization,
		"position":     p.Position,
		"department":   p.Department,
		"isNGO":        p.IsNGO,
		"updatedAt":    p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
