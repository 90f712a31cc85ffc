package db

import (
	"complaint-portal/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepo struct {
	db   *Database
	coll *mongo.Collection
}

func (r *ReportRepo) Create(ctx context.Context, rep *models.HarassmentReport) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if rep.ID.IsZero() {
		rep.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, rep)
	return err
}

func (r *ReportRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.HarassmentReport, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rep models.HarassmentReport
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rep); err != nil {
		return nil, notFound(err)
	}
	return &rep, nil
}

func (r *ReportRepo) List(ctx context.Context) ([]models.HarassmentReport, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	reports := []models.HarassmentReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
