package db

import (
	"complaint-portal/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ComplaintRepo struct {
	db   *Database
	coll *mongo.Collection
}

func (r *ComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return duplicate(err)
}

func (r *ComplaintRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ComplaintRepo) FindBySourceDraft(ctx context.Context, draftID primitive.ObjectID) (*models.Complaint, error) {
	return r.findOne(ctx, bson.M{"sourceDraft": draftID})
}

func (r *ComplaintRepo) findOne(ctx context.Context, filter bson.M) (*models.Complaint, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c models.Complaint
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ComplaintRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Complaint, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *ComplaintRepo) ListByHR(ctx context.Context, hrID primitive.ObjectID) ([]models.Complaint, error) {
	return r.list(ctx, bson.M{"hr": hrID})
}

func (r *ComplaintRepo) list(ctx context.Context, filter bson.M) ([]models.Complaint, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	complaints := []models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *ComplaintRepo) SaveWorkflow(ctx context.Context, c *models.Complaint) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"status":           c.Status,
		"isFlagged":        c.IsFlagged,
		"flagReason":       c.FlagReason,
		"reportedToNGO":    c.ReportedToNGO,
		"ngoReportDetails": c.NGOReportDetails,
		"updatedAt":        c.UpdatedAt,
	}
	if c.NGOReportDate != nil {
		set["ngoReportDate"] = *c.NGOReportDate
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepo) Perpetrators(ctx context.Context, hrID primitive.ObjectID, normalize bool) ([]models.PerpetratorSummary, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, PerpetratorPipeline(hrID, normalize))
	if err != nil {
		return nil, err
	}
	rows := []models.PerpetratorSummary{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// PerpetratorPipeline groups an HR's complaints by perpetrator name, counting
// them and keeping the latest incident date, most frequent first. With
// normalize the grouping key is the trimmed, lower-cased name.
func PerpetratorPipeline(hrID primitive.ObjectID, normalize bool) mongo.Pipeline {
	var key interface{} = "$perpetratorName"
	if normalize {
		key = bson.D{{Key: "$toLower", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$perpetratorName"}}}}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "hr", Value: hrID},
			{Key: "perpetratorName", Value: bson.D{{Key: "$nin", Value: bson.A{"", nil}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "latestIncident", Value: bson.D{{Key: "$max", Value: "$incidentDate"}}},
		}}},
	}
	if normalize {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: ""}}}}}})
	}
	return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}})
}
