package db

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// notFound maps the driver's no-documents error to models.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicate
	}
	return err
}

type UserRepo struct {
	db   *Database
	coll *mongo.Collection
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, u)
	return duplicate(err)
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone, address string) error {
	return r.set(ctx, id, bson.M{"name": name, "phone": phone, "address": address})
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.set(ctx, id, bson.M{"password": hash})
}

func (r *UserRepo) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
