// Package db stores users, HR profiles, drafts, complaints and analyser
// reports in MongoDB.
package db

import (
	"complaint-portal/services"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	UserCollection      = "users"
	HRCollection        = "hrs"
	DraftCollection     = "drafts"
	ComplaintCollection = "complaints"
	ReportCollection    = "reports"
)

// Database is a connected MongoDB database. Every repository call derives a
// context bounded by Timeout from the caller's context.
type Database struct {
	Client  *mongo.Client
	DB      *mongo.Database
	Timeout time.Duration
	logger  *zap.Logger
}

// Connect dials uri and pings the server.
func Connect(ctx context.Context, uri, name string, timeout time.Duration, logger *zap.Logger) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", name))
	return &Database{
		Client:  client,
		DB:      client.Database(name),
		Timeout: timeout,
		logger:  logger,
	}, nil
}

func (d *Database) Disconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		d.logger.Warn("failed to disconnect mongodb", zap.Error(err))
		return
	}
	d.logger.Info("disconnected from mongodb")
}

// Ping is used by the health check.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}

// OpenCollection returns the named collection of the portal database.
func (d *Database) OpenCollection(name string) *mongo.Collection {
	return d.DB.Collection(name)
}

func (d *Database) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Timeout)
}

// EnsureIndexes creates the unique and sort indexes the repositories rely on.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		HRCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		DraftCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
		ComplaintCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "hr", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "sourceDraft", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "sourceDraft", Value: bson.D{{Key: "$exists", Value: true}}}}),
			},
		},
		ReportCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := d.OpenCollection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Store returns the repositories backed by this database. With transactions
// enabled, draft promotion runs in a multi-document transaction, which needs
// a replica set.
func (d *Database) Store(transactions bool) *services.Store {
	store := &services.Store{
		Users:      &UserRepo{db: d, coll: d.OpenCollection(UserCollection)},
		HRs:        &HRRepo{db: d, coll: d.OpenCollection(HRCollection)},
		Drafts:     &DraftRepo{db: d, coll: d.OpenCollection(DraftCollection)},
		Complaints: &ComplaintRepo{db: d, coll: d.OpenCollection(ComplaintCollection)},
		Reports:    &ReportRepo{db: d, coll: d.OpenCollection(ReportCollection)},
	}
	if transactions {
		store.Tx = &Transactor{client: d.Client}
	}
	return store
}

// Transactor runs callbacks inside a MongoDB session transaction.
type Transactor struct {
	client *mongo.Client
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
