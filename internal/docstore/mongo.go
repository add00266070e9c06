package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hackit/internal/models"
	"hackit/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// UsersCollection is the collection holding users/{uid} documents.
const UsersCollection = "users"

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

// MongoStore keeps documents in MongoDB keyed by _id = uid.
type MongoStore struct {
	client *mongo.Client
	users  collection
}

// NewMongoStore connects, pings the primary and returns the store.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	observability.GlobalLogger.InfoContext(ctx, "connected to mongo docstore", "database", database)
	return &MongoStore{
		client: client,
		users:  client.Database(database).Collection(UsersCollection),
	}, nil
}

func (s *MongoStore) SaveUser(ctx context.Context, uid string, doc models.DocUser) (err error) {
	done := observability.TrackExternalCall("mongo", "save_user")
	defer func() { done(err) }()

	doc = stamp(uid, doc)
	_, err = s.users.ReplaceOne(ctx, bson.M{"_id": uid}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace users/%s: %w", uid, err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, uid string) (*models.DocUser, error) {
	var doc models.DocUser
	if err := s.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find users/%s: %w", uid, err)
	}
	return &doc, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
