package session

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"FinSight/internal/models"
)

// MongoStore is a Store implementation backed by a MongoDB collection. Each
// session is one document keyed by its session id; appends use $push so the
// message log grows atomically on the server side.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoStore on the given collection. When
// retention is positive a TTL index on updated_at is ensured so idle sessions
// expire server-side.
func NewMongoStore(ctx context.Context, db *mongo.Database, collectionName string, retention time.Duration) (*MongoStore, error) {
	coll := db.Collection(collectionName)

	if retention > 0 {
		indexModel := mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		}
		if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
			return nil, err
		}
	}

	return &MongoStore{collection: coll}, nil
}

// Create inserts a new session document.
func (s *MongoStore) Create(ctx context.Context, session *models.ChatSession) error {
	_, err := s.collection.InsertOne(ctx, session)
	return err
}

// Get retrieves a session by its id.
func (s *MongoStore) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Append pushes messages onto the session's log in a single update, so the
// whole batch becomes visible at once.
func (s *MongoStore) Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	filter := bson.M{"_id": sessionID}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": messages}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns the session's messages in chronological order.
func (s *MongoStore) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// Purge deletes a session document; unknown ids are a no-op.
func (s *MongoStore) Purge(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// compile-time check to ensure MongoStore implements the Store interface
var _ Store = (*MongoStore)(nil)
