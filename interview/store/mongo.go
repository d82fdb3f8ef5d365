package store

import (
	"context"
	"fmt"
	"time"

	"github.com/novexa-ai/interviewd/interview"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements record storage using MongoDB. Suited for archiving
// finished interviews beyond the process lifetime.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "interviewd",
		Collection: "sessions",
	}
}

// mongoRecord is the internal representation for MongoDB
type mongoRecord struct {
	ID        string            `bson:"_id"`
	Record    *interview.Record `bson:"record"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// NewMongoStore creates a new MongoDB-based record store
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}, nil
}

// Save upserts a session record
func (s *MongoStore) Save(ctx context.Context, record *interview.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	doc := mongoRecord{
		ID:        record.ID,
		Record:    record,
		UpdatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}
	return nil
}

// Load loads a session record by id
func (s *MongoStore) Load(ctx context.Context, id string) (*interview.Record, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("session record %s not found", id)
		}
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}
	return doc.Record, nil
}

// Delete removes a session record
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}

// List returns all record ids in the collection
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode session record id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session records: %w", err)
	}
	return ids, nil
}

// Close disconnects the MongoDB client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
