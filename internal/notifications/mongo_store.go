package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName = "notifications"
	countersName   = "counters"
)

// MongoStore keeps notifications in a MongoDB collection keyed by
// notification ID.
type MongoStore struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	capacity   int

	mu sync.Mutex
}

func NewMongoStore(client *mongo.Client, database string, capacity int) *MongoStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	db := client.Database(database)
	return &MongoStore{
		collection: db.Collection(collectionName),
		counters:   db.Collection(countersName),
		capacity:   capacity,
	}
}

// EnsureIndexes creates the indexes used for listing and eviction.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "read", Value: 1}, {Key: "seq", Value: 1}}},
	})
	return err
}

func (s *MongoStore) Append(ctx context.Context, n *models.Notification) error {
	prepare(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	n.Seq = seq

	if _, err := s.collection.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	total, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count notifications: %w", err)
	}
	over := total - int64(s.capacity)
	if over <= 0 {
		return nil
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(over).
		SetProjection(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return fmt.Errorf("select evicted notifications: %w", err)
	}
	var oldest []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &oldest); err != nil {
		return fmt.Errorf("decode evicted notifications: %w", err)
	}

	ids := make([]string, len(oldest))
	for i, doc := range oldest {
		ids[i] = doc.ID
	}
	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("evict notifications: %w", err)
	}
	return nil
}

func (s *MongoStore) ListUnread(ctx context.Context) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{"read": false}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	unread := []models.Notification{}
	if err := cursor.All(ctx, &unread); err != nil {
		return nil, err
	}
	return unread, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// nextSeq bumps the collection's counter document and returns the new value.
func (s *MongoStore) nextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionName},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next notification sequence: %w", err)
	}
	return counter.Value, nil
}
