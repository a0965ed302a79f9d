package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
)

// seenDocument mirrors one entry of the scraped_urls collection.
type seenDocument struct {
	URL       string    `bson:"url"`
	ScrapedAt time.Time `bson:"scraped_at"`
	Status    string    `bson:"status"`
}

// MongoStore persists seen URLs in a MongoDB collection keyed by url.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ ports.SeenStore = (*MongoStore)(nil)

// NewMongoStore wraps an existing collection.
func NewMongoStore(client *mongo.Client, collection *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, collection: collection}
}

// EnsureIndexes creates the unique url index.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("url_unique"),
	})
	if err != nil {
		return fmt.Errorf("create url index: %w", err)
	}
	return nil
}

// Seen runs findOne({url}) and reports whether a document exists.
func (m *MongoStore) Seen(ctx context.Context, url string) (bool, error) {
	var doc seenDocument
	err := m.collection.FindOne(ctx, bson.D{{Key: "url", Value: url}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find seen: %w", err)
	}
	return true, nil
}

// Save upserts {scraped_at, status} for every URL.
func (m *MongoStore) Save(ctx context.Context, urls []string, scrapedAt time.Time) error {
	opts := options.Update().SetUpsert(true)
	for _, u := range urls {
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "scraped_at", Value: scrapedAt.UTC()},
			{Key: "status", Value: string(domain.StatusProcessed)},
		}}}
		if _, err := m.collection.UpdateOne(ctx, bson.D{{Key: "url", Value: u}}, update, opts); err != nil {
			return fmt.Errorf("upsert seen %s: %w", u, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
