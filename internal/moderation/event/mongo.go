package event

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertOner the part of *mongo.Collection used by MongoAuditStore
type InsertOner interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoAuditStore append-only audit collection
type MongoAuditStore struct {
	coll InsertOner
}

var _ AuditStore = (*MongoAuditStore)(nil)

// NewMongoAuditStore create a MongoAuditStore on db.collection
func NewMongoAuditStore(client *mongo.Client, database, collection string) *MongoAuditStore {
	return &MongoAuditStore{coll: client.Database(database).Collection(collection)}
}

// NewMongoAuditStoreWith inject the collection directly
func NewMongoAuditStoreWith(coll InsertOner) *MongoAuditStore {
	return &MongoAuditStore{coll: coll}
}

// Record insert one audit document
func (s *MongoAuditStore) Record(ctx context.Context, r AuditRecord) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert audit record for %s: %w", r.VideoID, err)
	}
	return nil
}
