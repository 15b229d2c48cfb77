package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AuditOrderCreated = "order.created"
	AuditOrderUpdated = "order.updated"
	AuditOrderDeleted = "order.deleted"
)

// AuditEntry records one committed order mutation
type AuditEntry struct {
	Action     string    `bson:"action" json:"action"`
	OrderID    uint      `bson:"order_id" json:"order_id"`
	UserID     uint      `bson:"user_id" json:"user_id"`
	DeliveryID uint      `bson:"delivery_id" json:"delivery_id"`
	Amount     string    `bson:"amount" json:"amount"`
	ItemCount  int       `bson:"item_count" json:"item_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// AuditLog receives order mutations after they are committed
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// NoopAuditLog discards entries
type NoopAuditLog struct{}

func (NoopAuditLog) Record(context.Context, AuditEntry) error { return nil }

// MongoAuditLog appends entries to a MongoDB collection
type MongoAuditLog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoAuditLog connects to MongoDB and returns an audit log writing to
// database.collection
func NewMongoAuditLog(ctx context.Context, uri, database, collection string) (*MongoAuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &MongoAuditLog{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *MongoAuditLog) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoAuditLog) Record(ctx context.Context, entry AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := m.collection.InsertOne(ctx, entry)
	return err
}

func (m *MongoAuditLog) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
