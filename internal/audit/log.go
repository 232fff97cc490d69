package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carbonmarket/ledger-backend/internal/core"
)

// Entry is one audit log document. The log is append-only: entries are
// inserted, never updated.
type Entry struct {
	Type         string    `bson:"type"`
	Block        uint64    `bson:"block"`
	Actor        string    `bson:"actor"`
	Counterparty string    `bson:"counterparty,omitempty"`
	ProjectID    uint64    `bson:"project_id,omitempty"`
	CreditID     uint64    `bson:"credit_id,omitempty"`
	ListingID    uint64    `bson:"listing_id,omitempty"`
	SensorID     string    `bson:"sensor_id,omitempty"`
	Amount       uint64    `bson:"amount,omitempty"`
	PricePerTon  uint64    `bson:"price_per_ton,omitempty"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

// Log stores every committed operation in MongoDB.
type Log struct {
	collection *mongo.Collection
}

func NewLog(client *mongo.Client, database, collection string) *Log {
	return &Log{collection: client.Database(database).Collection(collection)}
}

func (l *Log) Name() string { return "audit" }

// Handle appends the event; every event type is logged.
func (l *Log) Handle(ctx context.Context, ev core.Event) error {
	entry := Entry{
		Type:        string(ev.Type),
		Block:       ev.Block,
		Actor:       ev.Actor.String(),
		ProjectID:   ev.ProjectID,
		CreditID:    ev.CreditID,
		ListingID:   ev.ListingID,
		SensorID:    ev.SensorID,
		Amount:      ev.Amount,
		PricePerTon: ev.PricePerTon,
		RecordedAt:  time.Now(),
	}
	if ev.Counterparty != uuid.Nil {
		entry.Counterparty = ev.Counterparty.String()
	}
	if _, err := l.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (l *Log) Recent(ctx context.Context, n int64) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(n)
	cursor, err := l.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

// ByProject returns all entries touching one project, oldest first.
func (l *Log) ByProject(ctx context.Context, projectID uint64) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "block", Value: 1}})
	cursor, err := l.collection.Find(ctx, bson.D{{Key: "project_id", Value: projectID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}
