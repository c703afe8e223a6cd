package repository

import (
	"context"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEventRepository keeps an append-only audit trail of ledger events
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoDB event repository
func NewMongoEventRepository(db *mongo.Database) repository.EventPublisher {
	collection := db.Collection("ledger_events")

	ctx := context.Background()

	typeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "type", Value: 1},
			{Key: "occurredAt", Value: -1},
		},
	}

	flightIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "flight.airline", Value: 1},
			{Key: "flight.code", Value: 1},
			{Key: "flight.departure", Value: 1},
		},
	}

	passengerIndex := mongo.IndexModel{
		Keys:    bson.M{"passenger": 1},
		Options: options.Index().SetSparse(true),
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		typeIndex,
		flightIndex,
		passengerIndex,
	})

	return &MongoEventRepository{
		collection: collection,
	}
}

// eventDocument is the stored form of an event. Amounts are kept as decimal strings.
type eventDocument struct {
	ID           string        `bson:"_id"`
	Type         string        `bson:"type"`
	Airline      string        `bson:"airline,omitempty"`
	Passenger    string        `bson:"passenger,omitempty"`
	Oracle       string        `bson:"oracle,omitempty"`
	Flight       *flightSubdoc `bson:"flight,omitempty"`
	Amount       string        `bson:"amount,omitempty"`
	StatusCode   *int          `bson:"statusCode,omitempty"`
	RequestIndex uint64        `bson:"requestIndex,omitempty"`
	Votes        int           `bson:"votes,omitempty"`
	Reason       string        `bson:"reason,omitempty"`
	OccurredAt   time.Time     `bson:"occurredAt"`
}

type flightSubdoc struct {
	Airline   string `bson:"airline"`
	Code      string `bson:"code"`
	Departure int64  `bson:"departure"`
}

func toEventDocument(e entity.Event) eventDocument {
	doc := eventDocument{
		ID:           e.ID,
		Type:         string(e.Type),
		Airline:      e.Airline,
		Passenger:    e.Passenger,
		Oracle:       e.Oracle,
		RequestIndex: e.RequestIndex,
		Votes:        e.Votes,
		Reason:       e.Reason,
		OccurredAt:   e.OccurredAt,
	}
	if e.Flight != nil {
		doc.Flight = &flightSubdoc{
			Airline:   e.Flight.Airline,
			Code:      e.Flight.Code,
			Departure: e.Flight.Departure,
		}
	}
	if e.Amount != nil {
		doc.Amount = e.Amount.String()
	}
	if e.StatusCode != nil {
		code := int(*e.StatusCode)
		doc.StatusCode = &code
	}
	return doc
}

// Publish appends events to the audit collection. Re-publishing an event with a known id
// is skipped by the unordered insert.
func (r *MongoEventRepository) Publish(ctx context.Context, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(events))
	for _, e := range events {
		docs = append(docs, toEventDocument(e))
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to store ledger events: %w", err)
	}
	return nil
}
