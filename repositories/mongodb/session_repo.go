package mongodb

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	models "bus-chat/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewSessionRepository(client *mongo.Client, database, collection string) *SessionRepository {
	return &SessionRepository{client: client, database: database, collection: collection}
}

// Start inserts the session document for a new run
func (r *SessionRepository) Start(ctx context.Context, s models.Session) error {
	collection := r.client.Database(r.database).Collection(r.collection)
	_, err := collection.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	return nil
}

// Finish stores the final counters and result of a run
func (r *SessionRepository) Finish(ctx context.Context, s models.Session) error {
	stoppedAt := time.Now().UTC()
	if s.StoppedAt != nil {
		stoppedAt = *s.StoppedAt
	}

	collection := r.client.Database(r.database).Collection(r.collection)
	update := bson.M{"$set": bson.M{
		"stopped_at":       stoppedAt,
		"published":        s.Published,
		"publish_failures": s.PublishFailures,
		"received":         s.Received,
		"skipped":          s.Skipped,
		"dropped":          s.Dropped,
		"result":           s.Result,
	}}
	res, err := collection.UpdateByID(ctx, s.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
