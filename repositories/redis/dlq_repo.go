package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"time"

	// Local Packages
	models "bus-chat/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeadLetter is what gets stored for a record that could not be decoded.
type DeadLetter struct {
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       []byte    `json:"key,omitempty"`
	Value     []byte    `json:"value"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

type DeadLetterQueue struct {
	client   *redis.Client
	logger   *zap.Logger
	listName string
}

func NewDeadLetterQueue(client *redis.Client, listName string, logger *zap.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, logger: logger, listName: listName}
}

// NewDeadLetter captures rec together with the reason it was rejected.
func NewDeadLetter(rec models.Record, reason error, at time.Time) DeadLetter {
	dl := DeadLetter{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		FailedAt:  at.UTC(),
	}
	if reason != nil {
		dl.Reason = reason.Error()
	}
	return dl
}

// Send appends the rejected record to the dead letter list
func (r *DeadLetterQueue) Send(ctx context.Context, rec models.Record, reason error) error {
	jsonData, err := json.Marshal(NewDeadLetter(rec, reason, time.Now()))
	if err != nil {
		r.logger.Error("failed to marshal record", zap.Error(err))
		return err
	}

	err = r.client.RPush(ctx, r.listName, jsonData).Err()
	if err != nil {
		return err
	}

	r.logger.Debug("record dead-lettered",
		zap.String("list", r.listName),
		zap.String("topic", rec.Topic),
		zap.Int64("offset", rec.Offset),
	)
	return nil
}
