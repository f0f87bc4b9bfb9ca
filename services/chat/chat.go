// Package chat runs the two halves of a chat session: a producer loop that
// publishes input lines and a consumer loop that prints what arrives on the
// topic. Each loop owns its bus handle exclusively; the only thing they share
// is the shutdown signal (and the output sink, which serialises writes).
package chat

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	models "bus-chat/models"
)

type Publisher interface {
	Publish(ctx context.Context, msg models.Message) (models.DeliveryReceipt, error)
	Close() error
}

type Subscriber interface {
	// Poll returns (nil, nil) when wait elapses without a record.
	Poll(ctx context.Context, wait time.Duration) (*models.Record, error)
	Close() error
}

// DeadLetterQueue keeps records that could not be decoded.
type DeadLetterQueue interface {
	Send(ctx context.Context, rec models.Record, reason error) error
}

// Sink is the user-facing output. Notice carries the startup banner and the
// input prompt.
type Sink interface {
	Message(msg models.Message) error
	Receipt(receipt models.DeliveryReceipt) error
	Notice(text string) error
}
