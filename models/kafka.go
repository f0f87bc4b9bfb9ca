package models

import (
	// Go Internal Packages
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	// Local Packages
	errors "bus-chat/errors"
)

// Record is a raw record as read from the bus, before decoding.
type Record struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Message is a chat line travelling over the bus. It is never modified after
// construction.
type Message struct {
	Topic      string
	Key        []byte
	Value      []byte
	ProducedAt time.Time
}

// NewMessage builds a message for one input line. An empty sender means no key.
func NewMessage(topic, sender, line string, producedAt time.Time) Message {
	var key []byte
	if sender != "" {
		key = []byte(sender)
	}
	return Message{Topic: topic, Key: key, Value: []byte(line), ProducedAt: producedAt}
}

// Sender returns the message key as a string.
func (m Message) Sender() string {
	return string(m.Key)
}

func (m Message) Text() string {
	return string(m.Value)
}

// DeliveryReceipt is where the bus stored a published message.
type DeliveryReceipt struct {
	Topic     string
	Partition int32
	Offset    int64
}

// DecodeRecord turns a record into a chat message. Values that are not valid
// UTF-8 text or are larger than maxBytes (when positive) are rejected with a
// TransientRead error.
func DecodeRecord(rec Record, maxBytes int) (Message, error) {
	if maxBytes > 0 && len(rec.Value) > maxBytes {
		return Message{}, errors.TransientReadErr("record too large", fmt.Errorf("%d bytes, limit %d", len(rec.Value), maxBytes))
	}
	if !utf8.Valid(rec.Value) {
		return Message{}, errors.TransientReadErr("record value is not utf-8 text", nil)
	}
	if !utf8.Valid(rec.Key) {
		return Message{}, errors.TransientReadErr("record key is not utf-8 text", nil)
	}
	return Message{
		Topic:      rec.Topic,
		Key:        rec.Key,
		Value:      rec.Value,
		ProducedAt: rec.Timestamp,
	}, nil
}

// IsBlank reports whether a line carries nothing worth publishing.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
