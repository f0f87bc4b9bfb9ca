package models

import "time"

// Session describes one run of the chat client. It holds counters only,
// never message contents. ID is unique per run; runs that reuse a consumer
// group share GroupID.
type Session struct {
	ID              string     `bson:"_id" json:"id"`
	GroupID         string     `bson:"group_id" json:"group_id"`
	Topic           string     `bson:"topic" json:"topic"`
	User            string     `bson:"user" json:"user"`
	Host            string     `bson:"host" json:"host"`
	InitialPosition string     `bson:"initial_position" json:"initial_position"`
	StartedAt       time.Time  `bson:"started_at" json:"started_at"`
	StoppedAt       *time.Time `bson:"stopped_at,omitempty" json:"stopped_at,omitempty"`
	Published       int64      `bson:"published" json:"published"`
	PublishFailures int64      `bson:"publish_failures" json:"publish_failures"`
	Received        int64      `bson:"received" json:"received"`
	Skipped         int64      `bson:"skipped" json:"skipped"`
	Dropped         int64      `bson:"dropped" json:"dropped"`
	Result          string     `bson:"result,omitempty" json:"result,omitempty"`
}
