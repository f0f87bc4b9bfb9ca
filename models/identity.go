package models

import (
	// Go Internal Packages
	"fmt"
	"strings"

	// External Packages
	"github.com/google/uuid"
)

// InitialPosition decides where a consumer group with no committed offset starts.
type InitialPosition int

const (
	Latest InitialPosition = iota
	Earliest
)

func (p InitialPosition) String() string {
	if p == Earliest {
		return "earliest"
	}
	return "latest"
}

// ParsePosition accepts "earliest" or "latest" in any case.
func ParsePosition(s string) (InitialPosition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latest", "":
		return Latest, nil
	case "earliest":
		return Earliest, nil
	default:
		return Latest, fmt.Errorf("unknown initial position %q", s)
	}
}

// ConsumerIdentity is created once at startup and used for the whole run.
type ConsumerIdentity struct {
	GroupID         string
	Topic           string
	InitialPosition InitialPosition
	// FreshGroup is set when GroupID was generated for this run, so the
	// group has no committed offsets to resume from.
	FreshGroup bool
}

// FreshGroupID returns a group id that no earlier run has used.
func FreshGroupID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// NewConsumerIdentity uses groupID when set and a fresh id otherwise.
func NewConsumerIdentity(groupID, prefix, topic string, pos InitialPosition) ConsumerIdentity {
	id := ConsumerIdentity{GroupID: groupID, Topic: topic, InitialPosition: pos}
	if groupID == "" {
		id.GroupID = FreshGroupID(prefix)
		id.FreshGroup = true
	}
	return id
}
