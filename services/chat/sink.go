package chat

import (
	// Go Internal Packages
	"fmt"
	"io"
	"sync"

	// Local Packages
	models "bus-chat/models"
)

const (
	ConsumerBanner = "Consumer started…"
	InputPrompt    = "Type message (Ctrl+C to exit):"
)

// LineSink writes one line per received message, delivery receipt or notice.
// Received messages read "> text" and receipts "< Sent at topic [partition] @offset".
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Message(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sender := msg.Sender(); sender != "" {
		_, err := fmt.Fprintf(s.w, "> [%s] %s\n", sender, msg.Text())
		return err
	}
	_, err := fmt.Fprintf(s.w, "> %s\n", msg.Text())
	return err
}

func (s *LineSink) Receipt(r models.DeliveryReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "< Sent at %s [%d] @%d\n", r.Topic, r.Partition, r.Offset)
	return err
}

func (s *LineSink) Notice(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, text)
	return err
}
