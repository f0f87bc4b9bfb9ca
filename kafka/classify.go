package kafka

import (
	// Go Internal Packages
	"context"
	"io"
	"net"
	"syscall"

	// Local Packages
	errors "bus-chat/errors"

	// External Packages
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// isConnectivity reports whether err means the bus cannot be talked to at
// all, as opposed to a broker answering with an error for one request.
func isConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, kgo.ErrClientClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// timedOut reports whether err means a request ran out of time rather than
// being refused by a broker.
func timedOut(err error) bool {
	return errors.Is(err, kgo.ErrRecordTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// classify wraps err as a Connection error when it is a connectivity
// failure and as fallback otherwise.
func classify(err error, fallback errors.Kind, msg string) error {
	if isConnectivity(err) {
		return errors.ConnectionErr(msg, err)
	}
	return errors.E(fallback, msg, err)
}

// retriable reports whether a broker returned a retriable Kafka error code.
func retriable(err error) bool {
	var ke *kerr.Error
	if errors.As(err, &ke) {
		return ke.Retriable
	}
	return false
}
