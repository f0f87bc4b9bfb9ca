package errors

import (
	// Go Internal Packages
	"context"
	"fmt"
	"testing"
	"time"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := ConnectionErr("ping brokers", context.DeadlineExceeded)
	wrapped := fmt.Errorf("starting: %w", base)

	assert.Equal(t, Connection, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, Connection))
	assert.True(t, Is(wrapped, context.DeadlineExceeded))
	assert.Equal(t, Other, KindOf(context.Canceled))
	assert.False(t, IsKind(nil, Other))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "publish: publish to chat failed: boom", PublishErr("chat", New("boom")).Error())
	assert.Equal(t, "timeout: consumer did not stop within 2s", GracePeriodErr("consumer", 2*time.Second).Error())
}

func TestValidationErrs(t *testing.T) {
	ve := ValidationErrs()
	require.NoError(t, ve.Err())

	ve.Add("kafka.topic", "cannot be empty")
	ve.Add("kafka.brokers", "cannot be empty")

	err := ve.Err()
	require.Error(t, err)
	assert.Equal(t, 2, ve.Len())
	assert.True(t, IsKind(err, Invalid))
	assert.Contains(t, err.Error(), "kafka.topic cannot be empty; kafka.brokers cannot be empty")
}

func TestEmptyParamErr(t *testing.T) {
	err := EmptyParamErr("chat.user")
	assert.True(t, IsKind(err, Invalid))
	assert.Contains(t, err.Error(), "chat.user cannot be empty")
}
