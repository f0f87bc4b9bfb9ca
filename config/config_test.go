package config

import (
	// Go Internal Packages
	"os"
	"path/filepath"
	"testing"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	_, conf, err := Load("", nil)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, "bus-chat", conf.Application)
	assert.Equal(t, []string{"localhost:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, "chat-topic", conf.Kafka.Topic)
	assert.Empty(t, conf.Kafka.GroupID)
	assert.Equal(t, models.Latest, conf.Kafka.Position())
	assert.Equal(t, time.Second, conf.Kafka.PollTimeout)
	assert.Equal(t, 5, conf.Kafka.IdlePollsBeforePing)
	assert.Equal(t, 5*time.Second, conf.Shutdown.GracePeriod)
	assert.False(t, conf.Mongo.Enabled)
	assert.False(t, conf.Redis.Enabled)
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := []byte("kafka:\n  topic: \"room-1\"\n  poll_timeout: \"250ms\"\nchat:\n  user: \"ada\"\n")
	require.NoError(t, os.WriteFile(path, yml, 0o600))

	t.Setenv("BUSCHAT_CHAT__USER", "grace")
	t.Setenv("BUSCHAT_KAFKA__INITIAL_POSITION", "earliest")

	_, conf, err := Load(path, map[string]any{"kafka.topic": "room-2"})
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, "room-2", conf.Kafka.Topic)
	assert.Equal(t, 250*time.Millisecond, conf.Kafka.PollTimeout)
	assert.Equal(t, "grace", conf.Chat.User)
	assert.Equal(t, models.Earliest, conf.Kafka.Position())
}

func TestLoadMissingFile(t *testing.T) {
	_, conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "chat-topic", conf.Kafka.Topic)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("kafka: [unclosed"), 0o600))

	_, _, err := Load(path, nil)
	assert.True(t, errors.IsKind(err, errors.Invalid))
}

func TestValidate(t *testing.T) {
	_, conf, err := Load("", nil)
	require.NoError(t, err)

	conf.Kafka.Brokers = nil
	conf.Kafka.Topic = ""
	conf.Kafka.InitialPosition = "sideways"
	conf.Kafka.PollTimeout = 0
	conf.Kafka.IdlePollsBeforePing = -1
	conf.Shutdown.GracePeriod = -time.Second
	conf.Redis.Enabled = true
	conf.Redis.URI = ""

	err = conf.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Invalid))
	for _, field := range []string{
		"kafka.brokers", "kafka.topic", "kafka.initial_position",
		"kafka.poll_timeout", "kafka.idle_polls_before_ping",
		"shutdown.grace_period", "redis.uri",
	} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "kafka.poll_timeout", envKey("BUSCHAT_KAFKA__POLL_TIMEOUT"))
	assert.Equal(t, "application", envKey("BUSCHAT_APPLICATION"))
}

func TestRedacted(t *testing.T) {
	_, conf, err := Load("", nil)
	require.NoError(t, err)
	conf.Redis.Password = "secret"

	assert.Equal(t, "****", conf.Redacted().Redis.Password)
	assert.Equal(t, "secret", conf.Redis.Password)
}
