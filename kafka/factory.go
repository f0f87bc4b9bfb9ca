package kafka

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"
	utils "bus-chat/utils"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

type ClientConfig struct {
	Brokers        []string
	Identity       models.ConsumerIdentity
	ClientID       string
	DialTimeout    time.Duration
	PublishTimeout time.Duration
	RecordsPerPoll int
	// IdlePollsBeforePing is how many empty polls in a row the subscriber
	// tolerates before checking that the brokers still answer.
	IdlePollsBeforePing int
	AutoCreateTopic     bool
	ProducerHooks       []kgo.Hook
	ConsumerHooks       []kgo.Hook
}

// NewClients builds the publisher and subscriber for one chat session. Each
// side gets its own kgo client so neither loop shares I/O state with the
// other. Both clients must answer a ping within DialTimeout, otherwise
// everything built so far is closed and a Connection error is returned.
func NewClients(ctx context.Context, conf *ClientConfig, logger *zap.Logger) (*Publisher, *Subscriber, error) {
	prodClient, err := kgo.NewClient(producerOpts(conf)...)
	if err != nil {
		return nil, nil, errors.ConnectionErr("create producer client", err)
	}
	if err = ping(ctx, prodClient, conf.DialTimeout); err != nil {
		prodClient.Close()
		return nil, nil, errors.ConnectionErr("reach brokers", err)
	}

	consClient, err := kgo.NewClient(consumerOpts(conf, logger)...)
	if err != nil {
		prodClient.Close()
		return nil, nil, errors.ConnectionErr("create consumer client", err)
	}
	if err = ping(ctx, consClient, conf.DialTimeout); err != nil {
		prodClient.Close()
		consClient.Close()
		return nil, nil, errors.ConnectionErr("reach brokers", err)
	}

	logger.Info("connected to bus",
		zap.Strings("brokers", conf.Brokers),
		zap.String("topic", conf.Identity.Topic),
		zap.String("group", conf.Identity.GroupID),
		zap.Stringer("initial_position", conf.Identity.InitialPosition),
	)

	pub := NewPublisher(prodClient, conf.Identity.Topic, conf.PublishTimeout, conf.DialTimeout, logger)
	sub := NewSubscriber(consClient, conf.RecordsPerPoll, conf.IdlePollsBeforePing, conf.DialTimeout, logger)
	return pub, sub, nil
}

func ping(ctx context.Context, client *kgo.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(pingCtx)
}

func producerOpts(conf *ClientConfig) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),             // Connects to Kafka brokers
		kgo.DefaultProduceTopic(conf.Identity.Topic), // Topic used when a record has none
		kgo.RecordDeliveryTimeout(conf.PublishTimeout),
		kgo.DialTimeout(conf.DialTimeout),
	}
	if conf.ClientID != "" {
		opts = append(opts, kgo.ClientID(conf.ClientID+"-producer"))
	}
	if conf.AutoCreateTopic {
		opts = append(opts, kgo.AllowAutoTopicCreation())
	}
	if len(conf.ProducerHooks) > 0 {
		opts = append(opts, kgo.WithHooks(conf.ProducerHooks...)) // Attaches monitoring hooks
	}
	return opts
}

func consumerOpts(conf *ClientConfig, logger *zap.Logger) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),         // Connects to Kafka brokers
		kgo.ConsumerGroup(conf.Identity.GroupID), // Specifies the consumer group
		kgo.ConsumeTopics(conf.Identity.Topic),   // Specifies a single topic to consume
		kgo.ConsumeResetOffset(resetOffset(conf.Identity.InitialPosition)),
		kgo.DialTimeout(conf.DialTimeout),
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			for topic, partitions := range assigned {
				logger.Info("partitions assigned", zap.String("topic", topic), zap.String("partitions", utils.JoinInt32Slice(partitions)))
			}
		}),
		kgo.OnPartitionsRevoked(func(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
			for topic, partitions := range revoked {
				logger.Info("partitions revoked", zap.String("topic", topic), zap.String("partitions", utils.JoinInt32Slice(partitions)))
			}
		}),
	}
	if conf.ClientID != "" {
		opts = append(opts, kgo.ClientID(conf.ClientID+"-consumer"))
	}
	if conf.AutoCreateTopic {
		opts = append(opts, kgo.AllowAutoTopicCreation())
	}
	if len(conf.ConsumerHooks) > 0 {
		opts = append(opts, kgo.WithHooks(conf.ConsumerHooks...))
	}
	return opts
}

// resetOffset maps the initial read position onto where a group with no
// committed offset starts.
func resetOffset(pos models.InitialPosition) kgo.Offset {
	if pos == models.Earliest {
		return kgo.NewOffset().AtStart()
	}
	return kgo.NewOffset().AtEnd()
}
