package main

import (
	// Go Internal Packages
	"context"
	"fmt"
	"log"
	"os"
	"time"

	// Local Packages
	app "bus-chat/app"
	config "bus-chat/config"
	helpers "bus-chat/helpers"
	kafka "bus-chat/kafka"
	metrics "bus-chat/metrics"
	models "bus-chat/models"
	mongodb "bus-chat/repositories/mongodb"
	redis "bus-chat/repositories/redis"
	chat "bus-chat/services/chat"
	shutdown "bus-chat/shutdown"
	utils "bus-chat/utils"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config
// file given by the config flag, BUSCHAT_ environment variables and the
// remaining command line flags, in that order.
func LoadConfig(args []string) (*koanf.Koanf, config.Config, bool) {
	cli := kingpin.New("bus-chat", "Chat over a Kafka topic: stdin lines are published, topic messages are printed.")
	configPath := cli.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()
	brokers := cli.Flag("brokers", "Bus broker address, repeatable").Short('b').Strings()
	topic := cli.Flag("topic", "Topic to chat on").Short('t').String()
	group := cli.Flag("group", "Consumer group id (default: fresh per run)").Short('g').String()
	from := cli.Flag("from", "Where a new group starts reading").Enum("earliest", "latest")
	user := cli.Flag("user", "Name shown next to your messages").Short('u').String()
	level := cli.Flag("log-level", "Log level").String()
	printConfig := cli.Flag("print-config", "Print the effective configuration and exit").Bool()

	kingpin.MustParse(cli.Parse(args))

	overrides := map[string]any{}
	if len(*brokers) > 0 {
		overrides["kafka.brokers"] = *brokers
	}
	setIf(overrides, "kafka.topic", *topic)
	setIf(overrides, "kafka.group_id", *group)
	setIf(overrides, "kafka.initial_position", *from)
	setIf(overrides, "chat.user", *user)
	setIf(overrides, "logger.level", *level)

	k, conf, err := config.Load(*configPath, overrides)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return k, conf, *printConfig
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// NewLogger builds the logfmt logger. Chat output owns stdout, so logs
// default to stderr.
func NewLogger(conf config.Config) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(conf.Logger.Level))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = conf.Application
	cfg.OutputPaths = []string{conf.Logger.Output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	return logger
}

func main() {
	os.Exit(run())
}

func run() int {
	k, appKonf, printOnly := LoadConfig(os.Args[1:])

	// Validate the config loaded
	if err := appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if printOnly {
		if err := helpers.PrintStruct(os.Stdout, appKonf.Redacted()); err != nil {
			log.Fatalf("Error printing config: %v", err)
		}
		return 0
	}

	logger := NewLogger(appKonf)
	defer func() {
		_ = logger.Sync()
	}()

	if !appKonf.IsProdMode && appKonf.Logger.Level == "debug" {
		logger.Debug("effective configuration", zap.Any("config", k.All()))
	}

	if appKonf.Chat.User == "" {
		appKonf.Chat.User = utils.DefaultUser()
	}
	host, _ := os.Hostname()
	identity := models.NewConsumerIdentity(appKonf.Kafka.GroupID, appKonf.Application, appKonf.Kafka.Topic, appKonf.Kafka.Position())

	ctx := context.Background()

	var exporter *metrics.Exporter
	if appKonf.Metrics.Enabled {
		exporter = metrics.NewExporter(appKonf.Metrics.Namespace, appKonf.Metrics.Addr, logger)
		exporter.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = exporter.Shutdown(shutdownCtx)
		}()
	}

	clientConf := &kafka.ClientConfig{
		Brokers:             appKonf.Kafka.Brokers,
		Identity:            identity,
		ClientID:            appKonf.Kafka.ClientID,
		DialTimeout:         appKonf.Kafka.DialTimeout,
		PublishTimeout:      appKonf.Kafka.PublishTimeout,
		RecordsPerPoll:      appKonf.Kafka.RecordsPerPoll,
		IdlePollsBeforePing: appKonf.Kafka.IdlePollsBeforePing,
		AutoCreateTopic:     appKonf.Kafka.AutoCreateTopic,
		ProducerHooks:       exporter.ProducerHooks(),
		ConsumerHooks:       exporter.ConsumerHooks(),
	}
	factory := func(ctx context.Context) (chat.Publisher, chat.Subscriber, error) {
		pub, sub, err := kafka.NewClients(ctx, clientConf, logger)
		if err != nil {
			return nil, nil, err
		}
		return pub, sub, nil
	}

	appConf := &app.Config{
		Producer: chat.ProducerConfig{Topic: identity.Topic, Sender: appKonf.Chat.User},
		Consumer: chat.ConsumerConfig{
			Identity:        identity,
			PollTimeout:     appKonf.Kafka.PollTimeout,
			MaxConnRetries:  appKonf.Kafka.MaxConnRetries,
			RetryBackoff:    appKonf.Kafka.RetryBackoff,
			MaxRetryBackoff: appKonf.Kafka.MaxRetryBackoff,
			MaxMessageBytes: appKonf.Kafka.MaxMessageBytes,
		},
		GracePeriod:  appKonf.Shutdown.GracePeriod,
		MaxLineBytes: appKonf.Kafka.MaxMessageBytes,
		Host:         host,
	}

	coordinator := shutdown.NewCoordinator(shutdown.NewSignal(), logger)
	chatApp := app.New(appConf, factory, os.Stdin, chat.NewLineSink(os.Stdout), coordinator, logger)

	// Mongo Connection
	if appKonf.Mongo.Enabled {
		mongoClient, err := mongodb.Connect(ctx, appKonf.Mongo.URI, appKonf.Kafka.DialTimeout)
		if err != nil {
			logger.Fatal("cannot create mongo client", zap.Error(err))
		}
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
		chatApp.Sessions = mongodb.NewSessionRepository(mongoClient, appKonf.Mongo.Database, appKonf.Mongo.Collection)
	}

	// Redis Connection
	if appKonf.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password, appKonf.Kafka.DialTimeout)
		if err != nil {
			logger.Fatal("cannot create redis client", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		chatApp.DLQ = redis.NewDeadLetterQueue(redisClient, appKonf.Redis.List, logger)
	}

	logger.Info("starting chat",
		zap.String("user", appKonf.Chat.User),
		zap.String("topic", identity.Topic),
		zap.String("group", identity.GroupID),
	)

	if err := chatApp.Run(ctx); err != nil {
		logger.Error("chat session failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "bus-chat: %v\n", err)
		return 1
	}
	logger.Info("chat session ended")
	return 0
}
