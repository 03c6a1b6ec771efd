package main

import (
	"context"
	"os"

	"github.com/google/uuid"

	"roombook/internal/bookings/events"
	"roombook/internal/bookings/handler"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	"roombook/pkg/app"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
	"roombook/pkg/metrics"
	"roombook/pkg/middleware"
	"roombook/pkg/notify"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	ctx := context.Background()

	cfg.Log.Info("Starting Bookings service")

	m := metrics.New()
	instanceID := instanceName()

	repo, err := repository.New(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open booking storage", "backend", cfg.Backend(), "error", err)
	}

	var publisher service.EventPublisher
	var producer *kafka.Producer
	if cfg.KafkaEnabled() {
		producer = initProducer(cfg, m)
		publisher = events.NewKafkaPublisher(producer, instanceID)
	}

	bookingService := service.NewBookingService(
		repo,
		validator.NewBookingValidator(cfg.Log, cfg.Grid, validator.Options{
			AllowPast: cfg.AllowPastBookings,
			Location:  cfg.Location,
		}),
		cfg,
		service.Options{Publisher: publisher, Metrics: m},
	)
	if err := bookingService.Start(ctx); err != nil {
		cfg.Log.Fatal("Failed to load bookings", "backend", cfg.Backend(), "error", err)
	}
	cfg.Log.Info("Booking service initialized", "backend", cfg.Backend(), "instance", instanceID)

	notifier := notify.New(cfg.NotificationTTL)

	serverApp := app.NewApplication(cfg, m)
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
		serverApp.WithIdempotencyStore(middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL, cfg.Log))
		cfg.Log.Info("Idempotency keys shared through Redis", "addr", cfg.RedisAddr)
	}

	if cfg.KafkaEnabled() {
		consumer := initConsumer(cfg, m, instanceID, bookingService)
		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				cfg.Log.Error("Booking event consumer stopped", "error", err)
			}
		}()
		serverApp.OnShutdown(func(context.Context) {
			cancelConsumer()
			if err := consumer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka consumer", "error", err)
			}
		})
	}

	serverApp.OnShutdown(func(context.Context) { bookingService.Stop() })
	serverApp.OnShutdown(func(context.Context) { notifier.Stop() })
	if producer != nil {
		serverApp.OnShutdown(func(context.Context) {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}
	serverApp.OnShutdown(func(ctx context.Context) {
		if err := repo.Close(ctx); err != nil {
			cfg.Log.Error("Failed to close booking storage", "error", err)
		}
		cfg.GracefulShutdown()
	})

	serverApp.SetApp(
		handler.NewHealthHandler(bookingService, cfg.Backend(), m.Handler(), cfg.Log),
		handler.NewBookingHandler(bookingService, notifier, cfg.Log),
	)
	serverApp.Run()
}

func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = ServiceName
	}
	return host + "-" + uuid.NewString()[:8]
}

func kafkaConfig(cfg *config.Config) *kafka_config.Config {
	kcfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log.Info)
	return kcfg
}

func initProducer(cfg *config.Config, m *metrics.Metrics) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaConfig(cfg), cfg.KafkaBookingsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	return producer
}

// Every instance must see every event, so each joins its own consumer group.
func initConsumer(cfg *config.Config, m *metrics.Metrics, instanceID string, svc service.BookingService) *kafka.Consumer {
	consumer, err := kafka.NewConsumer(
		kafkaConfig(cfg),
		cfg.KafkaBookingsTopic,
		cfg.KafkaGroupID+"-"+instanceID,
		events.Handler(instanceID, svc, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	return consumer
}
