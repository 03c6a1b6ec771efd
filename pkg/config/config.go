package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"roombook/pkg/client"
	"roombook/pkg/grid"
	"roombook/pkg/logger"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string
	Timezone string
	Location *time.Location

	StorageBackend string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirestoreCollection      string

	LocalStorePath string
	LocalSeed      bool

	Rooms             []string
	FirstHour         int
	LastHour          int
	AllowPastBookings bool
	NotificationTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       string
	KafkaBookingsTopic string
	KafkaGroupID       string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Grid   *grid.Grid
	Log    *logger.Logger
	Client *client.Client
}

// Load reads a .env file when present, then the process environment.
// Invalid configuration is fatal.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if envFileErr != nil && !errors.Is(envFileErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		Port:     getEnvStr(EnvPort, DefaultPort),
		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),
		Timezone: getEnvStr(EnvTimezone, ""),

		StorageBackend: strings.ToLower(getEnvStr(EnvStorageBackend, DefaultStorageBackend)),

		MongoURI:          getEnvStr(EnvMongoURI, ""),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		FirestoreProjectID:       getEnvStr(EnvFirestoreProjectID, ""),
		FirestoreCredentialsFile: getEnvStr(EnvFirestoreCredentialsFile, ""),
		FirestoreCollection:      getEnvStr(EnvFirestoreCollection, DefaultFirestoreCollection),

		LocalStorePath: getEnvStr(EnvLocalStorePath, DefaultLocalStorePath),
		LocalSeed:      getEnvBool(EnvLocalSeed, false),

		Rooms:             getEnvList(EnvRooms, DefaultRooms),
		FirstHour:         getEnvNum(EnvFirstHour, DefaultFirstHour),
		LastHour:          getEnvNum(EnvLastHour, DefaultLastHour),
		AllowPastBookings: getEnvBool(EnvAllowPastBookings, DefaultAllowPastBookings),
		NotificationTTL:   getEnvDuration(EnvNotificationTTL, DefaultNotificationTTL),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),

		KafkaBrokers:       getEnvStr(EnvKafkaBrokers, ""),
		KafkaBookingsTopic: getEnvStr(EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic),
		KafkaGroupID:       getEnvStr(EnvKafkaGroupID, DefaultKafkaGroupID),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Client: client.NewClient(),
	}
}

// Backend resolves "auto" to a concrete storage backend.
func (cfg *Config) Backend() string {
	if cfg.StorageBackend != BackendAuto {
		return cfg.StorageBackend
	}
	switch {
	case cfg.FirestoreProjectID != "":
		return BackendFirestore
	case cfg.MongoURI != "":
		return BackendMongo
	default:
		return BackendLocal
	}
}

func (cfg *Config) KafkaEnabled() bool {
	return strings.TrimSpace(cfg.KafkaBrokers) != ""
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetFirestore() {
	cfg.Client.SetFirestore(cfg.Log, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// Validate checks every setting, and on success fills Grid and Location.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	g, err := grid.New(cfg.Rooms, cfg.FirstHour, cfg.LastHour)
	if err != nil {
		errors = append(errors, fmt.Sprintf("Invalid room grid: %v", err))
	}

	loc := time.Local
	if cfg.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("Timezone must be a valid IANA zone, got: %s", cfg.Timezone))
		}
	}

	switch cfg.StorageBackend {
	case BackendAuto, BackendMongo, BackendFirestore, BackendLocal:
	default:
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of auto, mongo, firestore, local, got: %s", cfg.StorageBackend))
	}

	switch cfg.Backend() {
	case BackendMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty when the mongo backend is selected")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	case BackendFirestore:
		if cfg.FirestoreProjectID == "" {
			errors = append(errors, "FirestoreProjectID cannot be empty when the firestore backend is selected")
		}
		if cfg.FirestoreCollection == "" {
			errors = append(errors, "FirestoreCollection cannot be empty")
		}
	case BackendLocal:
		if cfg.LocalStorePath == "" {
			errors = append(errors, "LocalStorePath cannot be empty when the local backend is selected")
		}
	}

	if cfg.KafkaEnabled() && cfg.KafkaBookingsTopic == "" {
		errors = append(errors, "KafkaBookingsTopic cannot be empty when KafkaBrokers is set")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.NotificationTTL <= 0 {
		errors = append(errors, fmt.Sprintf("NotificationTTL must be positive, got: %s", cfg.NotificationTTL))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	cfg.Grid = g
	cfg.Location = loc
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"timezone", cfg.Location.String(),
		"storage_backend", cfg.Backend(),
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"firestore_project_id", cfg.FirestoreProjectID,
		"firestore_credentials_set", cfg.FirestoreCredentialsFile != "",
		"firestore_collection", cfg.FirestoreCollection,
		"local_store_path", cfg.LocalStorePath,
		"local_seed", cfg.LocalSeed,
		"rooms", strings.Join(cfg.Rooms, ","),
		"first_hour", cfg.FirstHour,
		"last_hour", cfg.LastHour,
		"allow_past_bookings", cfg.AllowPastBookings,
		"notification_ttl", cfg.NotificationTTL,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
