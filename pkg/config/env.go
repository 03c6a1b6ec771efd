package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvTimezone = "TIMEZONE"

	EnvStorageBackend = "STORAGE_BACKEND"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvFirestoreProjectID       = "FIRESTORE_PROJECT_ID"
	EnvFirestoreCredentialsFile = "FIRESTORE_CREDENTIALS_FILE"
	EnvFirestoreCollection      = "FIRESTORE_COLLECTION"

	EnvLocalStorePath = "LOCAL_STORE_PATH"
	EnvLocalSeed      = "LOCAL_SEED"

	EnvRooms             = "ROOMS"
	EnvFirstHour         = "FIRST_HOUR"
	EnvLastHour          = "LAST_HOUR"
	EnvAllowPastBookings = "ALLOW_PAST_BOOKINGS"
	EnvNotificationTTL   = "NOTIFICATION_TTL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaGroupID       = "KAFKA_GROUP_ID"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
