package config

import "time"

const (
	BackendAuto      = "auto"
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendLocal     = "local"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStorageBackend = BackendAuto

	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultFirestoreCollection = "bookings"

	DefaultLocalStorePath = "data/bookings.json"

	DefaultRooms             = "Besar,Sedang,Kecil"
	DefaultFirstHour         = 8
	DefaultLastHour          = 17
	DefaultAllowPastBookings = false
	DefaultNotificationTTL   = 4 * time.Second

	DefaultKafkaBookingsTopic = "bookings.events"
	DefaultKafkaGroupID       = "roombook-sync"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
