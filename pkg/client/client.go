package client

import (
	"context"
	"roombook/pkg/logger"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Client holds the external connections a service opened at startup.
// Any of them may be nil when the matching backend is not configured.
type Client struct {
	Mongo     *mongo.Client
	Firestore *firestore.Client
	Redis     *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

// GracefulShutdown closes every open connection, logging failures instead of returning them.
func (c *Client) GracefulShutdown(log *logger.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			log.Error("Failed to close Firestore client", "error", err)
		} else {
			log.Info("Closed Firestore client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		} else {
			log.Info("Closed Redis client")
		}
	}
}
