package client

import (
	"context"
	"roombook/pkg/logger"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// SetFirestore initialises a Firebase app for projectID and opens its Firestore client.
// An empty credentialsFile falls back to application default credentials.
func (c *Client) SetFirestore(log *logger.Logger, projectID, credentialsFile string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		log.Fatal("Failed to initialise Firebase app",
			"error", err,
			"project_id", projectID,
		)
	}

	// The Firestore client outlives the dial context.
	fs, err := app.Firestore(context.Background())
	if err != nil {
		log.Fatal("Failed to open Firestore client", "error", err, "project_id", projectID)
	}

	log.Info("Successfully connected to Firestore", "project_id", projectID)
	c.Firestore = fs
}
