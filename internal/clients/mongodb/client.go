// Package mongodb checks that a freshly provisioned cluster accepts
// connections, using the official MongoDB Go driver.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/security"
)

// VerifyConfig holds settings for a connectivity check.
type VerifyConfig struct {
	ConnectionString    string
	ConnectTimeout      time.Duration
	ServerSelectTimeout time.Duration
}

// DefaultVerifyConfig returns timeouts suitable for a new Atlas cluster,
// whose DNS records may take a moment to propagate.
func DefaultVerifyConfig(uri string) *VerifyConfig {
	return &VerifyConfig{
		ConnectionString:    uri,
		ConnectTimeout:      20 * time.Second,
		ServerSelectTimeout: 20 * time.Second,
	}
}

// Verify connects, pings the primary and disconnects.
func Verify(ctx context.Context, config *VerifyConfig, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}

	clientOptions := options.Client().
		ApplyURI(config.ConnectionString).
		SetConnectTimeout(config.ConnectTimeout).
		SetServerSelectionTimeout(config.ServerSelectTimeout).
		SetAppName("atlas-provision")

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB",
		"connection_string", security.MaskConnectionString(config.ConnectionString))
	return nil
}
