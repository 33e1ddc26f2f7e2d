// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection holds the client and the application database
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection connects to MongoDB and verifies the server is reachable
func NewConnection(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Connection, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Mongo.ConnectTimeout).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetMinPoolSize(cfg.Mongo.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("database", cfg.Mongo.Database).Info("MongoDB connection established")

	return &Connection{
		Client:   client,
		Database: client.Database(cfg.Mongo.Database),
	}, nil
}

// Health pings the primary
func (c *Connection) Health(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Connection) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
