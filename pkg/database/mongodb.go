package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duccv/contact-addin/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDB connects a single client from a connection URI.
type MongoDB struct {
	config config.MongoConfig
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoDB(cfg config.MongoConfig) *MongoDB {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30
	}
	return &MongoDB{
		config: cfg,
		logger: zap.L().With(zap.String("component", "mongodb")),
	}
}

func (m *MongoDB) Connect(ctx context.Context) error {
	if m.config.URI == "" {
		return errors.New("mongo.uri is required")
	}

	clientOptions := options.Client().ApplyURI(m.config.URI)
	if m.config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(m.config.MaxPoolSize)
	}
	if m.config.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(m.config.MinPoolSize)
	}
	clientOptions.SetRetryReads(true)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetConnectTimeout(time.Duration(m.config.ConnectTimeout) * time.Second)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(m.config.ConnectTimeout)*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("ping: %w", err)
	}

	m.client = client
	m.db = client.Database(m.config.Database)
	m.logger.Info("Successfully connected to MongoDB", zap.String("database", m.config.Database))
	return nil
}

// Database returns the configured database handle.
func (m *MongoDB) Database() *mongo.Database {
	return m.db
}

func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return errors.New("mongodb client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) GetType() DatabaseType {
	return MongoDBNoSQL
}

func (m *MongoDB) HealthCheck(ctx context.Context) map[string]error {
	err := m.Ping(ctx)
	if err != nil {
		m.logger.Error("MongoDB health check failed", zap.Error(err))
	}
	return map[string]error{"client": err}
}

func (m *MongoDB) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	m.logger.Info("MongoDB connection closed")
	return nil
}
