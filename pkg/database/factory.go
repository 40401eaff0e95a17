package database

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type DatabaseType string

const (
	PostgreSQL   DatabaseType = "postgres"
	MongoDBNoSQL DatabaseType = "mongodb"
)

type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	GetType() DatabaseType
	// HealthCheck pings every pool or client and reports per-component
	// results keyed by component name.
	HealthCheck(ctx context.Context) map[string]error
}

// Registry owns the connected databases of the process.
type Registry struct {
	mu        sync.Mutex
	databases map[string]Database
}

func NewRegistry() *Registry {
	return &Registry{databases: make(map[string]Database)}
}

// Connect connects db and registers it under name.
func (r *Registry) Connect(ctx context.Context, name string, db Database) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", db.GetType(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.databases[name] = db
	return nil
}

func (r *Registry) Get(name string) (Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.databases[name]
	if !ok {
		return nil, fmt.Errorf("database '%s' not found", name)
	}
	return db, nil
}

// HealthCheck reports "ok" or the error text per database component.
func (r *Registry) HealthCheck(ctx context.Context) map[string]string {
	r.mu.Lock()
	dbs := make(map[string]Database, len(r.databases))
	for k, v := range r.databases {
		dbs[k] = v
	}
	r.mu.Unlock()

	out := make(map[string]string)
	for name, db := range dbs {
		for component, err := range db.HealthCheck(ctx) {
			key := name + "." + component
			if err != nil {
				out[key] = err.Error()
			} else {
				out[key] = "ok"
			}
		}
	}
	return out
}

// CloseAll closes every registered database.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, db := range r.databases {
		if err := db.Close(); err != nil {
			zap.L().Error("Error closing database", zap.String("name", name), zap.Error(err))
		}
	}
	r.databases = make(map[string]Database)
}
