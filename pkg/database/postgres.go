package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/duccv/contact-addin/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresDB holds a write pool and a read pool. The read pool targets
// read_host when configured and otherwise shares the primary.
type PostgresDB struct {
	config    config.PostgresConfig
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
	logger    *zap.Logger
}

func NewPostgresDB(cfg config.PostgresConfig) *PostgresDB {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30
	}
	return &PostgresDB{
		config: cfg,
		logger: zap.L().With(zap.String("component", "postgres")),
	}
}

func (p *PostgresDB) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.config.ConnectTimeout)*time.Second)
	defer cancel()

	writeDSN := p.dsn(p.config.Host, p.config.Port)
	var err error
	p.writePool, err = p.openPool(ctx, writeDSN)
	if err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	if p.config.ReadHost == "" || p.config.ConnectionString != "" {
		p.readPool = p.writePool
	} else {
		readPort := p.config.ReadPort
		if readPort == 0 {
			readPort = p.config.Port
		}
		p.readPool, err = p.openPool(ctx, p.dsn(p.config.ReadHost, readPort))
		if err != nil {
			p.writePool.Close()
			return fmt.Errorf("read pool: %w", err)
		}
	}

	p.logger.Info("Successfully connected to PostgreSQL",
		zap.String("host", p.config.Host),
		zap.String("read_host", p.config.ReadHost),
		zap.String("database", p.config.Database))
	return nil
}

func (p *PostgresDB) openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	p.configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	for name, err := range p.HealthCheck(ctx) {
		if err != nil {
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	return nil
}

// Write returns the primary pool.
func (p *PostgresDB) Write() *pgxpool.Pool {
	return p.writePool
}

func (p *PostgresDB) Read() *pgxpool.Pool {
	return p.readPool
}

func (p *PostgresDB) GetType() DatabaseType {
	return PostgreSQL
}

func (p *PostgresDB) HealthCheck(ctx context.Context) map[string]error {
	result := make(map[string]error)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	check := func(name string, pool *pgxpool.Pool) {
		if pool == nil {
			result[name] = errors.New("pool not initialized")
			return
		}
		if err := pool.Ping(ctx); err != nil {
			p.logger.Error("PostgreSQL health check failed", zap.String("pool", name), zap.Error(err))
			result[name] = err
			return
		}
		result[name] = nil
	}

	check("write_pool", p.writePool)
	if p.readPool != p.writePool {
		check("read_pool", p.readPool)
	}
	return result
}

func (p *PostgresDB) Close() error {
	if p.readPool != nil && p.readPool != p.writePool {
		p.readPool.Close()
	}
	if p.writePool != nil {
		p.writePool.Close()
	}
	p.logger.Info("PostgreSQL connections closed")
	return nil
}

func (p *PostgresDB) dsn(host string, port int) string {
	if p.config.ConnectionString != "" {
		return p.config.ConnectionString
	}
	sslMode := p.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.config.Username, p.config.Password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + p.config.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

func (p *PostgresDB) configurePool(cfg *pgxpool.Config) {
	if p.config.MaxConns != 0 {
		cfg.MaxConns = p.config.MaxConns
	}
	if p.config.MinConns != 0 {
		cfg.MinConns = p.config.MinConns
	}
	if p.config.ConnMaxIdleTime != 0 {
		cfg.MaxConnIdleTime = time.Duration(p.config.ConnMaxIdleTime) * time.Minute
	}
	if p.config.ConnMaxLifetime != 0 {
		cfg.MaxConnLifetime = time.Duration(p.config.ConnMaxLifetime) * time.Hour
	}
	if p.config.HealthCheckPeriod != 0 {
		cfg.HealthCheckPeriod = time.Duration(p.config.HealthCheckPeriod) * time.Minute
	}
}
