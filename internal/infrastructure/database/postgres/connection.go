package postgres

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const (
	defaultMaxConns        = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	connMaxIdleTime        = 5 * time.Minute
	pingTimeout            = 5 * time.Second

	// Metadata queries are single-row lookups; anything slower is stuck.
	statementTimeout = "30s"
	applicationName  = "resonance"

	saturationWarn = 0.8
)

// openDB is swapped in tests.
var openDB = func(cc *pgx.ConnConfig) *sql.DB { return stdlib.OpenDB(*cc) }

// Connection is the database/sql pool over pgx that backs the analysis
// metadata index.
type Connection struct {
	db        *sql.DB
	logger    logging.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewConnection parses the config into a pgx connection config, opens the
// pool and pings it.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	cc, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid database configuration")
	}
	cc.RuntimeParams["statement_timeout"] = statementTimeout
	cc.RuntimeParams["application_name"] = applicationName

	db := openDB(cc)
	setPoolLimits(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed").
			WithDetail(net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	}

	c := NewConnectionWithDB(db, log)
	c.logger.Info("connected", logging.String("host", cfg.Host), logging.Int("port", cfg.Port), logging.String("database", cfg.DBName))
	return c, nil
}

// NewConnectionWithDB wraps an existing pool.
func NewConnectionWithDB(db *sql.DB, log logging.Logger) *Connection {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Connection{db: db, logger: log.Named("postgres")}
}

func setPoolLimits(db *sql.DB, cfg config.DatabaseConfig) {
	orInt := func(v, def int) int {
		if v > 0 {
			return v
		}
		return def
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnMaxLifetime
	}
	db.SetMaxOpenConns(orInt(cfg.MaxConns, defaultMaxConns))
	db.SetMaxIdleConns(orInt(cfg.MaxIdleConns, defaultMaxIdleConns))
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}

func (c *Connection) DB() *sql.DB { return c.db }

// HealthCheck pings the pool. A nearly saturated pool is logged but still
// healthy.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}
	st := c.db.Stats()
	if st.MaxOpenConnections > 0 {
		if usage := float64(st.InUse) / float64(st.MaxOpenConnections); usage >= saturationWarn {
			c.logger.Warn("connection pool nearly saturated",
				logging.Int("in_use", st.InUse),
				logging.Int("max_open", st.MaxOpenConnections),
				logging.Int64("wait_count", st.WaitCount))
		}
	}
	return nil
}

// Close is idempotent and returns the first close error on every call.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		if c.closeErr = c.db.Close(); c.closeErr != nil {
			c.logger.Error("close failed", logging.Err(c.closeErr))
			return
		}
		c.logger.Info("closed")
	})
	return c.closeErr
}

// buildDSN renders the connection URL. sslmode defaults to disable for local
// development.
func buildDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

//Personal.AI order the ending
