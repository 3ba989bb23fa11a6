package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"roombook/config"
)

const (
	driverName                = "postgres"
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

// Connection splits reads and writes; both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	database string
	sslMode  string
}

func (e endpoint) dsn() string {
	query := url.Values{}
	if e.sslMode != "" {
		query.Set("sslmode", e.sslMode)
	}

	u := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(e.username, e.password),
		Host:     net.JoinHostPort(e.host, e.port),
		Path:     e.database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	read := endpoint{
		name:     "read",
		username: pg.Read.Username,
		password: pg.Read.Password,
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		database: pg.Prefix + pg.Read.Name,
		sslMode:  pg.Read.SSLMode,
	}

	write := endpoint{
		name:     "write",
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		database: pg.Prefix + pg.Write.Name,
		sslMode:  pg.Write.SSLMode,
	}

	retryWait := time.Duration(pg.RetryWaitTime) * time.Second

	return &Connection{
		Read:  mustConnect(read, pg.MaxRetry, retryWait),
		Write: mustConnect(write, pg.MaxRetry, retryWait),
	}
}

// DSN returns the write endpoint URL, used by the migration runner.
func DSN(cfg *config.Config) string {
	pg := cfg.DB.Postgres

	return endpoint{
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		database: pg.Prefix + pg.Write.Name,
		sslMode:  pg.Write.SSLMode,
	}.dsn()
}

func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}

func mustConnect(e endpoint, maxRetry int, wait time.Duration) *sqlx.DB {
	db, err := connect(context.Background(), e, max(maxRetry, 1), wait)
	if err != nil {
		log.Fatal().Err(err).Str("name", e.name).Msg("Failed connecting to database")
	}

	return db
}

func connect(ctx context.Context, e endpoint, attempts int, wait time.Duration) (*sqlx.DB, error) {
	var err error

	for attempt := range attempts {
		var db *sqlx.DB

		db, err = sqlx.ConnectContext(ctx, driverName, e.dsn())
		if err == nil {
			db.SetMaxIdleConns(postgresMaxIdleConnection)
			db.SetMaxOpenConns(postgresMaxOpenConnection)
			db.SetConnMaxLifetime(postgresConnMaxLifetime)

			log.Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.database).
				Msg("Connected to database")

			return db, nil
		}

		log.Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Int("attempt", attempt+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	return nil, fmt.Errorf("connecting to %s after %d attempts: %w", e.name, attempts, err)
}
