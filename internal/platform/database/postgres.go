package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

const (
	defaultMaxRetries = 10
	defaultRetryDelay = 2 * time.Second
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	// MaxRetries and RetryDelay bound the startup connect loop; zero values
	// fall back to the defaults.
	MaxRetries int
	RetryDelay time.Duration
}

// NewPostgresDB opens a connection, retrying while the database comes up.
func NewPostgresDB(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	var db *sql.DB
	var err error

	for i := 1; i <= maxRetries; i++ {
		log.Printf("Connecting to database (attempt %d/%d)...", i, maxRetries)
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			log.Println("Database connected successfully!")
			return db, nil
		}

		log.Printf("Database not ready, retrying in %s: %v", retryDelay, err)
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
