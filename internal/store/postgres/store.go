package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	conf "github.com/avichaydahan/brandlight-reports/config"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/store"
)

// Store is the struct implementing the Store interface.
type Store struct {
	downloadStore store.DownloadStore
	config        *conf.DatabaseConfig
	conn          *pgxpool.Pool
}

// New creates a new Store instance.
func New(config *conf.DatabaseConfig) *Store {
	return &Store{config: config}
}

func (s *Store) Download() store.DownloadStore {
	if s.downloadStore == nil {
		s.downloadStore = &Download{storage: s}
	}
	return s.downloadStore
}

// Database returns the database connection or a custom error if it is not opened.
func (s *Store) Database() (*pgxpool.Pool, error) {
	if s.conn == nil {
		return nil, errors.New("database connection is not opened")
	}
	return s.conn, nil
}

// Open establishes a connection to the database and returns a custom error if it fails.
func (s *Store) Open() error {
	config, err := pgxpool.ParseConfig(s.config.Url)
	if err != nil {
		return errors.NewDBInternalError("open.parse_config", err)
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return errors.NewDBInternalError("open.connect", err)
	}
	s.conn = conn
	slog.Debug("brandlight_reports.store.connection_opened", slog.String("message", "postgres: connection opened"))
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		slog.Debug("brandlight_reports.store.connection_closed", slog.String("message", "postgres: connection closed"))
	}
	return nil
}
