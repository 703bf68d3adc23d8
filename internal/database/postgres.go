package database

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type PgLiveRoomRepository struct {
	conn *sql.DB
}

func NewPgLiveRoomRepository(dsn string, maxConns int) (*PgLiveRoomRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// A join blocks on the target room's row lock while holding a connection,
	// so the pool size is the upper bound on in-flight transactions.
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgLiveRoomRepository{conn: db}, nil
}

func (db *PgLiveRoomRepository) Ping() error {
	return db.conn.Ping()
}

// Migrate applies the embedded schema migrations. Already-applied migrations
// are not an error.
func (db *PgLiveRoomRepository) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db.conn, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (db *PgLiveRoomRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
