package repository

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// NewDB opens the MySQL connection pool backing the user store.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// A failed ping is not fatal: the pool reconnects once the database
	// comes up, queries just fail until then.
	if err := db.Ping(); err != nil {
		slog.Warn("database not reachable at startup", "error", err)
	}

	return db, nil
}
