package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// OpenDBWithDSN creates and configures a MySQL connection pool for dsn and
// checks it with a ping.
func OpenDBWithDSN(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database: DB_DSN_PRIMARY is not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		log.Error("error connecting to database", zap.Error(err))
		return nil, err
	}

	log.Info("database connection pool established")
	return db, nil
}
