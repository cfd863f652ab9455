package shared

import (
	"context"
	"database/sql"
	"log"
	"time"

	portsout "walletprogram/internal/application/ports/out"
	apperrors "walletprogram/internal/shared_kernel/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewDatabasePool(databaseURL string, logger *log.Logger) *sql.DB {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		panic(err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	if logger != nil {
		logger.Printf("database pool initialized driver=pgx")
	}

	return db
}

type DatabasePinger struct {
	db *sql.DB
}

var _ portsout.StorageHealthChecker = (*DatabasePinger)(nil)

func NewDatabasePinger(db *sql.DB) *DatabasePinger {
	return &DatabasePinger{db: db}
}

func (p *DatabasePinger) Ping(ctx context.Context) *apperrors.AppError {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.db.PingContext(pingCtx); err != nil {
		return apperrors.NewInternal(
			"DB_CONNECT_FAILED",
			"failed to connect to database",
			map[string]any{"error": err.Error()},
		)
	}
	return nil
}
