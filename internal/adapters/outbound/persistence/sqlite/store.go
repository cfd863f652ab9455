package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	portsout "walletprogram/internal/application/ports/out"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store keeps wallets in a single SQLite file. The pool is pinned to one
// connection, so every transaction on the store is serialized.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

var (
	_ portsout.WalletRepository            = (*Store)(nil)
	_ portsout.WalletReadModel             = (*Store)(nil)
	_ portsout.WalletChainReader           = (*Store)(nil)
	_ portsout.StorageHealthChecker        = (*Store)(nil)
	_ portsout.PersistenceBootstrapGateway = (*Store)(nil)
)

func Open(path string, logger *log.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if logger == nil {
		logger = log.Default()
	}
	return &Store{db: db, path: path, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) *apperrors.AppError {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewInternal(
			"DB_CONNECT_FAILED",
			"failed to open sqlite database",
			map[string]any{"path": s.path, "error": err.Error()},
		)
	}
	return nil
}

func (s *Store) CheckReadiness(ctx context.Context) *apperrors.AppError {
	if appErr := s.Ping(ctx); appErr != nil {
		s.logger.Printf("sqlite readiness check failed path=%s error=%v", s.path, appErr.Details["error"])
		return appErr
	}

	s.logger.Printf("sqlite readiness check succeeded path=%s", s.path)
	return nil
}

func (s *Store) RunMigrations(ctx context.Context) *apperrors.AppError {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		s.logger.Printf("sqlite schema apply failed path=%s error=%v", s.path, err)
		return apperrors.NewInternal(
			"DB_MIGRATION_APPLY_FAILED",
			"failed to apply sqlite schema",
			map[string]any{"path": s.path},
		)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return apperrors.NewInternal(
			"DB_MIGRATION_APPLY_FAILED",
			"failed to read sqlite schema version",
			map[string]any{"path": s.path, "error": err.Error()},
		)
	}
	if version == currentSchemaVersion {
		s.logger.Printf("sqlite schema up to date path=%s version=%d", s.path, version)
		return nil
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return apperrors.NewInternal(
			"DB_MIGRATION_APPLY_FAILED",
			"failed to record sqlite schema version",
			map[string]any{"path": s.path, "error": err.Error()},
		)
	}

	s.logger.Printf("sqlite schema applied path=%s version=%d", s.path, currentSchemaVersion)
	return nil
}

func (s *Store) ValidateWalletAddresses(ctx context.Context, namespace valueobjects.WalletAddressNamespace) *apperrors.AppError {
	rows, err := s.db.QueryContext(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY address`)
	if err != nil {
		return apperrors.NewInternal(
			"WALLET_ADDRESS_SCAN_FAILED",
			"failed to scan stored wallets",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	var wallets []walletRow
	for rows.Next() {
		row, err := scanWalletRow(rows)
		if err != nil {
			return apperrors.NewInternal(
				"WALLET_ADDRESS_SCAN_FAILED",
				"failed to scan stored wallets",
				map[string]any{"error": err.Error()},
			)
		}
		wallets = append(wallets, row)
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternal(
			"WALLET_ADDRESS_SCAN_FAILED",
			"failed to scan stored wallets",
			map[string]any{"error": err.Error()},
		)
	}

	for _, row := range wallets {
		wallet, err := row.toWallet()
		if err != nil || !namespace.Validate(wallet.Address, wallet.Owner, wallet.Bump) {
			s.logger.Printf("stored wallet address invalid path=%s address=%s program_id=%s", s.path, row.address, namespace.ProgramID())
			return apperrors.NewInternal(
				"WALLET_ADDRESS_INVALID",
				"stored wallet address does not match the configured program namespace",
				map[string]any{"address": row.address, "program_id": namespace.ProgramID().String()},
			)
		}
	}

	s.logger.Printf("stored wallet addresses validated path=%s count=%d", s.path, len(wallets))
	return nil
}
