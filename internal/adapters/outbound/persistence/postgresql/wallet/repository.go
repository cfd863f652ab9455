package wallet

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"
	"strconv"
	"time"

	"walletprogram/internal/application/dto"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ portsout.WalletRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Create(ctx context.Context, wallet entities.Wallet) (entities.Wallet, *apperrors.AppError) {
	const query = `
INSERT INTO app.wallets (address, owner, bump, transaction_count, last_audit_digest, created_at, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
`

	_, err := r.db.ExecContext(
		ctx,
		query,
		wallet.Address.String(),
		wallet.Owner.String(),
		int16(wallet.Bump),
		strconv.FormatUint(wallet.TransactionCount, 10),
		wallet.LastAuditDigest,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return entities.Wallet{}, apperrors.NewConflict(
				apperrors.CodeWalletAlreadyExists,
				"wallet already exists for owner",
				map[string]any{
					"address": wallet.Address.String(),
					"owner":   wallet.Owner.String(),
				},
			)
		}
		return entities.Wallet{}, apperrors.NewInternal(
			"wallet_insert_failed",
			"failed to insert wallet",
			map[string]any{"error": err.Error()},
		)
	}

	r.logf("wallet initialized address=%s owner=%s bump=%d", wallet.Address, wallet.Owner, wallet.Bump)
	return wallet, nil
}

func (r *Repository) ApplyTransfer(
	ctx context.Context,
	command dto.ApplyWalletTransferCommand,
	settle dto.SettleWalletTransferFunc,
) (result dto.ApplyWalletTransferResult, appErr *apperrors.AppError) {
	startedAt := time.Now()
	defer func() {
		outcome := "settled"
		if appErr != nil {
			outcome = appErr.Code
		}
		r.logf(
			"wallet transfer attempt address=%s transfer_id=%s result=%s latency_ms=%d",
			command.Address,
			command.TransferID,
			outcome,
			time.Since(startedAt).Milliseconds(),
		)
	}()

	if settle == nil {
		return result, apperrors.NewInternal(
			"wallet_transfer_settle_missing",
			"wallet transfer settle function is required",
			nil,
		)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return result, apperrors.NewInternal(
			"wallet_transfer_tx_begin_failed",
			"failed to start wallet transfer transaction",
			map[string]any{"error": err.Error()},
		)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	wallet, appErr := r.lockWalletForUpdate(ctx, tx, command)
	if appErr != nil {
		return result, appErr
	}

	if appErr := settle(ctx, wallet); appErr != nil {
		return result, appErr
	}

	updated, transfer, appErr := wallet.RecordTransfer(entities.RecordTransferInput{
		TransferID:         command.TransferID,
		Authority:          command.Authority,
		SourceHolding:      command.SourceHolding,
		DestinationHolding: command.DestinationHolding,
		Amount:             command.Amount,
		ExecutedAt:         command.ExecutedAt,
	})
	if appErr != nil {
		return result, commitFailed(command, appErr.Code)
	}

	if err := r.updateWallet(ctx, tx, updated); err != nil {
		return result, commitFailed(command, err.Error())
	}
	if err := r.insertTransfer(ctx, tx, transfer); err != nil {
		return result, commitFailed(command, err.Error())
	}
	if err := tx.Commit(); err != nil {
		return result, commitFailed(command, err.Error())
	}
	committed = true

	return dto.ApplyWalletTransferResult{Wallet: updated, Transfer: transfer}, nil
}

func (r *Repository) lockWalletForUpdate(
	ctx context.Context,
	tx *sql.Tx,
	command dto.ApplyWalletTransferCommand,
) (entities.Wallet, *apperrors.AppError) {
	query := `SELECT ` + walletColumns + `
FROM app.wallets
WHERE address = $1
FOR UPDATE
`

	row, err := scanWalletRow(tx.QueryRowContext(ctx, query, command.Address.String()))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Wallet{}, apperrors.NewNotFound(
			apperrors.CodeWalletNotFound,
			"wallet was not found",
			map[string]any{"address": command.Address.String()},
		)
	}
	if err != nil {
		return entities.Wallet{}, walletQueryFailed(command.Address, err)
	}

	wallet, err := row.toWallet()
	if err != nil {
		return entities.Wallet{}, corruptRecord(command.Address, err)
	}
	return wallet, nil
}

func (r *Repository) updateWallet(ctx context.Context, tx *sql.Tx, wallet entities.Wallet) error {
	const query = `
UPDATE app.wallets
SET transaction_count = $2::numeric,
    last_audit_digest = $3,
    updated_at = $4
WHERE address = $1
`

	_, err := tx.ExecContext(
		ctx,
		query,
		wallet.Address.String(),
		strconv.FormatUint(wallet.TransactionCount, 10),
		wallet.LastAuditDigest,
		wallet.UpdatedAt,
	)
	return err
}

func (r *Repository) insertTransfer(ctx context.Context, tx *sql.Tx, transfer entities.WalletTransfer) error {
	const query = `
INSERT INTO app.wallet_transfers (
  id, wallet_address, sequence, authority, source_holding, destination_holding,
  amount, executed_at, previous_digest, digest
)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7::numeric, $8, $9, $10)
`

	_, err := tx.ExecContext(
		ctx,
		query,
		transfer.ID,
		transfer.WalletAddress.String(),
		strconv.FormatUint(transfer.Sequence, 10),
		transfer.Authority.String(),
		transfer.SourceHolding.String(),
		transfer.DestinationHolding.String(),
		strconv.FormatUint(transfer.Amount, 10),
		transfer.ExecutedAt,
		transfer.PreviousDigest,
		transfer.Digest,
	)
	return err
}

func (r *Repository) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

func commitFailed(command dto.ApplyWalletTransferCommand, cause string) *apperrors.AppError {
	return apperrors.NewInternal(
		apperrors.CodeTransferCommitFailed,
		"token transfer settled but the wallet record was not updated",
		map[string]any{
			"address":     command.Address.String(),
			"transfer_id": command.TransferID,
			"error":       cause,
		},
	)
}
