package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"walletprogram/internal/application/dto"
	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
	"github.com/mattn/go-sqlite3"
)

const walletColumns = `address, owner, account_data, last_audit_digest, created_at, updated_at`

const transferColumns = `id, wallet_address, sequence, authority, source_holding, destination_holding,
  amount, executed_at, previous_digest, digest`

type rowScanner interface {
	Scan(dest ...any) error
}

type walletRow struct {
	address     string
	owner       string
	accountData []byte
	digest      []byte
	createdAt   int64
	updatedAt   int64
}

func scanWalletRow(row rowScanner) (walletRow, error) {
	out := walletRow{}
	err := row.Scan(&out.address, &out.owner, &out.accountData, &out.digest, &out.createdAt, &out.updatedAt)
	return out, err
}

// toWallet decodes the account payload and checks it against the indexed
// owner column so a hand-edited row cannot pass as a valid wallet.
func (r walletRow) toWallet() (entities.Wallet, error) {
	address, err := solana.PublicKeyFromBase58(r.address)
	if err != nil {
		return entities.Wallet{}, err
	}
	data, err := entities.DecodeWalletAccountData(r.accountData)
	if err != nil {
		return entities.Wallet{}, err
	}
	if data.Owner.String() != r.owner {
		return entities.Wallet{}, fmt.Errorf("owner column does not match account data")
	}

	return entities.Wallet{
		Address:          address,
		Owner:            data.Owner,
		Bump:             data.Bump,
		TransactionCount: data.TransactionCount,
		LastAuditDigest:  r.digest,
		CreatedAt:        time.Unix(0, r.createdAt).UTC(),
		UpdatedAt:        time.Unix(0, r.updatedAt).UTC(),
	}, nil
}

func (s *Store) Create(ctx context.Context, wallet entities.Wallet) (entities.Wallet, *apperrors.AppError) {
	const query = `
INSERT INTO wallets (address, owner, account_data, last_audit_digest, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

	_, err := s.db.ExecContext(
		ctx,
		query,
		wallet.Address.String(),
		wallet.Owner.String(),
		wallet.AccountData().Encode(),
		wallet.LastAuditDigest,
		wallet.CreatedAt.UnixNano(),
		wallet.UpdatedAt.UnixNano(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if stderrors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
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

	s.logger.Printf("wallet initialized address=%s owner=%s bump=%d", wallet.Address, wallet.Owner, wallet.Bump)
	return wallet, nil
}

func (s *Store) ApplyTransfer(
	ctx context.Context,
	command dto.ApplyWalletTransferCommand,
	settle dto.SettleWalletTransferFunc,
) (_ dto.ApplyWalletTransferResult, appErr *apperrors.AppError) {
	startedAt := time.Now()
	defer func() {
		outcome := "settled"
		if appErr != nil {
			outcome = appErr.Code
		}
		s.logger.Printf(
			"wallet transfer attempt address=%s transfer_id=%s result=%s latency_ms=%d",
			command.Address,
			command.TransferID,
			outcome,
			time.Since(startedAt).Milliseconds(),
		)
	}()

	if settle == nil {
		return dto.ApplyWalletTransferResult{}, apperrors.NewInternal(
			"wallet_transfer_settle_missing",
			"wallet transfer settle function is required",
			nil,
		)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dto.ApplyWalletTransferResult{}, apperrors.NewInternal(
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

	row, err := scanWalletRow(tx.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = ?`, command.Address.String()))
	if stderrors.Is(err, sql.ErrNoRows) {
		return dto.ApplyWalletTransferResult{}, apperrors.NewNotFound(
			apperrors.CodeWalletNotFound,
			"wallet was not found",
			map[string]any{"address": command.Address.String()},
		)
	}
	if err != nil {
		return dto.ApplyWalletTransferResult{}, corruptRecord(command.Address, err)
	}
	wallet, err := row.toWallet()
	if err != nil {
		return dto.ApplyWalletTransferResult{}, corruptRecord(command.Address, err)
	}

	if appErr := settle(ctx, wallet); appErr != nil {
		return dto.ApplyWalletTransferResult{}, appErr
	}

	updated, transfer, recordErr := wallet.RecordTransfer(entities.RecordTransferInput{
		TransferID:         command.TransferID,
		Authority:          command.Authority,
		SourceHolding:      command.SourceHolding,
		DestinationHolding: command.DestinationHolding,
		Amount:             command.Amount,
		ExecutedAt:         command.ExecutedAt,
	})
	if recordErr != nil {
		return dto.ApplyWalletTransferResult{}, commitFailed(command, recordErr.Code)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE wallets SET account_data = ?, last_audit_digest = ?, updated_at = ? WHERE address = ?`,
		updated.AccountData().Encode(),
		updated.LastAuditDigest,
		updated.UpdatedAt.UnixNano(),
		updated.Address.String(),
	); err != nil {
		return dto.ApplyWalletTransferResult{}, commitFailed(command, err.Error())
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO wallet_transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transfer.ID,
		transfer.WalletAddress.String(),
		strconv.FormatUint(transfer.Sequence, 10),
		transfer.Authority.String(),
		transfer.SourceHolding.String(),
		transfer.DestinationHolding.String(),
		strconv.FormatUint(transfer.Amount, 10),
		transfer.ExecutedAt.UnixNano(),
		transfer.PreviousDigest,
		transfer.Digest,
	); err != nil {
		return dto.ApplyWalletTransferResult{}, commitFailed(command, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return dto.ApplyWalletTransferResult{}, commitFailed(command, err.Error())
	}
	committed = true

	return dto.ApplyWalletTransferResult{Wallet: updated, Transfer: transfer}, nil
}

func (s *Store) GetByAddress(ctx context.Context, address solana.PublicKey) (entities.Wallet, bool, *apperrors.AppError) {
	row, err := scanWalletRow(s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = ?`, address.String()))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Wallet{}, false, nil
	}
	if err != nil {
		return entities.Wallet{}, false, apperrors.NewInternal(
			"wallet_query_failed",
			"failed to query wallet",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}

	wallet, err := row.toWallet()
	if err != nil {
		return entities.Wallet{}, false, corruptRecord(address, err)
	}
	return wallet, true, nil
}

func (s *Store) ListTransfers(
	ctx context.Context,
	address solana.PublicKey,
	limit int,
) ([]entities.WalletTransfer, bool, *apperrors.AppError) {
	var exists bool
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM wallets WHERE address = ?)`,
		address.String(),
	).Scan(&exists); err != nil {
		return nil, false, apperrors.NewInternal(
			"wallet_query_failed",
			"failed to query wallet",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}
	if !exists {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+transferColumns+` FROM wallet_transfers WHERE wallet_address = ? ORDER BY rowid DESC LIMIT ?`,
		address.String(),
		limit,
	)
	if err != nil {
		return nil, false, apperrors.NewInternal(
			"wallet_transfer_query_failed",
			"failed to query wallet transfers",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}
	defer rows.Close()

	transfers := make([]entities.WalletTransfer, 0, limit)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, false, corruptRecord(address, err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.NewInternal(
			"wallet_transfer_query_failed",
			"failed to query wallet transfers",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}

	return transfers, true, nil
}

func (s *Store) ListWalletAddresses(ctx context.Context) ([]solana.PublicKey, *apperrors.AppError) {
	rows, err := s.db.QueryContext(ctx, `SELECT address FROM wallets ORDER BY address`)
	if err != nil {
		return nil, apperrors.NewInternal(
			"wallet_list_failed",
			"failed to list wallets",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	var addresses []solana.PublicKey
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, apperrors.NewInternal(
				"wallet_list_failed",
				"failed to list wallets",
				map[string]any{"error": err.Error()},
			)
		}
		address, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, apperrors.NewInternal(
				"wallet_record_corrupt",
				"stored wallet record could not be decoded",
				map[string]any{"address": raw, "error": err.Error()},
			)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"wallet_list_failed",
			"failed to list wallets",
			map[string]any{"error": err.Error()},
		)
	}
	return addresses, nil
}

// GetTransferChain returns the wallet and every receipt in insertion order.
// Both reads share one transaction so the pair is consistent.
func (s *Store) GetTransferChain(
	ctx context.Context,
	address solana.PublicKey,
) (entities.Wallet, []entities.WalletTransfer, *apperrors.AppError) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entities.Wallet{}, nil, apperrors.NewInternal(
			"wallet_query_failed",
			"failed to query wallet",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}
	defer func() { _ = tx.Rollback() }()

	row, err := scanWalletRow(tx.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = ?`, address.String()))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Wallet{}, nil, apperrors.NewNotFound(
			apperrors.CodeWalletNotFound,
			"wallet was not found",
			map[string]any{"address": address.String()},
		)
	}
	if err != nil {
		return entities.Wallet{}, nil, apperrors.NewInternal(
			"wallet_query_failed",
			"failed to query wallet",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}
	wallet, err := row.toWallet()
	if err != nil {
		return entities.Wallet{}, nil, corruptRecord(address, err)
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+transferColumns+` FROM wallet_transfers WHERE wallet_address = ? ORDER BY rowid ASC`,
		address.String(),
	)
	if err != nil {
		return entities.Wallet{}, nil, apperrors.NewInternal(
			"wallet_transfer_query_failed",
			"failed to query wallet transfers",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}
	defer rows.Close()

	var transfers []entities.WalletTransfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return entities.Wallet{}, nil, corruptRecord(address, err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return entities.Wallet{}, nil, apperrors.NewInternal(
			"wallet_transfer_query_failed",
			"failed to query wallet transfers",
			map[string]any{"address": address.String(), "error": err.Error()},
		)
	}

	return wallet, transfers, nil
}

func scanTransfer(row rowScanner) (entities.WalletTransfer, error) {
	var (
		transfer    entities.WalletTransfer
		address     string
		sequence    string
		authority   string
		source      string
		destination string
		amount      string
		executedAt  int64
	)
	if err := row.Scan(
		&transfer.ID,
		&address,
		&sequence,
		&authority,
		&source,
		&destination,
		&amount,
		&executedAt,
		&transfer.PreviousDigest,
		&transfer.Digest,
	); err != nil {
		return entities.WalletTransfer{}, err
	}

	keys := []struct {
		raw    string
		target *solana.PublicKey
	}{
		{raw: address, target: &transfer.WalletAddress},
		{raw: authority, target: &transfer.Authority},
		{raw: source, target: &transfer.SourceHolding},
		{raw: destination, target: &transfer.DestinationHolding},
	}
	for _, key := range keys {
		parsed, err := solana.PublicKeyFromBase58(key.raw)
		if err != nil {
			return entities.WalletTransfer{}, err
		}
		*key.target = parsed
	}

	var err error
	if transfer.Sequence, err = strconv.ParseUint(sequence, 10, 64); err != nil {
		return entities.WalletTransfer{}, err
	}
	if transfer.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
		return entities.WalletTransfer{}, err
	}
	transfer.ExecutedAt = time.Unix(0, executedAt).UTC()
	return transfer, nil
}

func corruptRecord(address solana.PublicKey, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"wallet_record_corrupt",
		"stored wallet record could not be decoded",
		map[string]any{"address": address.String(), "error": err.Error()},
	)
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
