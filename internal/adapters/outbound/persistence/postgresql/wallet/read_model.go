package wallet

import (
	"context"
	"database/sql"
	stderrors "errors"

	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

type ReadModel struct {
	db *sql.DB
}

var (
	_ portsout.WalletReadModel   = (*ReadModel)(nil)
	_ portsout.WalletChainReader = (*ReadModel)(nil)
)

func NewReadModel(db *sql.DB) *ReadModel {
	return &ReadModel{db: db}
}

func (r *ReadModel) GetByAddress(ctx context.Context, address solana.PublicKey) (entities.Wallet, bool, *apperrors.AppError) {
	query := `SELECT ` + walletColumns + `
FROM app.wallets
WHERE address = $1
`

	row, err := scanWalletRow(r.db.QueryRowContext(ctx, query, address.String()))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Wallet{}, false, nil
	}
	if err != nil {
		return entities.Wallet{}, false, walletQueryFailed(address, err)
	}

	wallet, err := row.toWallet()
	if err != nil {
		return entities.Wallet{}, false, corruptRecord(address, err)
	}
	return wallet, true, nil
}

func (r *ReadModel) ListTransfers(
	ctx context.Context,
	address solana.PublicKey,
	limit int,
) ([]entities.WalletTransfer, bool, *apperrors.AppError) {
	var exists bool
	if err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM app.wallets WHERE address = $1)`,
		address.String(),
	).Scan(&exists); err != nil {
		return nil, false, walletQueryFailed(address, err)
	}
	if !exists {
		return nil, false, nil
	}

	query := `SELECT ` + transferColumns + `
FROM app.wallet_transfers
WHERE wallet_address = $1
ORDER BY sequence DESC
LIMIT $2
`

	rows, err := r.db.QueryContext(ctx, query, address.String(), limit)
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

func (r *ReadModel) ListWalletAddresses(ctx context.Context) ([]solana.PublicKey, *apperrors.AppError) {
	rows, err := r.db.QueryContext(ctx, `SELECT address FROM app.wallets ORDER BY address`)
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

// GetTransferChain reads the wallet and its receipts in one repeatable-read
// snapshot so a concurrent transfer cannot split the pair.
func (r *ReadModel) GetTransferChain(
	ctx context.Context,
	address solana.PublicKey,
) (entities.Wallet, []entities.WalletTransfer, *apperrors.AppError) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return entities.Wallet{}, nil, walletQueryFailed(address, err)
	}
	defer func() { _ = tx.Rollback() }()

	row, err := scanWalletRow(tx.QueryRowContext(
		ctx,
		`SELECT `+walletColumns+` FROM app.wallets WHERE address = $1`,
		address.String(),
	))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.Wallet{}, nil, apperrors.NewNotFound(
			apperrors.CodeWalletNotFound,
			"wallet was not found",
			map[string]any{"address": address.String()},
		)
	}
	if err != nil {
		return entities.Wallet{}, nil, walletQueryFailed(address, err)
	}
	wallet, err := row.toWallet()
	if err != nil {
		return entities.Wallet{}, nil, corruptRecord(address, err)
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+transferColumns+` FROM app.wallet_transfers WHERE wallet_address = $1 ORDER BY sequence ASC`,
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
