package wallet

import (
	"fmt"
	"strconv"
	"time"

	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

const walletColumns = `address, owner, bump, transaction_count::text, last_audit_digest, created_at, updated_at`

const transferColumns = `id, wallet_address, sequence::text, authority, source_holding, destination_holding,
  amount::text, executed_at, previous_digest, digest`

type rowScanner interface {
	Scan(dest ...any) error
}

type walletRow struct {
	address          string
	owner            string
	bump             int16
	transactionCount string
	digest           []byte
	createdAt        time.Time
	updatedAt        time.Time
}

func scanWalletRow(row rowScanner) (walletRow, error) {
	out := walletRow{}
	err := row.Scan(&out.address, &out.owner, &out.bump, &out.transactionCount, &out.digest, &out.createdAt, &out.updatedAt)
	return out, err
}

func (r walletRow) toWallet() (entities.Wallet, error) {
	address, err := solana.PublicKeyFromBase58(r.address)
	if err != nil {
		return entities.Wallet{}, err
	}
	owner, err := solana.PublicKeyFromBase58(r.owner)
	if err != nil {
		return entities.Wallet{}, err
	}
	if r.bump < 0 || r.bump > 255 {
		return entities.Wallet{}, fmt.Errorf("bump %d out of range", r.bump)
	}
	count, err := strconv.ParseUint(r.transactionCount, 10, 64)
	if err != nil {
		return entities.Wallet{}, err
	}

	return entities.Wallet{
		Address:          address,
		Owner:            owner,
		Bump:             uint8(r.bump),
		TransactionCount: count,
		LastAuditDigest:  r.digest,
		CreatedAt:        r.createdAt.UTC(),
		UpdatedAt:        r.updatedAt.UTC(),
	}, nil
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
	)
	if err := row.Scan(
		&transfer.ID,
		&address,
		&sequence,
		&authority,
		&source,
		&destination,
		&amount,
		&transfer.ExecutedAt,
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
	transfer.ExecutedAt = transfer.ExecutedAt.UTC()
	return transfer, nil
}

func corruptRecord(address solana.PublicKey, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"wallet_record_corrupt",
		"stored wallet record could not be decoded",
		map[string]any{"address": address.String(), "error": err.Error()},
	)
}

func walletQueryFailed(address solana.PublicKey, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"wallet_query_failed",
		"failed to query wallet",
		map[string]any{"address": address.String(), "error": err.Error()},
	)
}
