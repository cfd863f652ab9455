package entities

import (
	"math"
	"time"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// Wallet is the per-owner record tracked by the program. Owner and Bump never
// change after creation; TransactionCount only moves forward by one per
// settled transfer.
type Wallet struct {
	Address          solana.PublicKey
	Owner            solana.PublicKey
	Bump             uint8
	TransactionCount uint64
	LastAuditDigest  []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewWalletInput struct {
	Address   solana.PublicKey
	Owner     solana.PublicKey
	Bump      uint8
	CreatedAt time.Time
}

func NewWallet(input NewWalletInput) (Wallet, *apperrors.AppError) {
	if input.Address.IsZero() {
		return Wallet{}, apperrors.NewInternal(
			"wallet_address_missing",
			"wallet address is required",
			nil,
		)
	}
	if input.Owner.IsZero() {
		return Wallet{}, apperrors.NewInternal(
			"wallet_owner_missing",
			"wallet owner is required",
			nil,
		)
	}

	createdAt := input.CreatedAt.UTC()
	return Wallet{
		Address:          input.Address,
		Owner:            input.Owner,
		Bump:             input.Bump,
		TransactionCount: 0,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}, nil
}

func (w Wallet) NextTransactionCount() (uint64, *apperrors.AppError) {
	if w.TransactionCount == math.MaxUint64 {
		return 0, apperrors.NewInternal(
			"wallet_transaction_count_overflow",
			"wallet transaction count cannot be incremented",
			map[string]any{"address": w.Address.String()},
		)
	}

	return w.TransactionCount + 1, nil
}

type RecordTransferInput struct {
	TransferID         string
	Authority          solana.PublicKey
	SourceHolding      solana.PublicKey
	DestinationHolding solana.PublicKey
	Amount             uint64
	ExecutedAt         time.Time
}

// RecordTransfer returns the wallet with its counter advanced by one and the
// audit receipt chained to the previous one. The receiver is left untouched.
func (w Wallet) RecordTransfer(input RecordTransferInput) (Wallet, WalletTransfer, *apperrors.AppError) {
	next, appErr := w.NextTransactionCount()
	if appErr != nil {
		return Wallet{}, WalletTransfer{}, appErr
	}

	transfer, appErr := NewWalletTransfer(NewWalletTransferInput{
		ID:                 input.TransferID,
		WalletAddress:      w.Address,
		Sequence:           next,
		Authority:          input.Authority,
		SourceHolding:      input.SourceHolding,
		DestinationHolding: input.DestinationHolding,
		Amount:             input.Amount,
		ExecutedAt:         input.ExecutedAt,
		PreviousDigest:     w.LastAuditDigest,
	})
	if appErr != nil {
		return Wallet{}, WalletTransfer{}, appErr
	}

	updated := w
	updated.TransactionCount = next
	updated.LastAuditDigest = append([]byte(nil), transfer.Digest...)
	updated.UpdatedAt = transfer.ExecutedAt
	return updated, transfer, nil
}
