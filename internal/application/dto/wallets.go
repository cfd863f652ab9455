package dto

import (
	"context"
	"time"

	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

type DeriveWalletAddressQuery struct {
	Owner string
}

type WalletAddressResource struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
	Seed      string `json:"seed"`
}

type InitializeWalletCommand struct {
	Signer  string
	Owner   string
	Bump    *int
	Address string
}

type GetWalletQuery struct {
	Address string
}

type WalletResource struct {
	Address          string    `json:"address"`
	Owner            string    `json:"owner"`
	Bump             uint8     `json:"bump"`
	TransactionCount uint64    `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TransferTokensCommand struct {
	Address            string
	Signer             string
	SourceHolding      string
	DestinationHolding string
	Amount             string
}

type TransferTokensOutput struct {
	TransactionCount uint64                 `json:"transaction_count"`
	Transfer         WalletTransferResource `json:"transfer"`
}

type ListWalletTransfersQuery struct {
	Address string
	Limit   int
}

type ListWalletTransfersOutput struct {
	Transfers []WalletTransferResource `json:"transfers"`
}

type WalletTransferResource struct {
	ID                 string    `json:"id"`
	WalletAddress      string    `json:"wallet_address"`
	Sequence           uint64    `json:"sequence"`
	Authority          string    `json:"authority"`
	SourceHolding      string    `json:"source_holding"`
	DestinationHolding string    `json:"destination_holding"`
	Amount             string    `json:"amount"`
	ExecutedAt         time.Time `json:"executed_at"`
	Digest             string    `json:"digest"`
}

type ApplyWalletTransferCommand struct {
	Address            solana.PublicKey
	TransferID         string
	Authority          solana.PublicKey
	SourceHolding      solana.PublicKey
	DestinationHolding solana.PublicKey
	Amount             uint64
	ExecutedAt         time.Time
}

type ApplyWalletTransferResult struct {
	Wallet   entities.Wallet
	Transfer entities.WalletTransfer
}

// SettleWalletTransferFunc runs against the locked wallet record. A non-nil
// error aborts the transfer before the counter is touched.
type SettleWalletTransferFunc func(ctx context.Context, wallet entities.Wallet) *apperrors.AppError
