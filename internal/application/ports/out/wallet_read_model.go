package out

import (
	"context"

	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

type WalletReadModel interface {
	GetByAddress(ctx context.Context, address solana.PublicKey) (entities.Wallet, bool, *apperrors.AppError)
	ListTransfers(ctx context.Context, address solana.PublicKey, limit int) ([]entities.WalletTransfer, bool, *apperrors.AppError)
}

// WalletChainReader exposes every stored wallet with its complete receipt
// history in ascending sequence order.
type WalletChainReader interface {
	ListWalletAddresses(ctx context.Context) ([]solana.PublicKey, *apperrors.AppError)
	GetTransferChain(ctx context.Context, address solana.PublicKey) (entities.Wallet, []entities.WalletTransfer, *apperrors.AppError)
}
