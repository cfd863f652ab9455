package out

import (
	"context"

	"walletprogram/internal/application/dto"
	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

// WalletRepository owns wallet records. Implementations serialize every
// operation on one address; ApplyTransfer holds that serialization across
// settle and the counter increment.
type WalletRepository interface {
	Create(ctx context.Context, wallet entities.Wallet) (entities.Wallet, *apperrors.AppError)
	ApplyTransfer(
		ctx context.Context,
		command dto.ApplyWalletTransferCommand,
		settle dto.SettleWalletTransferFunc,
	) (dto.ApplyWalletTransferResult, *apperrors.AppError)
}
