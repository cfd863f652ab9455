package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type GetWalletUseCase interface {
	Execute(ctx context.Context, query dto.GetWalletQuery) (dto.WalletResource, *apperrors.AppError)
}
