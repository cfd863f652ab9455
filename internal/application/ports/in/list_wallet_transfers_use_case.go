package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type ListWalletTransfersUseCase interface {
	Execute(ctx context.Context, query dto.ListWalletTransfersQuery) (dto.ListWalletTransfersOutput, *apperrors.AppError)
}
