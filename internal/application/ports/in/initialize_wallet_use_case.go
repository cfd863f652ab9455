package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type InitializeWalletUseCase interface {
	Execute(ctx context.Context, command dto.InitializeWalletCommand) (dto.WalletResource, *apperrors.AppError)
}
