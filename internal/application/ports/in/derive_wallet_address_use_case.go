package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type DeriveWalletAddressUseCase interface {
	Execute(ctx context.Context, query dto.DeriveWalletAddressQuery) (dto.WalletAddressResource, *apperrors.AppError)
}
