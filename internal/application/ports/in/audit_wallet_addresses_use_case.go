package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type AuditWalletAddressesUseCase interface {
	Execute(ctx context.Context, command dto.AuditWalletAddressesCommand) (dto.AuditWalletAddressesOutput, *apperrors.AppError)
}
