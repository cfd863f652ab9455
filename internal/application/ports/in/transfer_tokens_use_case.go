package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type TransferTokensUseCase interface {
	Execute(ctx context.Context, command dto.TransferTokensCommand) (dto.TransferTokensOutput, *apperrors.AppError)
}
