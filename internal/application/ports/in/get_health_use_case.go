package in

import (
	"context"

	"walletprogram/internal/application/dto"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}
