package out

import (
	"context"

	apperrors "walletprogram/internal/shared_kernel/errors"
)

type StorageHealthChecker interface {
	Ping(ctx context.Context) *apperrors.AppError
}
