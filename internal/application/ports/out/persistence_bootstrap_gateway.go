package out

import (
	"context"

	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

// WalletAddressAuditor recomputes stored wallet addresses under a namespace so
// a program id or seed change, or a tampered row, is caught.
type WalletAddressAuditor interface {
	ValidateWalletAddresses(ctx context.Context, namespace valueobjects.WalletAddressNamespace) *apperrors.AppError
}

type PersistenceBootstrapGateway interface {
	WalletAddressAuditor
	CheckReadiness(ctx context.Context) *apperrors.AppError
	RunMigrations(ctx context.Context) *apperrors.AppError
}
