package use_cases

import (
	"context"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type deriveWalletAddressUseCase struct {
	namespace valueobjects.WalletAddressNamespace
}

func NewDeriveWalletAddressUseCase(namespace valueobjects.WalletAddressNamespace) portsin.DeriveWalletAddressUseCase {
	return &deriveWalletAddressUseCase{namespace: namespace}
}

func (u *deriveWalletAddressUseCase) Execute(_ context.Context, query dto.DeriveWalletAddressQuery) (dto.WalletAddressResource, *apperrors.AppError) {
	owner, appErr := valueobjects.ParsePublicKey("owner", query.Owner)
	if appErr != nil {
		return dto.WalletAddressResource{}, appErr
	}

	address, bump, appErr := u.namespace.FindCanonical(owner)
	if appErr != nil {
		return dto.WalletAddressResource{}, appErr
	}

	return dto.WalletAddressResource{
		Owner:     owner.String(),
		Address:   address.String(),
		Bump:      bump,
		ProgramID: u.namespace.ProgramID().String(),
		Seed:      u.namespace.Seed(),
	}, nil
}
