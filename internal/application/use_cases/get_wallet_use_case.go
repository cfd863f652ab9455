package use_cases

import (
	"context"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type getWalletUseCase struct {
	namespace valueobjects.WalletAddressNamespace
	readModel portsout.WalletReadModel
}

func NewGetWalletUseCase(namespace valueobjects.WalletAddressNamespace, readModel portsout.WalletReadModel) portsin.GetWalletUseCase {
	return &getWalletUseCase{
		namespace: namespace,
		readModel: readModel,
	}
}

func (u *getWalletUseCase) Execute(ctx context.Context, query dto.GetWalletQuery) (dto.WalletResource, *apperrors.AppError) {
	if u.readModel == nil {
		return dto.WalletResource{}, apperrors.NewInternal(
			"wallet_read_model_missing",
			"wallet read model is required",
			nil,
		)
	}

	address, appErr := parseWalletAddress(query.Address)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}

	wallet, found, appErr := u.readModel.GetByAddress(ctx, address)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}
	if !found {
		return dto.WalletResource{}, walletNotFound(address)
	}

	if appErr := u.namespace.RequireAddress(wallet.Address, wallet.Owner, wallet.Bump); appErr != nil {
		return dto.WalletResource{}, appErr
	}

	return toWalletResource(wallet), nil
}
