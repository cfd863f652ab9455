package use_cases

import (
	"context"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

const (
	defaultTransferListLimit = 50
	maxTransferListLimit     = 500
)

type listWalletTransfersUseCase struct {
	readModel portsout.WalletReadModel
}

func NewListWalletTransfersUseCase(readModel portsout.WalletReadModel) portsin.ListWalletTransfersUseCase {
	return &listWalletTransfersUseCase{readModel: readModel}
}

func (u *listWalletTransfersUseCase) Execute(ctx context.Context, query dto.ListWalletTransfersQuery) (dto.ListWalletTransfersOutput, *apperrors.AppError) {
	if u.readModel == nil {
		return dto.ListWalletTransfersOutput{}, apperrors.NewInternal(
			"wallet_read_model_missing",
			"wallet read model is required",
			nil,
		)
	}

	address, appErr := parseWalletAddress(query.Address)
	if appErr != nil {
		return dto.ListWalletTransfersOutput{}, appErr
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultTransferListLimit
	}
	if limit < 0 || limit > maxTransferListLimit {
		return dto.ListWalletTransfersOutput{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"limit must be between 1 and 500",
			map[string]any{"field": "limit", "max": maxTransferListLimit},
		)
	}

	transfers, found, appErr := u.readModel.ListTransfers(ctx, address, limit)
	if appErr != nil {
		return dto.ListWalletTransfersOutput{}, appErr
	}
	if !found {
		return dto.ListWalletTransfersOutput{}, walletNotFound(address)
	}

	out := make([]dto.WalletTransferResource, 0, len(transfers))
	for _, transfer := range transfers {
		out = append(out, toWalletTransferResource(transfer))
	}

	return dto.ListWalletTransfersOutput{Transfers: out}, nil
}
