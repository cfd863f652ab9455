package use_cases

import (
	"context"
	"log"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/entities"
	"walletprogram/internal/domain/policies"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

var knownTransferReasons = map[string]struct{}{
	apperrors.ReasonInsufficientBalance:     {},
	apperrors.ReasonInvalidTokenAccount:     {},
	apperrors.ReasonOwnerMismatch:           {},
	apperrors.ReasonTokenServiceUnavailable: {},
	apperrors.ReasonTokenServiceRejected:    {},
}

type transferTokensUseCase struct {
	namespace    valueobjects.WalletAddressNamespace
	repository   portsout.WalletRepository
	tokenGateway portsout.TokenTransferGateway
	clock        Clock
	ids          IDGenerator
	logger       *log.Logger
}

func NewTransferTokensUseCase(
	namespace valueobjects.WalletAddressNamespace,
	repository portsout.WalletRepository,
	tokenGateway portsout.TokenTransferGateway,
	clock Clock,
	ids IDGenerator,
	logger *log.Logger,
) portsin.TransferTokensUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDv7Generator()
	}
	if logger == nil {
		logger = log.Default()
	}

	return &transferTokensUseCase{
		namespace:    namespace,
		repository:   repository,
		tokenGateway: tokenGateway,
		clock:        clock,
		ids:          ids,
		logger:       logger,
	}
}

func (u *transferTokensUseCase) Execute(ctx context.Context, command dto.TransferTokensCommand) (dto.TransferTokensOutput, *apperrors.AppError) {
	if u.repository == nil || u.tokenGateway == nil {
		return dto.TransferTokensOutput{}, apperrors.NewInternal(
			"transfer_dependencies_missing",
			"wallet repository and token gateway are required",
			nil,
		)
	}

	address, appErr := parseWalletAddress(command.Address)
	if appErr != nil {
		return dto.TransferTokensOutput{}, appErr
	}
	signer, appErr := valueobjects.ParsePublicKey("signer", command.Signer)
	if appErr != nil {
		return dto.TransferTokensOutput{}, appErr
	}
	source, appErr := valueobjects.ParsePublicKey("source_holding", command.SourceHolding)
	if appErr != nil {
		return dto.TransferTokensOutput{}, appErr
	}
	destination, appErr := valueobjects.ParsePublicKey("destination_holding", command.DestinationHolding)
	if appErr != nil {
		return dto.TransferTokensOutput{}, appErr
	}
	amount, appErr := valueobjects.ParseTokenAmount(command.Amount)
	if appErr != nil {
		return dto.TransferTokensOutput{}, appErr
	}

	transferID, err := u.ids.NewID()
	if err != nil {
		return dto.TransferTokensOutput{}, apperrors.NewInternal(
			"wallet_transfer_id_failed",
			"failed to generate transfer id",
			map[string]any{"error": err.Error()},
		)
	}

	settle := func(ctx context.Context, wallet entities.Wallet) *apperrors.AppError {
		if appErr := u.namespace.RequireAddress(wallet.Address, wallet.Owner, wallet.Bump); appErr != nil {
			return appErr
		}
		if _, appErr := wallet.NextTransactionCount(); appErr != nil {
			return appErr
		}
		if appErr := policies.AuthorizeWalletSigner(wallet, signer); appErr != nil {
			return appErr
		}

		gatewayErr := u.tokenGateway.Transfer(ctx, portsout.TokenTransferInput{
			Reference:          transferID,
			SourceHolding:      source,
			DestinationHolding: destination,
			Authority:          signer,
			Amount:             amount,
		})
		if gatewayErr != nil {
			return delegatedTransferFailed(wallet, gatewayErr)
		}
		return nil
	}

	result, appErr := u.repository.ApplyTransfer(ctx, dto.ApplyWalletTransferCommand{
		Address:            address,
		TransferID:         transferID,
		Authority:          signer,
		SourceHolding:      source,
		DestinationHolding: destination,
		Amount:             amount,
		ExecutedAt:         u.clock.NowUTC(),
	}, settle)
	if appErr != nil {
		if appErr.Code == apperrors.CodeTransferCommitFailed {
			u.logger.Printf(
				"wallet transfer settled but not recorded address=%s transfer_id=%s amount=%d code=%s",
				address,
				transferID,
				amount,
				appErr.Code,
			)
		}
		return dto.TransferTokensOutput{}, appErr
	}

	u.logger.Printf(
		"wallet transfer settled address=%s transfer_id=%s sequence=%d amount=%d",
		address,
		transferID,
		result.Transfer.Sequence,
		amount,
	)

	return dto.TransferTokensOutput{
		TransactionCount: result.Wallet.TransactionCount,
		Transfer:         toWalletTransferResource(result.Transfer),
	}, nil
}

func delegatedTransferFailed(wallet entities.Wallet, gatewayErr *apperrors.AppError) *apperrors.AppError {
	reason := gatewayErr.Code
	if _, ok := knownTransferReasons[reason]; !ok {
		reason = apperrors.ReasonTokenServiceRejected
	}

	return apperrors.NewFailedDependency(
		apperrors.CodeDelegatedTransferFailed,
		"delegated token transfer failed",
		map[string]any{
			"address": wallet.Address.String(),
			"reason":  reason,
			"detail":  gatewayErr.Message,
		},
	)
}
