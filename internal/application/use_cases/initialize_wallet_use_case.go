package use_cases

import (
	"context"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/entities"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

type initializeWalletUseCase struct {
	namespace  valueobjects.WalletAddressNamespace
	repository portsout.WalletRepository
	clock      Clock
}

func NewInitializeWalletUseCase(
	namespace valueobjects.WalletAddressNamespace,
	repository portsout.WalletRepository,
	clock Clock,
) portsin.InitializeWalletUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}

	return &initializeWalletUseCase{
		namespace:  namespace,
		repository: repository,
		clock:      clock,
	}
}

func (u *initializeWalletUseCase) Execute(ctx context.Context, command dto.InitializeWalletCommand) (dto.WalletResource, *apperrors.AppError) {
	if u.repository == nil {
		return dto.WalletResource{}, apperrors.NewInternal(
			"wallet_repository_missing",
			"wallet repository is required",
			nil,
		)
	}

	owner, appErr := valueobjects.ParsePublicKey("owner", command.Owner)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}
	signer, appErr := valueobjects.ParsePublicKey("signer", command.Signer)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}
	if command.Bump == nil || *command.Bump < 0 || *command.Bump > 255 {
		return dto.WalletResource{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"bump must be an integer between 0 and 255",
			map[string]any{"field": "bump"},
		)
	}
	bump := uint8(*command.Bump)

	canonicalAddress, canonicalBump, appErr := u.namespace.FindCanonical(owner)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}
	// Only the canonical bump is accepted; any other valid bump would give the
	// same owner a second address.
	if bump != canonicalBump {
		return dto.WalletResource{}, apperrors.NewValidation(
			apperrors.CodeAddressMismatch,
			"bump is not the canonical bump for owner",
			map[string]any{
				"owner":          owner.String(),
				"bump":           int(bump),
				"canonical_bump": int(canonicalBump),
			},
		)
	}
	if claimed := normalizeOptional(command.Address); claimed != "" {
		claimedAddress, appErr := valueobjects.ParsePublicKey("address", claimed)
		if appErr != nil {
			return dto.WalletResource{}, appErr
		}
		if appErr := u.namespace.RequireAddress(claimedAddress, owner, bump); appErr != nil {
			return dto.WalletResource{}, appErr
		}
	}

	if !signer.Equals(owner) {
		return dto.WalletResource{}, apperrors.NewUnauthorized(
			apperrors.CodeUnauthorized,
			"only the owner may initialize its wallet",
			map[string]any{
				"owner":  owner.String(),
				"signer": signer.String(),
			},
		)
	}

	wallet, appErr := entities.NewWallet(entities.NewWalletInput{
		Address:   canonicalAddress,
		Owner:     owner,
		Bump:      bump,
		CreatedAt: u.clock.NowUTC(),
	})
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}

	created, appErr := u.repository.Create(ctx, wallet)
	if appErr != nil {
		return dto.WalletResource{}, appErr
	}

	return toWalletResource(created), nil
}
