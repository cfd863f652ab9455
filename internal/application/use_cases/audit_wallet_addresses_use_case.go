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

const walletAddressInvalidCode = "WALLET_ADDRESS_INVALID"

type auditWalletAddressesUseCase struct {
	auditor   portsout.WalletAddressAuditor
	chains    portsout.WalletChainReader
	namespace valueobjects.WalletAddressNamespace
	clock     Clock
}

func NewAuditWalletAddressesUseCase(
	auditor portsout.WalletAddressAuditor,
	chains portsout.WalletChainReader,
	namespace valueobjects.WalletAddressNamespace,
	clock Clock,
) portsin.AuditWalletAddressesUseCase {
	if clock == nil {
		clock = NewSystemClock()
	}

	return &auditWalletAddressesUseCase{
		auditor:   auditor,
		chains:    chains,
		namespace: namespace,
		clock:     clock,
	}
}

// Execute reports a stored address that no longer derives from its owner and
// bump, or a receipt history that no longer chains, as a finding. Only a
// failed read is returned as an error.
func (u *auditWalletAddressesUseCase) Execute(
	ctx context.Context,
	command dto.AuditWalletAddressesCommand,
) (dto.AuditWalletAddressesOutput, *apperrors.AppError) {
	if u.auditor == nil || u.chains == nil {
		return dto.AuditWalletAddressesOutput{}, apperrors.NewInternal(
			"wallet_address_auditor_missing",
			"wallet address auditor and chain reader are required",
			nil,
		)
	}

	startedAt := command.StartedAt
	if startedAt.IsZero() {
		startedAt = u.clock.NowUTC()
	}

	if appErr := u.auditor.ValidateWalletAddresses(ctx, u.namespace); appErr != nil {
		if appErr.Code != walletAddressInvalidCode {
			return dto.AuditWalletAddressesOutput{}, appErr
		}
		return dto.AuditWalletAddressesOutput{
			ViolationCode: appErr.Code,
			Details:       appErr.Details,
			Duration:      u.clock.NowUTC().Sub(startedAt),
		}, nil
	}

	addresses, appErr := u.chains.ListWalletAddresses(ctx)
	if appErr != nil {
		return dto.AuditWalletAddressesOutput{}, appErr
	}

	verified := 0
	for _, address := range addresses {
		wallet, receipts, appErr := u.chains.GetTransferChain(ctx, address)
		if appErr != nil {
			return dto.AuditWalletAddressesOutput{}, appErr
		}
		if chainErr := entities.VerifyTransferChain(wallet, receipts); chainErr != nil {
			return dto.AuditWalletAddressesOutput{
				ViolationCode:  chainErr.Code,
				Details:        chainErr.Details,
				ChainsVerified: verified,
				Duration:       u.clock.NowUTC().Sub(startedAt),
			}, nil
		}
		verified++
	}

	return dto.AuditWalletAddressesOutput{
		Clean:          true,
		ChainsVerified: verified,
		Duration:       u.clock.NowUTC().Sub(startedAt),
	}, nil
}
