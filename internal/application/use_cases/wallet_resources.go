package use_cases

import (
	"encoding/hex"
	"strings"

	"walletprogram/internal/application/dto"
	"walletprogram/internal/domain/entities"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

func toWalletResource(wallet entities.Wallet) dto.WalletResource {
	return dto.WalletResource{
		Address:          wallet.Address.String(),
		Owner:            wallet.Owner.String(),
		Bump:             wallet.Bump,
		TransactionCount: wallet.TransactionCount,
		CreatedAt:        wallet.CreatedAt.UTC(),
		UpdatedAt:        wallet.UpdatedAt.UTC(),
	}
}

func toWalletTransferResource(transfer entities.WalletTransfer) dto.WalletTransferResource {
	return dto.WalletTransferResource{
		ID:                 transfer.ID,
		WalletAddress:      transfer.WalletAddress.String(),
		Sequence:           transfer.Sequence,
		Authority:          transfer.Authority.String(),
		SourceHolding:      transfer.SourceHolding.String(),
		DestinationHolding: transfer.DestinationHolding.String(),
		Amount:             valueobjects.FormatTokenAmount(transfer.Amount),
		ExecutedAt:         transfer.ExecutedAt.UTC(),
		Digest:             hex.EncodeToString(transfer.Digest),
	}
}

func parseWalletAddress(raw string) (solana.PublicKey, *apperrors.AppError) {
	return valueobjects.ParsePublicKey("address", raw)
}

func walletNotFound(address solana.PublicKey) *apperrors.AppError {
	return apperrors.NewNotFound(
		apperrors.CodeWalletNotFound,
		"wallet was not found",
		map[string]any{"address": address.String()},
	)
}

func normalizeOptional(raw string) string {
	return strings.TrimSpace(raw)
}
