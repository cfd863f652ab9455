package policies

import (
	"crypto/subtle"

	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// AuthorizeWalletSigner succeeds only when the verified signer is the recorded
// owner. It must run before any delegated transfer and never mutates wallet.
func AuthorizeWalletSigner(wallet entities.Wallet, claimedSigner solana.PublicKey) *apperrors.AppError {
	if !claimedSigner.IsZero() && subtle.ConstantTimeCompare(wallet.Owner[:], claimedSigner[:]) == 1 {
		return nil
	}

	return apperrors.NewUnauthorized(
		apperrors.CodeUnauthorized,
		"signer is not the wallet owner",
		map[string]any{
			"address": wallet.Address.String(),
			"signer":  claimedSigner.String(),
		},
	)
}
