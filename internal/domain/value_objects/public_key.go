package valueobjects

import (
	"strings"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// ParsePublicKey decodes a base58 account identity. The zero key is rejected
// because it never identifies a signer or a holding.
func ParsePublicKey(field, raw string) (solana.PublicKey, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			field+" is required",
			map[string]any{"field": field},
		)
	}

	key, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			field+" must be a base58 encoded 32 byte public key",
			map[string]any{"field": field},
		)
	}
	if key.IsZero() {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			field+" must not be the zero public key",
			map[string]any{"field": field},
		)
	}

	return key, nil
}
