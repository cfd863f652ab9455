package valueobjects

import (
	"strings"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// SignedRequestMessage is what a signer signs for one request: the method and
// path on the first line, then the raw body.
func SignedRequestMessage(method, path string, body []byte) []byte {
	message := make([]byte, 0, len(method)+len(path)+2+len(body))
	message = append(message, strings.ToUpper(method)...)
	message = append(message, ' ')
	message = append(message, path...)
	message = append(message, '\n')
	return append(message, body...)
}

func VerifySignerSignature(signer solana.PublicKey, rawSignature string, message []byte) *apperrors.AppError {
	trimmed := strings.TrimSpace(rawSignature)
	if trimmed == "" {
		return apperrors.NewUnauthenticated(
			apperrors.CodeSignatureInvalid,
			"request signature is required",
			nil,
		)
	}

	signature, err := solana.SignatureFromBase58(trimmed)
	if err != nil {
		return apperrors.NewUnauthenticated(
			apperrors.CodeSignatureInvalid,
			"request signature must be a base58 ed25519 signature",
			nil,
		)
	}
	if !signature.Verify(signer, message) {
		return apperrors.NewUnauthenticated(
			apperrors.CodeSignatureInvalid,
			"request signature does not match signer",
			map[string]any{"signer": signer.String()},
		)
	}

	return nil
}
