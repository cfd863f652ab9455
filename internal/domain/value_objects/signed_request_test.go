//go:build !integration

package valueobjects

import (
	"testing"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

func TestVerifySignerSignature(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	message := SignedRequestMessage("post", "/v1/wallets", []byte(`{"bump":254}`))
	signature, err := key.Sign(message)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if appErr := VerifySignerSignature(key.PublicKey(), signature.String(), message); appErr != nil {
		t.Fatalf("expected valid signature, got %+v", appErr)
	}

	tampered := SignedRequestMessage("POST", "/v1/wallets", []byte(`{"bump":253}`))
	appErr := VerifySignerSignature(key.PublicKey(), signature.String(), tampered)
	if appErr == nil || appErr.Code != apperrors.CodeSignatureInvalid {
		t.Fatalf("expected signature_invalid for tampered body, got %+v", appErr)
	}

	other := newTestOwner(t)
	if appErr := VerifySignerSignature(other, signature.String(), message); appErr == nil {
		t.Fatalf("expected rejection for a different signer")
	}

	for _, raw := range []string{"", "not-a-signature"} {
		appErr := VerifySignerSignature(key.PublicKey(), raw, message)
		if appErr == nil || appErr.Type != apperrors.TypeUnauthenticated {
			t.Fatalf("expected unauthenticated for %q, got %+v", raw, appErr)
		}
	}
}
