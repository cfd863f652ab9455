//go:build !integration

package policies

import (
	"testing"

	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key.PublicKey()
}

func TestAuthorizeWalletSignerOwner(t *testing.T) {
	owner := newKey(t)
	wallet := entities.Wallet{Address: newKey(t), Owner: owner, TransactionCount: 3}

	if appErr := AuthorizeWalletSigner(wallet, owner); appErr != nil {
		t.Fatalf("expected owner to be authorized, got %+v", appErr)
	}
	if wallet.TransactionCount != 3 {
		t.Fatalf("expected guard to leave the record untouched")
	}
}

func TestAuthorizeWalletSignerRejectsOtherSigner(t *testing.T) {
	wallet := entities.Wallet{Address: newKey(t), Owner: newKey(t)}

	appErr := AuthorizeWalletSigner(wallet, newKey(t))
	if appErr == nil {
		t.Fatalf("expected unauthorized error")
	}
	if appErr.Code != apperrors.CodeUnauthorized || appErr.Type != apperrors.TypeUnauthorized {
		t.Fatalf("expected unauthorized, got %s/%s", appErr.Type, appErr.Code)
	}
}

func TestAuthorizeWalletSignerRejectsZeroSigner(t *testing.T) {
	wallet := entities.Wallet{Address: newKey(t)}

	if appErr := AuthorizeWalletSigner(wallet, solana.PublicKey{}); appErr == nil {
		t.Fatalf("expected zero signer to be rejected even against a zero owner")
	}
}
