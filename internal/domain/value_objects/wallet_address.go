package valueobjects

import (
	"strings"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

const (
	DefaultWalletAddressSeed = "wallet"
	DefaultWalletProgramID   = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"
)

// WalletAddressNamespace scopes wallet addresses to one program id and seed tag
// so they never collide with unrelated records in the same storage space.
type WalletAddressNamespace struct {
	programID solana.PublicKey
	seed      []byte
}

func NewWalletAddressNamespace(programID solana.PublicKey, seed string) (WalletAddressNamespace, *apperrors.AppError) {
	if programID.IsZero() {
		return WalletAddressNamespace{}, apperrors.NewInternal(
			"invalid_configuration",
			"wallet program id is required",
			nil,
		)
	}

	trimmed := strings.TrimSpace(seed)
	if trimmed == "" || len(trimmed) > solana.MaxSeedLength {
		return WalletAddressNamespace{}, apperrors.NewInternal(
			"invalid_configuration",
			"wallet address seed must be between 1 and 32 bytes",
			map[string]any{"seed_length": len(trimmed)},
		)
	}

	return WalletAddressNamespace{
		programID: programID,
		seed:      []byte(trimmed),
	}, nil
}

func MustWalletAddressNamespace(programID, seed string) WalletAddressNamespace {
	namespace, appErr := NewWalletAddressNamespace(solana.MustPublicKeyFromBase58(programID), seed)
	if appErr != nil {
		panic(appErr.Message)
	}
	return namespace
}

func (n WalletAddressNamespace) ProgramID() solana.PublicKey {
	return n.programID
}

func (n WalletAddressNamespace) Seed() string {
	return string(n.seed)
}

// Derive computes the program address for owner and bump. Bumps whose
// candidate lands on the ed25519 curve have no program address and are
// reported as an address mismatch.
func (n WalletAddressNamespace) Derive(owner solana.PublicKey, bump uint8) (solana.PublicKey, *apperrors.AppError) {
	address, err := solana.CreateProgramAddress(n.seeds(owner, bump), n.programID)
	if err != nil {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeAddressMismatch,
			"bump does not derive a valid wallet address for owner",
			map[string]any{
				"owner": owner.String(),
				"bump":  int(bump),
			},
		)
	}

	return address, nil
}

// FindCanonical returns the address and bump a fresh wallet for owner must use:
// the highest bump that yields an off-curve address.
func (n WalletAddressNamespace) FindCanonical(owner solana.PublicKey) (solana.PublicKey, uint8, *apperrors.AppError) {
	address, bump, err := solana.FindProgramAddress([][]byte{n.seed, owner.Bytes()}, n.programID)
	if err != nil {
		return solana.PublicKey{}, 0, apperrors.NewInternal(
			"wallet_address_derivation_failed",
			"unable to find a wallet address for owner",
			map[string]any{"owner": owner.String(), "error": err.Error()},
		)
	}

	return address, bump, nil
}

func (n WalletAddressNamespace) Validate(address, owner solana.PublicKey, bump uint8) bool {
	derived, appErr := n.Derive(owner, bump)
	if appErr != nil {
		return false
	}
	return derived.Equals(address)
}

// RequireAddress recomputes the address of a stored record and fails with
// address_mismatch when it does not reproduce the storage location.
func (n WalletAddressNamespace) RequireAddress(address, owner solana.PublicKey, bump uint8) *apperrors.AppError {
	if n.Validate(address, owner, bump) {
		return nil
	}

	return apperrors.NewValidation(
		apperrors.CodeAddressMismatch,
		"wallet address does not match owner and bump",
		map[string]any{
			"address": address.String(),
			"owner":   owner.String(),
			"bump":    int(bump),
		},
	)
}

func (n WalletAddressNamespace) seeds(owner solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{n.seed, owner.Bytes(), {bump}}
}
