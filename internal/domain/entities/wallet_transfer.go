package entities

import (
	"bytes"
	"encoding/binary"
	"time"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/sha3"
)

// CodeTransferChainBroken marks a receipt history that was edited, truncated
// or reordered after it was written.
const CodeTransferChainBroken = "WALLET_TRANSFER_CHAIN_BROKEN"

// WalletTransfer is the audit receipt appended for every settled transfer.
// Digest chains each receipt to the one before it for the same wallet.
// ExecutedAt is kept at microsecond precision so the digest survives a
// round trip through Postgres.
type WalletTransfer struct {
	ID                 string
	WalletAddress      solana.PublicKey
	Sequence           uint64
	Authority          solana.PublicKey
	SourceHolding      solana.PublicKey
	DestinationHolding solana.PublicKey
	Amount             uint64
	ExecutedAt         time.Time
	PreviousDigest     []byte
	Digest             []byte
}

type NewWalletTransferInput struct {
	ID                 string
	WalletAddress      solana.PublicKey
	Sequence           uint64
	Authority          solana.PublicKey
	SourceHolding      solana.PublicKey
	DestinationHolding solana.PublicKey
	Amount             uint64
	ExecutedAt         time.Time
	PreviousDigest     []byte
}

func NewWalletTransfer(input NewWalletTransferInput) (WalletTransfer, *apperrors.AppError) {
	if input.ID == "" {
		return WalletTransfer{}, apperrors.NewInternal(
			"wallet_transfer_id_missing",
			"wallet transfer id is required",
			nil,
		)
	}
	if input.Sequence == 0 {
		return WalletTransfer{}, apperrors.NewInternal(
			"wallet_transfer_sequence_invalid",
			"wallet transfer sequence starts at 1",
			map[string]any{"wallet_address": input.WalletAddress.String()},
		)
	}

	transfer := WalletTransfer{
		ID:                 input.ID,
		WalletAddress:      input.WalletAddress,
		Sequence:           input.Sequence,
		Authority:          input.Authority,
		SourceHolding:      input.SourceHolding,
		DestinationHolding: input.DestinationHolding,
		Amount:             input.Amount,
		ExecutedAt:         input.ExecutedAt.UTC().Truncate(time.Microsecond),
		PreviousDigest:     append([]byte(nil), input.PreviousDigest...),
	}
	transfer.Digest = transfer.computeDigest()
	return transfer, nil
}

// VerifyDigest reports whether the stored digest still matches the receipt
// fields and the PreviousDigest recorded on the receipt itself.
func (t WalletTransfer) VerifyDigest() bool {
	return bytes.Equal(t.computeDigest(), t.Digest)
}

// VerifyTransferChain checks a wallet's full receipt history, oldest first.
// Sequences must run 1..N with N equal to the wallet counter, each receipt
// must link to its predecessor's digest, and the newest digest must be the
// one the wallet carries.
func VerifyTransferChain(wallet Wallet, receipts []WalletTransfer) *apperrors.AppError {
	var previous []byte
	for i, receipt := range receipts {
		expected := uint64(i) + 1
		switch {
		case !receipt.WalletAddress.Equals(wallet.Address):
			return chainBroken(wallet, expected, "receipt belongs to another wallet")
		case receipt.Sequence != expected:
			return chainBroken(wallet, expected, "receipt sequence gap")
		case !bytes.Equal(receipt.PreviousDigest, previous):
			return chainBroken(wallet, expected, "previous digest does not match predecessor")
		case !receipt.VerifyDigest():
			return chainBroken(wallet, expected, "receipt digest does not match its fields")
		}
		previous = receipt.Digest
	}

	if uint64(len(receipts)) != wallet.TransactionCount {
		return chainBroken(wallet, uint64(len(receipts))+1, "receipt count does not match transaction count")
	}
	if !bytes.Equal(previous, wallet.LastAuditDigest) {
		return chainBroken(wallet, uint64(len(receipts)), "wallet digest does not match newest receipt")
	}
	return nil
}

func chainBroken(wallet Wallet, sequence uint64, reason string) *apperrors.AppError {
	return apperrors.NewInternal(
		CodeTransferChainBroken,
		"stored transfer receipts do not form an unbroken chain",
		map[string]any{
			"address":  wallet.Address.String(),
			"sequence": sequence,
			"reason":   reason,
		},
	)
}

func (t WalletTransfer) computeDigest() []byte {
	hash := sha3.New256()
	_, _ = hash.Write(t.PreviousDigest)
	_, _ = hash.Write([]byte(t.ID))
	_, _ = hash.Write(t.WalletAddress[:])
	_, _ = hash.Write(binary.BigEndian.AppendUint64(nil, t.Sequence))
	_, _ = hash.Write(t.Authority[:])
	_, _ = hash.Write(t.SourceHolding[:])
	_, _ = hash.Write(t.DestinationHolding[:])
	_, _ = hash.Write(binary.BigEndian.AppendUint64(nil, t.Amount))
	_, _ = hash.Write(binary.BigEndian.AppendUint64(nil, uint64(t.ExecutedAt.UnixNano())))
	return hash.Sum(nil)
}
