//go:build !integration

package entities

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
)

func mustKey(t *testing.T) solana.PublicKey {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key.PublicKey()
}

func TestNewWalletStartsAtZero(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	wallet, appErr := NewWallet(NewWalletInput{
		Address:   mustKey(t),
		Owner:     mustKey(t),
		Bump:      254,
		CreatedAt: createdAt,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if wallet.TransactionCount != 0 {
		t.Fatalf("expected transaction count 0, got %d", wallet.TransactionCount)
	}
	if wallet.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC created_at, got %s", wallet.CreatedAt.Location())
	}
}

func TestNewWalletRequiresOwner(t *testing.T) {
	_, appErr := NewWallet(NewWalletInput{Address: mustKey(t)})
	if appErr == nil {
		t.Fatalf("expected missing owner error")
	}
	if appErr.Code != "wallet_owner_missing" {
		t.Fatalf("expected wallet_owner_missing, got %s", appErr.Code)
	}
}

func TestWalletNextTransactionCountOverflow(t *testing.T) {
	wallet := Wallet{TransactionCount: math.MaxUint64}
	if _, appErr := wallet.NextTransactionCount(); appErr == nil {
		t.Fatalf("expected overflow error")
	}

	wallet.TransactionCount = 41
	next, appErr := wallet.NextTransactionCount()
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if next != 42 {
		t.Fatalf("expected 42, got %d", next)
	}
}

func TestWalletAccountDataLayout(t *testing.T) {
	owner := mustKey(t)
	data := WalletAccountData{Owner: owner, Bump: 253, TransactionCount: 0x0102030405060708}.Encode()

	if len(data) != 49 {
		t.Fatalf("expected 49 bytes, got %d", len(data))
	}
	if !bytes.Equal(data[8:40], owner[:]) {
		t.Fatalf("expected owner at offset 8")
	}
	if data[40] != 253 {
		t.Fatalf("expected bump at offset 40, got %d", data[40])
	}
	if data[41] != 0x08 || data[48] != 0x01 {
		t.Fatalf("expected little-endian transaction count, got %x", data[41:])
	}

	decoded, err := DecodeWalletAccountData(data)
	if err != nil {
		t.Fatalf("expected decode success, got %v", err)
	}
	if !decoded.Owner.Equals(owner) || decoded.Bump != 253 || decoded.TransactionCount != 0x0102030405060708 {
		t.Fatalf("unexpected decoded payload: %+v", decoded)
	}
}

func TestDecodeWalletAccountDataRejectsForeignDiscriminator(t *testing.T) {
	data := WalletAccountData{Owner: mustKey(t)}.Encode()
	data[0] ^= 0xff

	if _, err := DecodeWalletAccountData(data); err == nil {
		t.Fatalf("expected discriminator error")
	}
	if _, err := DecodeWalletAccountData(data[:48]); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestWalletTransferDigestChains(t *testing.T) {
	walletAddress := mustKey(t)
	input := NewWalletTransferInput{
		ID:                 "0190f5d6-2a7b-7c3d-8e9f-001122334455",
		WalletAddress:      walletAddress,
		Sequence:           1,
		Authority:          mustKey(t),
		SourceHolding:      mustKey(t),
		DestinationHolding: mustKey(t),
		Amount:             500,
		ExecutedAt:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	first, appErr := NewWalletTransfer(input)
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if len(first.Digest) != 32 {
		t.Fatalf("expected 32 byte digest, got %d", len(first.Digest))
	}
	if !first.VerifyDigest() {
		t.Fatalf("expected digest to verify")
	}

	input.ID = "0190f5d6-2a7b-7c3d-8e9f-001122334456"
	input.Sequence = 2
	input.PreviousDigest = first.Digest
	second, appErr := NewWalletTransfer(input)
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if bytes.Equal(first.Digest, second.Digest) {
		t.Fatalf("expected chained digest to differ")
	}

	second.Amount = 501
	if second.VerifyDigest() {
		t.Fatalf("expected tampered receipt to fail verification")
	}
}

func TestNewWalletTransferRejectsZeroSequence(t *testing.T) {
	_, appErr := NewWalletTransfer(NewWalletTransferInput{ID: "id", WalletAddress: mustKey(t)})
	if appErr == nil {
		t.Fatalf("expected sequence error")
	}
}

func TestWalletRecordTransferAdvancesCounterAndChainsReceipt(t *testing.T) {
	wallet, appErr := NewWallet(NewWalletInput{
		Address:   mustKey(t),
		Owner:     mustKey(t),
		Bump:      253,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	input := RecordTransferInput{
		TransferID:         "transfer-1",
		Authority:          wallet.Owner,
		SourceHolding:      mustKey(t),
		DestinationHolding: mustKey(t),
		Amount:             10,
		ExecutedAt:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	first, firstTransfer, appErr := wallet.RecordTransfer(input)
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if wallet.TransactionCount != 0 {
		t.Fatalf("expected receiver to stay at 0, got %d", wallet.TransactionCount)
	}
	if first.TransactionCount != 1 || firstTransfer.Sequence != 1 {
		t.Fatalf("expected count and sequence 1, got %d/%d", first.TransactionCount, firstTransfer.Sequence)
	}
	if !first.Owner.Equals(wallet.Owner) || first.Bump != wallet.Bump {
		t.Fatalf("expected owner and bump to stay unchanged")
	}

	input.TransferID = "transfer-2"
	second, secondTransfer, appErr := first.RecordTransfer(input)
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if second.TransactionCount != 2 {
		t.Fatalf("expected count 2, got %d", second.TransactionCount)
	}
	if !bytes.Equal(secondTransfer.PreviousDigest, firstTransfer.Digest) {
		t.Fatalf("expected second receipt to chain to the first")
	}
	if !bytes.Equal(second.LastAuditDigest, secondTransfer.Digest) {
		t.Fatalf("expected wallet to carry the latest digest")
	}
}

func TestWalletRecordTransferOverflowLeavesWalletUnchanged(t *testing.T) {
	wallet := Wallet{
		Address:          mustKey(t),
		Owner:            mustKey(t),
		TransactionCount: math.MaxUint64,
	}

	_, _, appErr := wallet.RecordTransfer(RecordTransferInput{TransferID: "transfer-1"})
	if appErr == nil {
		t.Fatalf("expected overflow error")
	}
	if wallet.TransactionCount != math.MaxUint64 {
		t.Fatalf("expected count to stay at max")
	}
}

func recordChain(t *testing.T, count int) (Wallet, []WalletTransfer) {
	t.Helper()

	wallet, appErr := NewWallet(NewWalletInput{
		Address:   mustKey(t),
		Owner:     mustKey(t),
		Bump:      254,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	receipts := make([]WalletTransfer, 0, count)
	for i := 0; i < count; i++ {
		var transfer WalletTransfer
		wallet, transfer, appErr = wallet.RecordTransfer(RecordTransferInput{
			TransferID:         "transfer-" + string(rune('a'+i)),
			Authority:          wallet.Owner,
			SourceHolding:      mustKey(t),
			DestinationHolding: mustKey(t),
			Amount:             uint64(i),
			ExecutedAt:         time.Date(2026, 3, 1, 10, i, 0, 0, time.UTC),
		})
		if appErr != nil {
			t.Fatalf("expected no error, got %+v", appErr)
		}
		receipts = append(receipts, transfer)
	}
	return wallet, receipts
}

func TestVerifyTransferChainAcceptsRecordedHistory(t *testing.T) {
	wallet, receipts := recordChain(t, 3)
	if appErr := VerifyTransferChain(wallet, receipts); appErr != nil {
		t.Fatalf("expected chain to verify, got %+v", appErr)
	}

	fresh, _ := recordChain(t, 0)
	if appErr := VerifyTransferChain(fresh, nil); appErr != nil {
		t.Fatalf("expected empty chain to verify, got %+v", appErr)
	}
}

func TestVerifyTransferChainDetectsDeletedMiddleReceipt(t *testing.T) {
	wallet, receipts := recordChain(t, 3)
	// Each surviving receipt still verifies on its own.
	if !receipts[0].VerifyDigest() || !receipts[2].VerifyDigest() {
		t.Fatalf("expected individual receipts to verify")
	}

	appErr := VerifyTransferChain(wallet, []WalletTransfer{receipts[0], receipts[2]})
	if appErr == nil {
		t.Fatalf("expected deleted receipt to break the chain")
	}
	if appErr.Code != CodeTransferChainBroken {
		t.Fatalf("expected %s, got %s", CodeTransferChainBroken, appErr.Code)
	}
	if appErr.Details["sequence"] != uint64(2) {
		t.Fatalf("expected break at sequence 2, got %v", appErr.Details["sequence"])
	}
}

func TestVerifyTransferChainDetectsBrokenLinks(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(wallet *Wallet, receipts []WalletTransfer) []WalletTransfer
		reason string
	}{
		{
			name: "truncated tail",
			mutate: func(_ *Wallet, receipts []WalletTransfer) []WalletTransfer {
				return receipts[:2]
			},
			reason: "receipt count does not match transaction count",
		},
		{
			name: "relinked predecessor",
			mutate: func(_ *Wallet, receipts []WalletTransfer) []WalletTransfer {
				receipts[1].PreviousDigest = bytes.Repeat([]byte{1}, 32)
				return receipts
			},
			reason: "previous digest does not match predecessor",
		},
		{
			name: "edited amount",
			mutate: func(_ *Wallet, receipts []WalletTransfer) []WalletTransfer {
				receipts[2].Amount = 99
				return receipts
			},
			reason: "receipt digest does not match its fields",
		},
		{
			name: "stale wallet digest",
			mutate: func(wallet *Wallet, receipts []WalletTransfer) []WalletTransfer {
				wallet.LastAuditDigest = receipts[1].Digest
				return receipts
			},
			reason: "wallet digest does not match newest receipt",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wallet, receipts := recordChain(t, 3)
			receipts = tc.mutate(&wallet, receipts)

			appErr := VerifyTransferChain(wallet, receipts)
			if appErr == nil {
				t.Fatalf("expected chain error")
			}
			if appErr.Details["reason"] != tc.reason {
				t.Fatalf("expected reason %q, got %v", tc.reason, appErr.Details["reason"])
			}
		})
	}
}
