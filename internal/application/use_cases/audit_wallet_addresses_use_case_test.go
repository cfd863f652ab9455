//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"walletprogram/internal/application/dto"
	"walletprogram/internal/domain/entities"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

func storeWithTransfers(t *testing.T, count int) (*fakeWalletStore, entities.Wallet) {
	t.Helper()

	wallet := newStoredWallet(t, newTestKey(t))
	store := newFakeWalletStore(wallet)
	for i := 0; i < count; i++ {
		_, appErr := store.ApplyTransfer(context.Background(), dto.ApplyWalletTransferCommand{
			Address:            wallet.Address,
			TransferID:         "transfer-" + string(rune('a'+i)),
			Authority:          wallet.Owner,
			SourceHolding:      solana.NewWallet().PublicKey(),
			DestinationHolding: solana.NewWallet().PublicKey(),
			Amount:             uint64(i + 1),
			ExecutedAt:         testNow.Add(time.Duration(i) * time.Minute),
		}, func(context.Context, entities.Wallet) *apperrors.AppError {
			return nil
		})
		if appErr != nil {
			t.Fatalf("expected transfer, got %+v", appErr)
		}
	}
	return store, wallet
}

func TestAuditWalletAddressesUseCaseClean(t *testing.T) {
	gateway := &fakePersistenceGateway{}
	store, _ := storeWithTransfers(t, 3)
	useCase := NewAuditWalletAddressesUseCase(gateway, store, testNamespace, fixedClock{now: testNow})

	output, appErr := useCase.Execute(context.Background(), dto.AuditWalletAddressesCommand{})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if !output.Clean {
		t.Fatalf("expected clean audit, got %+v", output)
	}
	if output.ChainsVerified != 1 {
		t.Fatalf("expected one verified chain, got %d", output.ChainsVerified)
	}
	if gateway.validationRuns != 1 {
		t.Fatalf("expected one validation run, got %d", gateway.validationRuns)
	}
}

func TestAuditWalletAddressesUseCaseReportsViolation(t *testing.T) {
	gateway := &fakePersistenceGateway{
		validateAddressesErr: apperrors.NewInternal(
			"WALLET_ADDRESS_INVALID",
			"stored wallet address does not match owner and bump",
			map[string]any{"address": "x"},
		),
	}
	useCase := NewAuditWalletAddressesUseCase(gateway, newFakeWalletStore(), testNamespace, fixedClock{now: testNow})

	output, appErr := useCase.Execute(context.Background(), dto.AuditWalletAddressesCommand{})
	if appErr != nil {
		t.Fatalf("expected violation as output, got %+v", appErr)
	}
	if output.Clean || output.ViolationCode != "WALLET_ADDRESS_INVALID" {
		t.Fatalf("expected violation, got %+v", output)
	}
	if output.Details["address"] != "x" {
		t.Fatalf("expected violation details, got %v", output.Details)
	}
}

func TestAuditWalletAddressesUseCaseReportsDeletedReceipt(t *testing.T) {
	store, wallet := storeWithTransfers(t, 3)
	receipts := store.transfers[wallet.Address]
	store.transfers[wallet.Address] = []entities.WalletTransfer{receipts[0], receipts[2]}
	useCase := NewAuditWalletAddressesUseCase(&fakePersistenceGateway{}, store, testNamespace, fixedClock{now: testNow})

	output, appErr := useCase.Execute(context.Background(), dto.AuditWalletAddressesCommand{})
	if appErr != nil {
		t.Fatalf("expected chain break as output, got %+v", appErr)
	}
	if output.Clean || output.ViolationCode != entities.CodeTransferChainBroken {
		t.Fatalf("expected chain violation, got %+v", output)
	}
	if output.Details["address"] != wallet.Address.String() {
		t.Fatalf("expected wallet address in details, got %v", output.Details)
	}
}

func TestAuditWalletAddressesUseCaseScanFailure(t *testing.T) {
	gateway := &fakePersistenceGateway{
		validateAddressesErr: apperrors.NewInternal("WALLET_ADDRESS_SCAN_FAILED", "failed", nil),
	}
	useCase := NewAuditWalletAddressesUseCase(gateway, newFakeWalletStore(), testNamespace, fixedClock{now: testNow})

	_, appErr := useCase.Execute(context.Background(), dto.AuditWalletAddressesCommand{})
	if appErr == nil || appErr.Code != "WALLET_ADDRESS_SCAN_FAILED" {
		t.Fatalf("expected scan failure, got %+v", appErr)
	}
}

func TestAuditWalletAddressesUseCaseChainReadFailure(t *testing.T) {
	store := newFakeWalletStore()
	store.readErr = apperrors.NewInternal("wallet_list_failed", "failed", nil)
	useCase := NewAuditWalletAddressesUseCase(&fakePersistenceGateway{}, store, testNamespace, fixedClock{now: testNow})

	_, appErr := useCase.Execute(context.Background(), dto.AuditWalletAddressesCommand{})
	if appErr == nil || appErr.Code != "wallet_list_failed" {
		t.Fatalf("expected list failure, got %+v", appErr)
	}
}
