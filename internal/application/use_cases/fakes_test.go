//go:build !integration

package use_cases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"walletprogram/internal/application/dto"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/entities"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

var testNamespace = valueobjects.MustWalletAddressNamespace(
	valueobjects.DefaultWalletProgramID,
	valueobjects.DefaultWalletAddressSeed,
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) NowUTC() time.Time {
	return c.now
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
	err  error
}

func (s *sequenceIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}
	s.next++
	return fmt.Sprintf("transfer-%03d", s.next), nil
}

func newTestKey(t *testing.T) solana.PublicKey {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key.PublicKey()
}

// newStoredWallet builds a wallet at its canonical address the way
// initialize would.
func newStoredWallet(t *testing.T, owner solana.PublicKey) entities.Wallet {
	t.Helper()

	address, bump, appErr := testNamespace.FindCanonical(owner)
	if appErr != nil {
		t.Fatalf("expected canonical address, got %+v", appErr)
	}
	wallet, appErr := entities.NewWallet(entities.NewWalletInput{
		Address:   address,
		Owner:     owner,
		Bump:      bump,
		CreatedAt: testNow,
	})
	if appErr != nil {
		t.Fatalf("expected wallet, got %+v", appErr)
	}
	return wallet
}

// fakeWalletStore mirrors the storage adapters: one lock serializes every
// operation and ApplyTransfer holds it across settle.
type fakeWalletStore struct {
	mu        sync.Mutex
	wallets   map[solana.PublicKey]entities.Wallet
	transfers map[solana.PublicKey][]entities.WalletTransfer
	commitErr *apperrors.AppError
	readErr   *apperrors.AppError
	creates   int
}

func newFakeWalletStore(wallets ...entities.Wallet) *fakeWalletStore {
	store := &fakeWalletStore{
		wallets:   map[solana.PublicKey]entities.Wallet{},
		transfers: map[solana.PublicKey][]entities.WalletTransfer{},
	}
	for _, wallet := range wallets {
		store.wallets[wallet.Address] = wallet
	}
	return store
}

func (s *fakeWalletStore) Create(_ context.Context, wallet entities.Wallet) (entities.Wallet, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creates++
	if _, exists := s.wallets[wallet.Address]; exists {
		return entities.Wallet{}, apperrors.NewConflict(apperrors.CodeWalletAlreadyExists, "wallet already exists", nil)
	}
	s.wallets[wallet.Address] = wallet
	return wallet, nil
}

func (s *fakeWalletStore) ApplyTransfer(
	ctx context.Context,
	command dto.ApplyWalletTransferCommand,
	settle dto.SettleWalletTransferFunc,
) (dto.ApplyWalletTransferResult, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, exists := s.wallets[command.Address]
	if !exists {
		return dto.ApplyWalletTransferResult{}, apperrors.NewNotFound(apperrors.CodeWalletNotFound, "wallet was not found", nil)
	}
	if appErr := settle(ctx, wallet); appErr != nil {
		return dto.ApplyWalletTransferResult{}, appErr
	}
	if s.commitErr != nil {
		return dto.ApplyWalletTransferResult{}, s.commitErr
	}

	updated, transfer, appErr := wallet.RecordTransfer(entities.RecordTransferInput{
		TransferID:         command.TransferID,
		Authority:          command.Authority,
		SourceHolding:      command.SourceHolding,
		DestinationHolding: command.DestinationHolding,
		Amount:             command.Amount,
		ExecutedAt:         command.ExecutedAt,
	})
	if appErr != nil {
		return dto.ApplyWalletTransferResult{}, appErr
	}
	s.wallets[command.Address] = updated
	s.transfers[command.Address] = append(s.transfers[command.Address], transfer)
	return dto.ApplyWalletTransferResult{Wallet: updated, Transfer: transfer}, nil
}

func (s *fakeWalletStore) GetByAddress(_ context.Context, address solana.PublicKey) (entities.Wallet, bool, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return entities.Wallet{}, false, s.readErr
	}
	wallet, exists := s.wallets[address]
	return wallet, exists, nil
}

func (s *fakeWalletStore) ListTransfers(
	_ context.Context,
	address solana.PublicKey,
	limit int,
) ([]entities.WalletTransfer, bool, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[address]; !exists {
		return nil, false, nil
	}
	all := s.transfers[address]
	out := make([]entities.WalletTransfer, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, true, nil
}

func (s *fakeWalletStore) ListWalletAddresses(context.Context) ([]solana.PublicKey, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return nil, s.readErr
	}
	addresses := make([]solana.PublicKey, 0, len(s.wallets))
	for address := range s.wallets {
		addresses = append(addresses, address)
	}
	return addresses, nil
}

func (s *fakeWalletStore) GetTransferChain(
	_ context.Context,
	address solana.PublicKey,
) (entities.Wallet, []entities.WalletTransfer, *apperrors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, exists := s.wallets[address]
	if !exists {
		return entities.Wallet{}, nil, apperrors.NewNotFound(apperrors.CodeWalletNotFound, "wallet was not found", nil)
	}
	return wallet, append([]entities.WalletTransfer(nil), s.transfers[address]...), nil
}

func (s *fakeWalletStore) wallet(address solana.PublicKey) entities.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[address]
}

type fakeTokenGateway struct {
	mu    sync.Mutex
	err   *apperrors.AppError
	calls []portsout.TokenTransferInput
}

func (g *fakeTokenGateway) Transfer(_ context.Context, input portsout.TokenTransferInput) *apperrors.AppError {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, input)
	return g.err
}

func (g *fakeTokenGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
