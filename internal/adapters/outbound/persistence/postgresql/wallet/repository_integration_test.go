//go:build integration

package wallet

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	postgresql "walletprogram/internal/adapters/outbound/persistence/postgresql"
	postgresqlshared "walletprogram/internal/adapters/outbound/persistence/postgresql/shared"
	"walletprogram/internal/application/dto"
	"walletprogram/internal/domain/entities"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type repositoryIntegrationHarness struct {
	db         *sql.DB
	repository *Repository
	readModel  *ReadModel
	namespace  valueobjects.WalletAddressNamespace
}

func TestWalletRepositoryCreateAndDuplicateIntegration(t *testing.T) {
	harness := newRepositoryIntegrationHarness(t)
	wallet := harness.newWallet(t)
	ctx := context.Background()

	if _, appErr := harness.repository.Create(ctx, wallet); appErr != nil {
		t.Fatalf("expected create success, got %+v", appErr)
	}
	_, appErr := harness.repository.Create(ctx, wallet)
	if appErr == nil || appErr.Code != apperrors.CodeWalletAlreadyExists {
		t.Fatalf("expected duplicate rejection, got %+v", appErr)
	}

	stored, found, appErr := harness.readModel.GetByAddress(ctx, wallet.Address)
	if appErr != nil || !found {
		t.Fatalf("expected stored wallet, found=%v err=%+v", found, appErr)
	}
	if !stored.Owner.Equals(wallet.Owner) || stored.Bump != wallet.Bump || stored.TransactionCount != 0 {
		t.Fatalf("unexpected stored wallet: %+v", stored)
	}
}

func TestWalletRepositoryApplyTransferIntegration(t *testing.T) {
	harness := newRepositoryIntegrationHarness(t)
	wallet := harness.newWallet(t)
	ctx := context.Background()
	if _, appErr := harness.repository.Create(ctx, wallet); appErr != nil {
		t.Fatalf("expected create success, got %+v", appErr)
	}

	rejected := apperrors.NewFailedDependency(apperrors.CodeDelegatedTransferFailed, "rejected", nil)
	_, appErr := harness.repository.ApplyTransfer(ctx, harness.command(wallet, "transfer-rejected"), func(context.Context, entities.Wallet) *apperrors.AppError {
		return rejected
	})
	if appErr != rejected {
		t.Fatalf("expected settle error to pass through, got %+v", appErr)
	}

	result, appErr := harness.repository.ApplyTransfer(ctx, harness.command(wallet, "transfer-1"), func(context.Context, entities.Wallet) *apperrors.AppError {
		return nil
	})
	if appErr != nil {
		t.Fatalf("expected transfer success, got %+v", appErr)
	}
	if result.Wallet.TransactionCount != 1 || result.Transfer.Sequence != 1 {
		t.Fatalf("expected first transfer, got %+v", result)
	}

	transfers, found, appErr := harness.readModel.ListTransfers(ctx, wallet.Address, 10)
	if appErr != nil || !found {
		t.Fatalf("expected transfers, found=%v err=%+v", found, appErr)
	}
	if len(transfers) != 1 || !transfers[0].VerifyDigest() {
		t.Fatalf("expected one verifiable receipt, got %+v", transfers)
	}
}

func TestWalletRepositoryConcurrentTransfersIntegration(t *testing.T) {
	harness := newRepositoryIntegrationHarness(t)
	wallet := harness.newWallet(t)
	ctx := context.Background()
	if _, appErr := harness.repository.Create(ctx, wallet); appErr != nil {
		t.Fatalf("expected create success, got %+v", appErr)
	}

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan *apperrors.AppError, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			command := harness.command(wallet, "transfer-"+string(rune('a'+i)))
			_, appErr := harness.repository.ApplyTransfer(ctx, command, func(context.Context, entities.Wallet) *apperrors.AppError {
				return nil
			})
			if appErr != nil {
				errs <- appErr
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for appErr := range errs {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	stored, _, appErr := harness.readModel.GetByAddress(ctx, wallet.Address)
	if appErr != nil {
		t.Fatalf("expected stored wallet, got %+v", appErr)
	}
	if stored.TransactionCount != workers {
		t.Fatalf("expected count %d, got %d", workers, stored.TransactionCount)
	}
}

func TestWalletReadModelTransferChainIntegration(t *testing.T) {
	harness := newRepositoryIntegrationHarness(t)
	wallet := harness.newWallet(t)
	ctx := context.Background()
	if _, appErr := harness.repository.Create(ctx, wallet); appErr != nil {
		t.Fatalf("expected create success, got %+v", appErr)
	}
	for _, id := range []string{"chain-a", "chain-b", "chain-c"} {
		if _, appErr := harness.repository.ApplyTransfer(ctx, harness.command(wallet, id), func(context.Context, entities.Wallet) *apperrors.AppError {
			return nil
		}); appErr != nil {
			t.Fatalf("expected transfer success, got %+v", appErr)
		}
	}

	addresses, appErr := harness.readModel.ListWalletAddresses(ctx)
	if appErr != nil || len(addresses) != 1 || !addresses[0].Equals(wallet.Address) {
		t.Fatalf("expected one listed wallet, got %v err=%+v", addresses, appErr)
	}

	stored, receipts, appErr := harness.readModel.GetTransferChain(ctx, wallet.Address)
	if appErr != nil {
		t.Fatalf("expected chain, got %+v", appErr)
	}
	if appErr := entities.VerifyTransferChain(stored, receipts); appErr != nil {
		t.Fatalf("expected intact chain, got %+v", appErr)
	}

	if _, err := harness.db.ExecContext(ctx, `DELETE FROM app.wallet_transfers WHERE id = 'chain-b'`); err != nil {
		t.Fatalf("failed to delete receipt: %v", err)
	}
	stored, receipts, appErr = harness.readModel.GetTransferChain(ctx, wallet.Address)
	if appErr != nil {
		t.Fatalf("expected chain, got %+v", appErr)
	}
	appErr = entities.VerifyTransferChain(stored, receipts)
	if appErr == nil || appErr.Code != entities.CodeTransferChainBroken {
		t.Fatalf("expected broken chain, got %+v", appErr)
	}
}

func TestWalletReadModelReportsCorruptRecordIntegration(t *testing.T) {
	harness := newRepositoryIntegrationHarness(t)
	wallet := harness.newWallet(t)
	ctx := context.Background()
	if _, appErr := harness.repository.Create(ctx, wallet); appErr != nil {
		t.Fatalf("expected create success, got %+v", appErr)
	}
	if _, err := harness.db.ExecContext(
		ctx,
		`UPDATE app.wallets SET owner = 'not-a-key' WHERE address = $1`,
		wallet.Address.String(),
	); err != nil {
		t.Fatalf("failed to corrupt wallet: %v", err)
	}

	_, _, appErr := harness.readModel.GetByAddress(ctx, wallet.Address)
	if appErr == nil || appErr.Code != "wallet_record_corrupt" {
		t.Fatalf("expected wallet_record_corrupt, got %+v", appErr)
	}
}

func (h *repositoryIntegrationHarness) newWallet(t *testing.T) entities.Wallet {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	address, bump, appErr := h.namespace.FindCanonical(key.PublicKey())
	if appErr != nil {
		t.Fatalf("expected canonical address, got %+v", appErr)
	}
	wallet, appErr := entities.NewWallet(entities.NewWalletInput{
		Address:   address,
		Owner:     key.PublicKey(),
		Bump:      bump,
		CreatedAt: time.Now().UTC(),
	})
	if appErr != nil {
		t.Fatalf("expected wallet, got %+v", appErr)
	}
	return wallet
}

func (h *repositoryIntegrationHarness) command(wallet entities.Wallet, transferID string) dto.ApplyWalletTransferCommand {
	return dto.ApplyWalletTransferCommand{
		Address:            wallet.Address,
		TransferID:         transferID,
		Authority:          wallet.Owner,
		SourceHolding:      solana.NewWallet().PublicKey(),
		DestinationHolding: solana.NewWallet().PublicKey(),
		Amount:             7,
		ExecutedAt:         time.Now().UTC(),
	}
}

func newRepositoryIntegrationHarness(t *testing.T) *repositoryIntegrationHarness {
	t.Helper()

	databaseURL := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests")
	}

	resetDatabaseForIntegrationMigrations(t, databaseURL)

	logger := log.New(io.Discard, "", 0)
	bootstrapGateway := postgresql.NewPersistenceBootstrapGateway(
		databaseURL,
		"integration-target",
		integrationMigrationsPath(t),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if appErr := bootstrapGateway.CheckReadiness(ctx); appErr != nil {
		t.Fatalf("expected readiness success, got %+v", appErr)
	}
	if appErr := bootstrapGateway.RunMigrations(ctx); appErr != nil {
		t.Fatalf("expected migration success, got %+v", appErr)
	}

	db := postgresqlshared.NewDatabasePool(databaseURL, logger)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return &repositoryIntegrationHarness{
		db:         db,
		repository: NewRepository(db, logger),
		readModel:  NewReadModel(db),
		namespace:  valueobjects.MustWalletAddressNamespace(valueobjects.DefaultWalletProgramID, valueobjects.DefaultWalletAddressSeed),
	}
}

func integrationMigrationsPath(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve current file path")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "migrations"))
}

func resetDatabaseForIntegrationMigrations(t *testing.T, databaseURL string) {
	t.Helper()
	assertSafeIntegrationDatabaseURL(t, databaseURL)

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		t.Fatalf("failed to open db for migration reset: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx, `
DROP SCHEMA IF EXISTS app CASCADE;
DROP TABLE IF EXISTS schema_migrations;
`)
	if err != nil {
		t.Fatalf("failed to reset migration state: %v", err)
	}
}

func assertSafeIntegrationDatabaseURL(t *testing.T, databaseURL string) {
	t.Helper()

	parsed, err := url.Parse(databaseURL)
	if err != nil {
		t.Fatalf("invalid TEST_DATABASE_URL: %v", err)
	}

	host := strings.ToLower(strings.TrimSpace(parsed.Hostname()))
	dbName := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(parsed.Path), "/"))
	hostAllowed := host == "localhost" || host == "127.0.0.1" || host == "postgres"
	dbAllowed := dbName == "walletprogram" || strings.Contains(dbName, "test")

	if !hostAllowed || !dbAllowed {
		t.Fatalf("unsafe TEST_DATABASE_URL for destructive integration reset: host=%q db=%q", host, dbName)
	}
}
