package di

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"walletprogram/internal/adapters/inbound/http/controllers"
	httpRouter "walletprogram/internal/adapters/inbound/http/router"
	"walletprogram/internal/adapters/outbound/docs"
	postgresql "walletprogram/internal/adapters/outbound/persistence/postgresql"
	postgresqlshared "walletprogram/internal/adapters/outbound/persistence/postgresql/shared"
	postgresqlwallet "walletprogram/internal/adapters/outbound/persistence/postgresql/wallet"
	"walletprogram/internal/adapters/outbound/persistence/sqlite"
	devtesttoken "walletprogram/internal/adapters/outbound/tokentransfer/devtest"
	httptoken "walletprogram/internal/adapters/outbound/tokentransfer/http"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/application/use_cases"
	valueobjects "walletprogram/internal/domain/value_objects"
	"walletprogram/internal/infrastructure/auditor"
	"walletprogram/internal/infrastructure/config"
	"walletprogram/internal/infrastructure/httpserver"
)

type Container struct {
	Storage                      io.Closer
	Server                       *httpserver.Server
	Namespace                    valueobjects.WalletAddressNamespace
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
	TokenTransferMode            string
	AuditWorker                  *auditor.Worker
}

// Storage bundles the persistence roles one driver provides.
type Storage struct {
	Repository portsout.WalletRepository
	ReadModel  portsout.WalletReadModel
	Chains     portsout.WalletChainReader
	Health     portsout.StorageHealthChecker
	Bootstrap  portsout.PersistenceBootstrapGateway
	Closer     io.Closer
}

// modeReporter is implemented by token gateways that can name the backend
// they settle against.
type modeReporter interface {
	Mode() string
}

type TokenGatewayBuilder func(cfg config.Config, logger *log.Logger) (portsout.TokenTransferGateway, error)

var tokenGatewayBuilders = map[string]TokenGatewayBuilder{
	config.TokenTransferModeDevtest: func(cfg config.Config, logger *log.Logger) (portsout.TokenTransferGateway, error) {
		ledger, appErr := devtesttoken.NewLedger(mapDevtestHoldings(cfg.DevtestHoldings), logger)
		if appErr != nil {
			return nil, fmt.Errorf("devtest token ledger: %s: %s", appErr.Code, appErr.Message)
		}
		return ledger, nil
	},
	config.TokenTransferModeHTTP: func(cfg config.Config, _ *log.Logger) (portsout.TokenTransferGateway, error) {
		return httptoken.NewGateway(httptoken.Config{
			BaseURL: cfg.TokenServiceURL,
			Timeout: cfg.TokenServiceTimeout,
		}), nil
	},
}

var tokenGatewayBuildersMu sync.RWMutex

func RegisterTokenGatewayBuilder(mode string, builder TokenGatewayBuilder) {
	normalizedMode := strings.ToLower(strings.TrimSpace(mode))
	if normalizedMode == "" || builder == nil {
		return
	}

	tokenGatewayBuildersMu.Lock()
	defer tokenGatewayBuildersMu.Unlock()
	tokenGatewayBuilders[normalizedMode] = builder
}

func Build(cfg config.Config, logger *log.Logger) (Container, error) {
	namespace, appErr := valueobjects.NewWalletAddressNamespace(cfg.WalletProgramID, cfg.WalletAddressSeed)
	if appErr != nil {
		return Container{}, fmt.Errorf("wallet address namespace: %s", appErr.Message)
	}

	tokenGateway, buildErr := buildTokenGateway(cfg, logger)
	if buildErr != nil {
		return Container{}, buildErr
	}

	storage, buildErr := BuildStorage(cfg, logger)
	if buildErr != nil {
		return Container{}, buildErr
	}

	healthUseCase := use_cases.NewGetHealthUseCase(storage.Health)
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath)
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel)
	initializePersistenceUseCase := use_cases.NewInitializePersistenceUseCase(storage.Bootstrap, namespace)

	clock := use_cases.NewSystemClock()
	walletUseCases := controllers.WalletUseCases{
		Derive:     use_cases.NewDeriveWalletAddressUseCase(namespace),
		Initialize: use_cases.NewInitializeWalletUseCase(namespace, storage.Repository, clock),
		Get:        use_cases.NewGetWalletUseCase(namespace, storage.ReadModel),
		Transfer: use_cases.NewTransferTokensUseCase(
			namespace,
			storage.Repository,
			tokenGateway,
			clock,
			use_cases.NewUUIDv7Generator(),
			logger,
		),
		ListTransfers: use_cases.NewListWalletTransfersUseCase(storage.ReadModel),
	}

	healthController := controllers.NewHealthController(healthUseCase, logger)
	swaggerController := controllers.NewSwaggerController(openAPIUseCase, logger)
	walletsController := controllers.NewWalletsController(walletUseCases, cfg.SignerSignatureRequired, logger)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:  healthController,
		SwaggerController: swaggerController,
		WalletsController: walletsController,
	})

	server := httpserver.New(cfg.Address(), router, httpserver.RateLimit{
		Enabled:          cfg.RateLimitEnabled,
		PerMinute:        cfg.RateLimitPerMinute,
		Burst:            cfg.RateLimitBurst,
		VerifySignatures: cfg.SignerSignatureRequired,
	}, logger)

	auditWorker := auditor.NewWorker(
		cfg.AuditEnabled,
		cfg.AuditPollInterval,
		use_cases.NewAuditWalletAddressesUseCase(storage.Bootstrap, storage.Chains, namespace, clock),
		logger,
	)

	return Container{
		Storage:                      storage.Closer,
		Server:                       server,
		Namespace:                    namespace,
		InitializePersistenceUseCase: initializePersistenceUseCase,
		TokenTransferMode:            gatewayMode(tokenGateway, cfg.TokenTransferMode),
		AuditWorker:                  auditWorker,
	}, nil
}

func BuildStorage(cfg config.Config, logger *log.Logger) (Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		databasePool := postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)
		readModel := postgresqlwallet.NewReadModel(databasePool)
		return Storage{
			Repository: postgresqlwallet.NewRepository(databasePool, logger),
			ReadModel:  readModel,
			Chains:     readModel,
			Health:     postgresqlshared.NewDatabasePinger(databasePool),
			Bootstrap: postgresql.NewPersistenceBootstrapGateway(
				cfg.DatabaseURL,
				cfg.DatabaseTarget,
				cfg.MigrationsPath,
				logger,
			),
			Closer: databasePool,
		}, nil
	case config.StorageDriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return Storage{}, err
		}
		return Storage{
			Repository: store,
			ReadModel:  store,
			Chains:     store,
			Health:     store,
			Bootstrap:  store,
			Closer:     store,
		}, nil
	default:
		return Storage{}, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func mapDevtestHoldings(holdings []config.TokenHolding) []devtesttoken.HoldingConfig {
	out := make([]devtesttoken.HoldingConfig, 0, len(holdings))
	for _, holding := range holdings {
		out = append(out, devtesttoken.HoldingConfig{
			Address: holding.Address,
			Owner:   holding.Owner,
			Mint:    holding.Mint,
			Amount:  holding.Amount,
		})
	}
	return out
}

func buildTokenGateway(cfg config.Config, logger *log.Logger) (portsout.TokenTransferGateway, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.TokenTransferMode))

	tokenGatewayBuildersMu.RLock()
	builder, exists := tokenGatewayBuilders[mode]
	tokenGatewayBuildersMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported token transfer mode: %s", cfg.TokenTransferMode)
	}

	return builder(cfg, logger)
}

func gatewayMode(gateway portsout.TokenTransferGateway, configured string) string {
	if reporter, ok := gateway.(modeReporter); ok {
		return reporter.Mode()
	}
	return strings.ToLower(strings.TrimSpace(configured))
}
