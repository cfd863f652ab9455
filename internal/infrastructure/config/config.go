package config

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	valueobjects "walletprogram/internal/domain/value_objects"

	"github.com/gagliardetto/solana-go"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultMigrationsPath           = "internal/adapters/outbound/persistence/postgresql/migrations"
	defaultSQLitePath               = "data/wallets.db"
	defaultTokenServiceTimeout      = 5 * time.Second
	defaultAuditPollInterval        = 5 * time.Minute
	defaultRateLimitPerMinute       = 5
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"

	TokenTransferModeDevtest = "devtest"
	TokenTransferModeHTTP    = "http"
)

const devtestHoldingsEnv = "TOKEN_DEVTEST_HOLDINGS_JSON"

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

// TokenHolding seeds the devtest token ledger.
type TokenHolding struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Amount  string `json:"amount"`
}

type Config struct {
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	StorageDriver            string
	DatabaseURL              string
	DatabaseTarget           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	MigrationsPath           string
	SQLitePath               string
	WalletProgramID          solana.PublicKey
	WalletAddressSeed        string
	TokenTransferMode        string
	DevtestHoldings          []TokenHolding
	TokenServiceURL          string
	TokenServiceTimeout      time.Duration
	SignerSignatureRequired  bool
	AuditEnabled             bool
	AuditPollInterval        time.Duration
	RateLimitEnabled         bool
	RateLimitPerMinute       int
	RateLimitBurst           int
}

func LoadConfig() (Config, *ConfigError) {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	openAPISpecPath := os.Getenv("OPENAPI_SPEC_PATH")
	if openAPISpecPath == "" {
		openAPISpecPath = defaultOpenAPISpec
	}

	cfg := Config{
		Port:                     port,
		OpenAPISpecPath:          openAPISpecPath,
		ShutdownTimeout:          defaultShutdownTimeout,
		DBReadinessTimeout:       defaultDBReadinessTimeout,
		DBReadinessRetryInterval: defaultDBReadinessRetryInterval,
		MigrationsPath:           defaultMigrationsPath,
	}

	if cfgErr := loadStorage(&cfg); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfgErr := loadWalletNamespace(&cfg); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfgErr := loadTokenTransfer(&cfg); cfgErr != nil {
		return Config{}, cfgErr
	}

	signatureRequired, cfgErr := parseBoolEnv("SIGNER_SIGNATURE_REQUIRED", true)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	cfg.SignerSignatureRequired = signatureRequired

	auditEnabled, cfgErr := parseBoolEnv("WALLET_AUDIT_ENABLED", false)
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	cfg.AuditEnabled = auditEnabled
	cfg.AuditPollInterval = defaultAuditPollInterval
	if raw := strings.TrimSpace(os.Getenv("WALLET_AUDIT_POLL_INTERVAL")); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return Config{}, &ConfigError{
				Code:    "CONFIG_WALLET_AUDIT_POLL_INTERVAL_INVALID",
				Message: "WALLET_AUDIT_POLL_INTERVAL must be a positive duration",
			}
		}
		cfg.AuditPollInterval = interval
	}

	if cfgErr := loadRateLimit(&cfg); cfgErr != nil {
		return Config{}, cfgErr
	}

	return cfg, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func loadRateLimit(cfg *Config) *ConfigError {
	enabled, cfgErr := parseBoolEnv("RATE_LIMIT_ENABLED", true)
	if cfgErr != nil {
		return cfgErr
	}
	cfg.RateLimitEnabled = enabled

	perMinute, cfgErr := parsePositiveIntEnv("RATE_LIMIT_PER_MINUTE", defaultRateLimitPerMinute)
	if cfgErr != nil {
		return cfgErr
	}
	cfg.RateLimitPerMinute = perMinute

	burst, cfgErr := parsePositiveIntEnv("RATE_LIMIT_BURST", perMinute)
	if cfgErr != nil {
		return cfgErr
	}
	cfg.RateLimitBurst = burst
	return nil
}

func loadStorage(cfg *Config) *ConfigError {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	if driver == "" {
		driver = StorageDriverPostgres
	}
	cfg.StorageDriver = driver

	switch driver {
	case StorageDriverPostgres:
		databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
		if databaseURL == "" {
			return &ConfigError{
				Code:    "CONFIG_DATABASE_URL_REQUIRED",
				Message: "DATABASE_URL is required",
			}
		}

		databaseTarget, parseErr := parseDatabaseTarget(databaseURL)
		if parseErr != nil {
			return parseErr
		}
		cfg.DatabaseURL = databaseURL
		cfg.DatabaseTarget = databaseTarget
	case StorageDriverSQLite:
		sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
		if sqlitePath == "" {
			sqlitePath = defaultSQLitePath
		}
		cfg.SQLitePath = sqlitePath
		cfg.DatabaseTarget = "sqlite:" + sqlitePath
	default:
		return &ConfigError{
			Code:     "CONFIG_STORAGE_DRIVER_INVALID",
			Message:  "STORAGE_DRIVER must be postgres or sqlite",
			Metadata: map[string]string{"storage_driver": driver},
		}
	}

	return nil
}

func loadWalletNamespace(cfg *Config) *ConfigError {
	rawProgramID := strings.TrimSpace(os.Getenv("WALLET_PROGRAM_ID"))
	if rawProgramID == "" {
		rawProgramID = valueobjects.DefaultWalletProgramID
	}
	programID, err := solana.PublicKeyFromBase58(rawProgramID)
	if err != nil || programID.IsZero() {
		return &ConfigError{
			Code:    "CONFIG_WALLET_PROGRAM_ID_INVALID",
			Message: "WALLET_PROGRAM_ID must be a base58 encoded 32 byte public key",
		}
	}

	seed := strings.TrimSpace(os.Getenv("WALLET_ADDRESS_SEED"))
	if seed == "" {
		seed = valueobjects.DefaultWalletAddressSeed
	}
	if len(seed) > solana.MaxSeedLength {
		return &ConfigError{
			Code:     "CONFIG_WALLET_ADDRESS_SEED_INVALID",
			Message:  "WALLET_ADDRESS_SEED must be at most 32 bytes",
			Metadata: map[string]string{"seed_length": strconv.Itoa(len(seed))},
		}
	}

	cfg.WalletProgramID = programID
	cfg.WalletAddressSeed = seed
	return nil
}

func loadTokenTransfer(cfg *Config) *ConfigError {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("TOKEN_TRANSFER_MODE")))
	if mode == "" {
		mode = TokenTransferModeDevtest
	}
	cfg.TokenTransferMode = mode

	switch mode {
	case TokenTransferModeDevtest:
		holdings, cfgErr := parseDevtestHoldings(strings.TrimSpace(os.Getenv(devtestHoldingsEnv)))
		if cfgErr != nil {
			return cfgErr
		}
		cfg.DevtestHoldings = holdings
	case TokenTransferModeHTTP:
		serviceURL := strings.TrimSpace(os.Getenv("TOKEN_SERVICE_URL"))
		parsed, err := url.Parse(serviceURL)
		if serviceURL == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return &ConfigError{
				Code:    "CONFIG_TOKEN_SERVICE_URL_INVALID",
				Message: "TOKEN_SERVICE_URL must be an http or https URL for http token transfer mode",
			}
		}
		cfg.TokenServiceURL = serviceURL
	default:
		return &ConfigError{
			Code:     "CONFIG_TOKEN_TRANSFER_MODE_INVALID",
			Message:  "TOKEN_TRANSFER_MODE must be devtest or http",
			Metadata: map[string]string{"token_transfer_mode": mode},
		}
	}

	cfg.TokenServiceTimeout = defaultTokenServiceTimeout
	if raw := strings.TrimSpace(os.Getenv("TOKEN_SERVICE_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return &ConfigError{
				Code:    "CONFIG_TOKEN_SERVICE_TIMEOUT_INVALID",
				Message: "TOKEN_SERVICE_TIMEOUT must be a positive duration",
			}
		}
		cfg.TokenServiceTimeout = timeout
	}

	return nil
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

func parseDevtestHoldings(raw string) ([]TokenHolding, *ConfigError) {
	if raw == "" {
		return []TokenHolding{}, nil
	}

	holdings := []TokenHolding{}
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		return nil, &ConfigError{
			Code:    "CONFIG_DEVTEST_HOLDINGS_INVALID",
			Message: devtestHoldingsEnv + " must be a JSON array of holding objects",
		}
	}

	seen := map[string]struct{}{}
	for index, holding := range holdings {
		address := strings.TrimSpace(holding.Address)
		if address == "" || strings.TrimSpace(holding.Owner) == "" || strings.TrimSpace(holding.Mint) == "" {
			return nil, &ConfigError{
				Code:     "CONFIG_DEVTEST_HOLDINGS_INVALID",
				Message:  devtestHoldingsEnv + " entries need address, owner and mint",
				Metadata: map[string]string{"index": strconv.Itoa(index)},
			}
		}
		if _, exists := seen[address]; exists {
			return nil, &ConfigError{
				Code:     "CONFIG_DEVTEST_HOLDINGS_INVALID",
				Message:  devtestHoldingsEnv + " defines the same holding twice",
				Metadata: map[string]string{"address": address},
			}
		}
		seen[address] = struct{}{}
		if strings.TrimSpace(holding.Amount) == "" {
			holdings[index].Amount = "0"
		}
	}

	return holdings, nil
}

func parseBoolEnv(name string, fallback bool) (bool, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ConfigError{
			Code:    "CONFIG_" + name + "_INVALID",
			Message: name + " must be a boolean",
		}
	}
	return parsed, nil
}

func parsePositiveIntEnv(name string, fallback int) (int, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     "CONFIG_" + name + "_INVALID",
			Message:  name + " must be a positive integer",
			Metadata: map[string]string{name: raw},
		}
	}
	return parsed, nil
}
