package devtest

import (
	"context"
	"log"
	"math"
	"sync"

	portsout "walletprogram/internal/application/ports/out"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// HoldingConfig seeds one token holding. Amount is a base-unit integer string.
type HoldingConfig struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Amount  string `json:"amount"`
}

type holding struct {
	owner  solana.PublicKey
	mint   solana.PublicKey
	amount uint64
}

// Ledger is an in-process token service for development and tests.
type Ledger struct {
	mu       sync.Mutex
	holdings map[solana.PublicKey]*holding
	logger   *log.Logger
}

var _ portsout.TokenTransferGateway = (*Ledger)(nil)

func NewLedger(seed []HoldingConfig, logger *log.Logger) (*Ledger, *apperrors.AppError) {
	if logger == nil {
		logger = log.Default()
	}

	ledger := &Ledger{
		holdings: make(map[solana.PublicKey]*holding, len(seed)),
		logger:   logger,
	}
	for _, entry := range seed {
		if appErr := ledger.Open(entry); appErr != nil {
			return nil, appErr
		}
	}
	return ledger, nil
}

func (l *Ledger) Mode() string {
	return "devtest"
}

// Open registers a holding, replacing any previous balance at the address.
func (l *Ledger) Open(entry HoldingConfig) *apperrors.AppError {
	address, appErr := valueobjects.ParsePublicKey("address", entry.Address)
	if appErr != nil {
		return appErr
	}
	owner, appErr := valueobjects.ParsePublicKey("owner", entry.Owner)
	if appErr != nil {
		return appErr
	}
	mint, appErr := valueobjects.ParsePublicKey("mint", entry.Mint)
	if appErr != nil {
		return appErr
	}
	amount, appErr := valueobjects.ParseTokenAmount(entry.Amount)
	if appErr != nil {
		return appErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.holdings[address] = &holding{owner: owner, mint: mint, amount: amount}
	return nil
}

func (l *Ledger) Balance(address solana.PublicKey) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.holdings[address]
	if !exists {
		return 0, false
	}
	return entry.amount, true
}

func (l *Ledger) Transfer(_ context.Context, input portsout.TokenTransferInput) *apperrors.AppError {
	l.mu.Lock()
	defer l.mu.Unlock()

	source, exists := l.holdings[input.SourceHolding]
	if !exists {
		return rejection(apperrors.ReasonInvalidTokenAccount, "source holding does not exist", input.SourceHolding)
	}
	destination, exists := l.holdings[input.DestinationHolding]
	if !exists {
		return rejection(apperrors.ReasonInvalidTokenAccount, "destination holding does not exist", input.DestinationHolding)
	}
	if !source.mint.Equals(destination.mint) {
		return rejection(apperrors.ReasonInvalidTokenAccount, "holdings belong to different mints", input.DestinationHolding)
	}
	if !source.owner.Equals(input.Authority) {
		return rejection(apperrors.ReasonOwnerMismatch, "authority does not own the source holding", input.SourceHolding)
	}
	if source.amount < input.Amount {
		return rejection(apperrors.ReasonInsufficientBalance, "source holding balance is too low", input.SourceHolding)
	}
	if input.SourceHolding.Equals(input.DestinationHolding) {
		l.logf(input)
		return nil
	}
	if destination.amount > math.MaxUint64-input.Amount {
		return rejection(apperrors.ReasonTokenServiceRejected, "destination holding balance would overflow", input.DestinationHolding)
	}

	source.amount -= input.Amount
	destination.amount += input.Amount
	l.logf(input)
	return nil
}

func (l *Ledger) logf(input portsout.TokenTransferInput) {
	l.logger.Printf(
		"devtest token transfer reference=%s source=%s destination=%s amount=%d",
		input.Reference,
		input.SourceHolding,
		input.DestinationHolding,
		input.Amount,
	)
}

func rejection(reason, message string, holding solana.PublicKey) *apperrors.AppError {
	return apperrors.NewValidation(reason, message, map[string]any{"holding": holding.String()})
}
