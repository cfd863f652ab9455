package out

import (
	"context"

	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

type TokenTransferInput struct {
	Reference          string
	SourceHolding      solana.PublicKey
	DestinationHolding solana.PublicKey
	Authority          solana.PublicKey
	Amount             uint64
}

// TokenTransferGateway moves balances between token holdings. A call either
// settles completely or returns an error whose Code names the reason.
type TokenTransferGateway interface {
	Transfer(ctx context.Context, input TokenTransferInput) *apperrors.AppError
}
