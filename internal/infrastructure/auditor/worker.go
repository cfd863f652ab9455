package auditor

import (
	"context"
	"log"
	"time"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
)

// Worker periodically re-derives every stored wallet address and re-walks each
// receipt chain, logging rows that no longer match.
type Worker struct {
	enabled      bool
	pollInterval time.Duration
	useCase      portsin.AuditWalletAddressesUseCase
	logger       *log.Logger
}

func NewWorker(
	enabled bool,
	pollInterval time.Duration,
	useCase portsin.AuditWalletAddressesUseCase,
	logger *log.Logger,
) *Worker {
	return &Worker{
		enabled:      enabled,
		pollInterval: pollInterval,
		useCase:      useCase,
		logger:       logger,
	}
}

func (w *Worker) Enabled() bool {
	return w != nil && w.enabled
}

func (w *Worker) Start(ctx context.Context) {
	if w == nil || !w.enabled || w.useCase == nil || w.pollInterval <= 0 {
		return
	}

	w.logf("wallet address auditor started poll_interval=%s", w.pollInterval)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("wallet address auditor stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	output, appErr := w.useCase.Execute(ctx, dto.AuditWalletAddressesCommand{
		StartedAt: time.Now().UTC(),
	})
	if appErr != nil {
		w.logf(
			"wallet address audit cycle failed code=%s message=%s details=%v",
			appErr.Code,
			appErr.Message,
			appErr.Details,
		)
		return
	}

	if !output.Clean {
		w.logf(
			"wallet address audit found violation code=%s details=%v latency_ms=%d",
			output.ViolationCode,
			output.Details,
			output.Duration.Milliseconds(),
		)
		return
	}

	w.logf(
		"wallet address audit cycle completed chains_verified=%d latency_ms=%d",
		output.ChainsVerified,
		output.Duration.Milliseconds(),
	)
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}
