package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	portsout "walletprogram/internal/application/ports/out"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBodyBytes  = 1024
	transfersPath      = "/v1/transfers"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway delegates token movements to an external token service.
type Gateway struct {
	endpoint string
	client   *nethttp.Client
}

var _ portsout.TokenTransferGateway = (*Gateway)(nil)

type transferRequest struct {
	Reference string `json:"reference"`
	From      string `json:"from"`
	To        string `json:"to"`
	Authority string `json:"authority"`
	Amount    string `json:"amount"`
}

type rejectionDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// rejectionBody accepts a flat {code, message} body or one wrapped in an
// "error" envelope.
type rejectionBody struct {
	rejectionDetail
	Error *rejectionDetail `json:"error"`
}

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Gateway{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + transfersPath,
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

func (g *Gateway) Mode() string {
	return "http"
}

func (g *Gateway) Transfer(ctx context.Context, input portsout.TokenTransferInput) *apperrors.AppError {
	if g == nil || g.client == nil {
		return apperrors.NewInternal(
			"token_gateway_not_configured",
			"token gateway is not configured",
			nil,
		)
	}

	body, err := json.Marshal(transferRequest{
		Reference: input.Reference,
		From:      input.SourceHolding.String(),
		To:        input.DestinationHolding.String(),
		Authority: input.Authority.String(),
		Amount:    valueobjects.FormatTokenAmount(input.Amount),
	})
	if err != nil {
		return apperrors.NewInternal(
			"token_transfer_encode_failed",
			"failed to encode token transfer request",
			map[string]any{"error": err.Error()},
		)
	}

	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternal(
			"token_transfer_request_build_failed",
			"failed to build token transfer request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Idempotency-Key", input.Reference)

	response, err := g.client.Do(request)
	if err != nil {
		return apperrors.NewInternal(
			apperrors.ReasonTokenServiceUnavailable,
			"token service request failed",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode <= 299 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
	if response.StatusCode >= 500 {
		return apperrors.NewInternal(
			apperrors.ReasonTokenServiceUnavailable,
			"token service returned a server error",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        strings.TrimSpace(string(raw)),
			},
		)
	}

	parsed := rejectionBody{}
	decodeErr := json.Unmarshal(raw, &parsed)
	rejection := parsed.rejectionDetail
	if strings.TrimSpace(rejection.Code) == "" && parsed.Error != nil {
		rejection = *parsed.Error
	}
	if decodeErr != nil || strings.TrimSpace(rejection.Code) == "" {
		rejection.Code = apperrors.ReasonTokenServiceRejected
		rejection.Message = strings.TrimSpace(string(raw))
	}
	if rejection.Message == "" {
		rejection.Message = "token service rejected the transfer"
	}

	return apperrors.NewValidation(
		strings.TrimSpace(rejection.Code),
		rejection.Message,
		map[string]any{"status_code": response.StatusCode},
	)
}
