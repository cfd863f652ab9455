package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

const (
	headerWalletSigner    = "X-Wallet-Signer"
	headerWalletSignature = "X-Wallet-Signature"

	maxRequestBodyBytes = 16 << 10
)

type WalletUseCases struct {
	Derive        portsin.DeriveWalletAddressUseCase
	Initialize    portsin.InitializeWalletUseCase
	Get           portsin.GetWalletUseCase
	Transfer      portsin.TransferTokensUseCase
	ListTransfers portsin.ListWalletTransfersUseCase
}

type WalletsController struct {
	useCases          WalletUseCases
	requireSignatures bool
	logger            *log.Logger
}

type initializeWalletPayload struct {
	Owner   string `json:"owner"`
	Bump    *int   `json:"bump"`
	Address string `json:"address,omitempty"`
}

type transferTokensPayload struct {
	SourceHolding      string `json:"source_holding"`
	DestinationHolding string `json:"destination_holding"`
	Amount             string `json:"amount"`
}

func NewWalletsController(useCases WalletUseCases, requireSignatures bool, logger *log.Logger) *WalletsController {
	return &WalletsController{
		useCases:          useCases,
		requireSignatures: requireSignatures,
		logger:            logger,
	}
}

func (c *WalletsController) DeriveAddress(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCases.Derive.Execute(r.Context(), dto.DeriveWalletAddressQuery{Owner: r.PathValue("owner")})
	if appErr != nil {
		c.writeError(w, r, "/v1/wallet-addresses/{owner}", appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (c *WalletsController) InitializeWallet(w http.ResponseWriter, r *http.Request) {
	const path = "/v1/wallets"

	body, signer, appErr := c.readSignedBody(r)
	if appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	payload := initializeWalletPayload{}
	if appErr := decodeSingleObject(body, &payload); appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	output, appErr := c.useCases.Initialize.Execute(r.Context(), dto.InitializeWalletCommand{
		Signer:  signer,
		Owner:   payload.Owner,
		Bump:    payload.Bump,
		Address: payload.Address,
	})
	if appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	w.Header().Set("Location", "/v1/wallets/"+output.Address)
	writeJSON(w, http.StatusCreated, output)
}

func (c *WalletsController) GetWallet(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCases.Get.Execute(r.Context(), dto.GetWalletQuery{Address: r.PathValue("address")})
	if appErr != nil {
		c.writeError(w, r, "/v1/wallets/{address}", appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (c *WalletsController) TransferTokens(w http.ResponseWriter, r *http.Request) {
	const path = "/v1/wallets/{address}/transfers"

	body, signer, appErr := c.readSignedBody(r)
	if appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	payload := transferTokensPayload{}
	if appErr := decodeSingleObject(body, &payload); appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	output, appErr := c.useCases.Transfer.Execute(r.Context(), dto.TransferTokensCommand{
		Address:            r.PathValue("address"),
		Signer:             signer,
		SourceHolding:      payload.SourceHolding,
		DestinationHolding: payload.DestinationHolding,
		Amount:             payload.Amount,
	})
	if appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (c *WalletsController) ListTransfers(w http.ResponseWriter, r *http.Request) {
	const path = "/v1/wallets/{address}/transfers"

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.writeError(w, r, path, apperrors.NewValidation(
				apperrors.CodeInvalidRequest,
				"limit must be a positive integer",
				map[string]any{"field": "limit"},
			))
			return
		}
		limit = parsed
	}

	output, appErr := c.useCases.ListTransfers.Execute(r.Context(), dto.ListWalletTransfersQuery{
		Address: r.PathValue("address"),
		Limit:   limit,
	})
	if appErr != nil {
		c.writeError(w, r, path, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// readSignedBody returns the raw body and the signer it was verified against.
// Without required signatures the signer header is taken as asserted.
func (c *WalletsController) readSignedBody(r *http.Request) ([]byte, string, *apperrors.AppError) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, "", apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"failed to read request body",
			map[string]any{"error": err.Error()},
		)
	}
	if len(body) > maxRequestBodyBytes {
		return nil, "", apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"request body is too large",
			map[string]any{"max_bytes": maxRequestBodyBytes},
		)
	}

	rawSigner := strings.TrimSpace(r.Header.Get(headerWalletSigner))
	if rawSigner == "" {
		return nil, "", apperrors.NewUnauthenticated(
			apperrors.CodeSignatureInvalid,
			headerWalletSigner+" header is required",
			nil,
		)
	}
	if !c.requireSignatures {
		return body, rawSigner, nil
	}

	signer, appErr := valueobjects.ParsePublicKey("signer", rawSigner)
	if appErr != nil {
		return nil, "", apperrors.NewUnauthenticated(apperrors.CodeSignatureInvalid, appErr.Message, appErr.Details)
	}
	message := valueobjects.SignedRequestMessage(r.Method, r.URL.Path, body)
	if appErr := valueobjects.VerifySignerSignature(signer, r.Header.Get(headerWalletSignature), message); appErr != nil {
		return nil, "", appErr
	}

	return body, signer.String(), nil
}

func (c *WalletsController) writeError(w http.ResponseWriter, r *http.Request, path string, appErr *apperrors.AppError) {
	c.logger.Printf("request error path=%s method=%s code=%s message=%s", path, r.Method, appErr.Code, appErr.Message)
	writeAppError(w, appErr)
}

func decodeSingleObject(body []byte, target any) *apperrors.AppError {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"request body must contain a single JSON object",
			nil,
		)
	}

	return nil
}
