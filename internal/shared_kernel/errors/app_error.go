package apperrors

type Type string

const (
	TypeValidation       Type = "validation"
	TypeNotFound         Type = "not_found"
	TypeConflict         Type = "conflict"
	TypeUnauthorized     Type = "unauthorized"
	TypeUnauthenticated  Type = "unauthenticated"
	TypeFailedDependency Type = "failed_dependency"
	TypeInternal         Type = "internal"
)

// Stable codes surfaced to callers for the wallet program error kinds.
const (
	CodeAddressMismatch         = "address_mismatch"
	CodeWalletAlreadyExists     = "wallet_already_exists"
	CodeWalletNotFound          = "wallet_not_found"
	CodeUnauthorized            = "unauthorized"
	CodeDelegatedTransferFailed = "delegated_transfer_failed"
	CodeInvalidRequest          = "invalid_request"
	CodeSignatureInvalid        = "signature_invalid"

	// CodeTransferCommitFailed means the token movement settled but the
	// wallet record could not be updated.
	CodeTransferCommitFailed = "wallet_transfer_commit_failed"
)

// Reasons a token-transfer service may report. They travel as the "reason"
// detail of a delegated_transfer_failed error.
const (
	ReasonInsufficientBalance     = "insufficient_balance"
	ReasonInvalidTokenAccount     = "invalid_token_account"
	ReasonOwnerMismatch           = "owner_mismatch"
	ReasonTokenServiceUnavailable = "token_service_unavailable"
	ReasonTokenServiceRejected    = "token_service_rejected"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewConflict(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeConflict,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnauthorized(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnauthorized,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnauthenticated(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnauthenticated,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewFailedDependency(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeFailedDependency,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Reason returns the "reason" detail carried by a delegated transfer failure.
func (e *AppError) Reason() string {
	if e == nil || e.Details == nil {
		return ""
	}
	reason, _ := e.Details["reason"].(string)
	return reason
}
