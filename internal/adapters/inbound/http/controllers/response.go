package controllers

import (
	"encoding/json"
	"net/http"

	apperrors "walletprogram/internal/shared_kernel/errors"
)

type errorResponse struct {
	Error errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForAppError(appErr *apperrors.AppError) int {
	switch appErr.Type {
	case apperrors.TypeValidation:
		if appErr.Code == apperrors.CodeAddressMismatch {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypeConflict:
		return http.StatusConflict
	case apperrors.TypeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.TypeUnauthorized:
		return http.StatusForbidden
	case apperrors.TypeFailedDependency:
		return http.StatusFailedDependency
	}
	return http.StatusInternalServerError
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	writeJSON(w, statusForAppError(appErr), errorResponse{
		Error: errorEnvelope{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
