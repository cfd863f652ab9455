package valueobjects

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "walletprogram/internal/shared_kernel/errors"
)

var tokenAmountPattern = regexp.MustCompile(`^[0-9]{1,20}$`)

// ParseTokenAmount accepts a base-unit integer string covering the full
// uint64 range. Zero is allowed; the token service decides what it means.
func ParseTokenAmount(raw string) (uint64, *apperrors.AppError) {
	value := strings.TrimSpace(raw)
	if !tokenAmountPattern.MatchString(value) {
		return 0, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"amount must be an unsigned integer string",
			map[string]any{"field": "amount"},
		)
	}

	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"amount exceeds the unsigned 64-bit range",
			map[string]any{"field": "amount"},
		)
	}

	return amount, nil
}

func FormatTokenAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}
