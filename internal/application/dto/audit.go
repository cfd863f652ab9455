package dto

import "time"

type AuditWalletAddressesCommand struct {
	StartedAt time.Time
}

type AuditWalletAddressesOutput struct {
	Clean          bool
	ViolationCode  string
	Details        map[string]any
	ChainsVerified int
	Duration       time.Duration
}
