package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	valueobjects "walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// exitCodeError carries a process exit code after the command already
// printed its own result.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type namespaceOptions struct {
	ProgramID string
	Seed      string
}

func (o namespaceOptions) namespace() (valueobjects.WalletAddressNamespace, *apperrors.AppError) {
	programID, appErr := valueobjects.ParsePublicKey("program-id", o.ProgramID)
	if appErr != nil {
		return valueobjects.WalletAddressNamespace{}, appErr
	}
	return valueobjects.NewWalletAddressNamespace(programID, o.Seed)
}

type keygenResult struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

type deriveResult struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      int    `json:"bump"`
	Canonical bool   `json:"canonical"`
}

type verifyResult struct {
	Match           bool   `json:"match"`
	Owner           string `json:"owner"`
	Bump            int    `json:"bump"`
	ExpectedAddress string `json:"expected_address"`
	DerivedAddress  string `json:"derived_address"`
	Reason          string `json:"reason,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

type signResult struct {
	Signer    string            `json:"signer"`
	Signature string            `json:"signature"`
	Headers   map[string]string `json:"headers"`
}

func newRootCommand() *cobra.Command {
	opts := &namespaceOptions{}

	cmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "Wallet program operator tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ProgramID, "program-id", valueobjects.DefaultWalletProgramID, "wallet program id (base58)")
	cmd.PersistentFlags().StringVar(&opts.Seed, "seed", valueobjects.DefaultWalletAddressSeed, "wallet address seed tag")

	cmd.AddCommand(newKeygenCommand())
	cmd.AddCommand(newDeriveCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newSignCommand())

	return cmd
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 signer key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := solana.NewRandomPrivateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			return writeResult(cmd.OutOrStdout(), keygenResult{
				PublicKey:  key.PublicKey().String(),
				PrivateKey: key.String(),
			})
		},
	}
}

func newDeriveCommand(opts *namespaceOptions) *cobra.Command {
	var (
		owner string
		bump  int
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the wallet address for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, appErr := deriveAddress(*opts, owner, bump, cmd.Flags().Changed("bump"))
			if appErr != nil {
				return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner public key (base58)")
	cmd.Flags().IntVar(&bump, "bump", 0, "explicit bump; defaults to the canonical bump")

	return cmd
}

func newVerifyCommand(opts *namespaceOptions) *cobra.Command {
	var (
		owner   string
		bump    int
		address string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a stored wallet address matches its owner and bump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, exitCode := verifyAddress(*opts, owner, bump, address)
			if err := writeResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if exitCode != 0 {
				return &exitCodeError{code: exitCode}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner public key (base58)")
	cmd.Flags().IntVar(&bump, "bump", -1, "stored bump")
	cmd.Flags().StringVar(&address, "address", "", "stored wallet address (base58)")

	return cmd
}

func newSignCommand() *cobra.Command {
	var (
		privateKey string
		method     string
		path       string
		body       string
		bodyFile   string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a wallet API request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload := []byte(body)
			if bodyFile != "" {
				raw, err := readBodyFile(cmd.InOrStdin(), bodyFile)
				if err != nil {
					return err
				}
				payload = raw
			}

			if privateKey == "" {
				privateKey = os.Getenv("WALLETCTL_PRIVATE_KEY")
			}
			result, err := signRequest(privateKey, method, path, payload)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&privateKey, "private-key", "", "signer private key (base58); falls back to WALLETCTL_PRIVATE_KEY")
	cmd.Flags().StringVar(&method, "method", "POST", "HTTP method")
	cmd.Flags().StringVar(&path, "path", "", "request path, for example /v1/wallets")
	cmd.Flags().StringVar(&body, "body", "", "request body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "read the request body from a file, - for stdin")

	return cmd
}

func deriveAddress(opts namespaceOptions, rawOwner string, bump int, explicitBump bool) (deriveResult, *apperrors.AppError) {
	namespace, appErr := opts.namespace()
	if appErr != nil {
		return deriveResult{}, appErr
	}
	owner, appErr := valueobjects.ParsePublicKey("owner", rawOwner)
	if appErr != nil {
		return deriveResult{}, appErr
	}

	canonicalAddress, canonicalBump, appErr := namespace.FindCanonical(owner)
	if appErr != nil {
		return deriveResult{}, appErr
	}
	if !explicitBump {
		return deriveResult{
			Owner:     owner.String(),
			Address:   canonicalAddress.String(),
			Bump:      int(canonicalBump),
			Canonical: true,
		}, nil
	}

	if bump < 0 || bump > 255 {
		return deriveResult{}, apperrors.NewValidation(
			apperrors.CodeInvalidRequest,
			"bump must be between 0 and 255",
			map[string]any{"field": "bump"},
		)
	}
	address, appErr := namespace.Derive(owner, uint8(bump))
	if appErr != nil {
		return deriveResult{}, appErr
	}
	return deriveResult{
		Owner:     owner.String(),
		Address:   address.String(),
		Bump:      bump,
		Canonical: uint8(bump) == canonicalBump,
	}, nil
}

func verifyAddress(opts namespaceOptions, rawOwner string, bump int, rawAddress string) (verifyResult, int) {
	result := verifyResult{
		Owner:           strings.TrimSpace(rawOwner),
		Bump:            bump,
		ExpectedAddress: strings.TrimSpace(rawAddress),
	}

	if result.Owner == "" || result.ExpectedAddress == "" || bump < 0 || bump > 255 {
		result.Reason = "missing required fields: owner, bump (0-255), address"
		result.ErrorCode = "invalid_input"
		return result, 2
	}

	namespace, appErr := opts.namespace()
	if appErr != nil {
		result.Reason = appErr.Message
		result.ErrorCode = "invalid_configuration"
		return result, 2
	}
	owner, appErr := valueobjects.ParsePublicKey("owner", rawOwner)
	if appErr != nil {
		result.Reason = appErr.Message
		result.ErrorCode = "invalid_input"
		return result, 2
	}
	address, appErr := valueobjects.ParsePublicKey("address", rawAddress)
	if appErr != nil {
		result.Reason = appErr.Message
		result.ErrorCode = "invalid_input"
		return result, 2
	}

	derived, appErr := namespace.Derive(owner, uint8(bump))
	if appErr != nil {
		result.Reason = appErr.Message
		result.ErrorCode = appErr.Code
		return result, 3
	}
	result.DerivedAddress = derived.String()

	if !derived.Equals(address) {
		result.Reason = "derived wallet address does not match expected address"
		result.ErrorCode = apperrors.CodeAddressMismatch
		return result, 3
	}

	result.Match = true
	return result, 0
}

func signRequest(rawPrivateKey, method, path string, body []byte) (signResult, error) {
	trimmedKey := strings.TrimSpace(rawPrivateKey)
	if trimmedKey == "" {
		return signResult{}, fmt.Errorf("private key is required")
	}
	if !strings.HasPrefix(path, "/") {
		return signResult{}, fmt.Errorf("path must start with /")
	}

	key, err := solana.PrivateKeyFromBase58(trimmedKey)
	if err != nil {
		return signResult{}, fmt.Errorf("decode private key: %w", err)
	}

	signature, err := key.Sign(valueobjects.SignedRequestMessage(method, path, body))
	if err != nil {
		return signResult{}, fmt.Errorf("sign request: %w", err)
	}

	signer := key.PublicKey().String()
	return signResult{
		Signer:    signer,
		Signature: signature.String(),
		Headers: map[string]string{
			"X-Wallet-Signer":    signer,
			"X-Wallet-Signature": signature.String(),
		},
	}, nil
}

func readBodyFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body file: %w", err)
	}
	return raw, nil
}

func writeResult(w io.Writer, result any) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
