package entities

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	walletDiscriminatorSize = 8
	// WalletAccountDataSize is discriminator + owner + bump + transaction count.
	WalletAccountDataSize = walletDiscriminatorSize + solana.PublicKeyLength + 1 + 8
)

var walletAccountDiscriminator = accountDiscriminator("Wallet")

// WalletAccountData is the fixed-size persisted payload of a wallet record.
type WalletAccountData struct {
	Owner            solana.PublicKey
	Bump             uint8
	TransactionCount uint64
}

func accountDiscriminator(name string) [walletDiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))

	var out [walletDiscriminatorSize]byte
	copy(out[:], sum[:walletDiscriminatorSize])
	return out
}

func (d WalletAccountData) Encode() []byte {
	out := make([]byte, WalletAccountDataSize)
	offset := copy(out, walletAccountDiscriminator[:])
	offset += copy(out[offset:], d.Owner[:])
	out[offset] = d.Bump
	offset++
	binary.LittleEndian.PutUint64(out[offset:], d.TransactionCount)
	return out
}

func DecodeWalletAccountData(data []byte) (WalletAccountData, error) {
	if len(data) != WalletAccountDataSize {
		return WalletAccountData{}, fmt.Errorf("wallet account data must be %d bytes, got %d", WalletAccountDataSize, len(data))
	}
	if !bytes.Equal(data[:walletDiscriminatorSize], walletAccountDiscriminator[:]) {
		return WalletAccountData{}, fmt.Errorf("wallet account discriminator mismatch")
	}

	offset := walletDiscriminatorSize
	out := WalletAccountData{}
	copy(out.Owner[:], data[offset:offset+solana.PublicKeyLength])
	offset += solana.PublicKeyLength
	out.Bump = data[offset]
	offset++
	out.TransactionCount = binary.LittleEndian.Uint64(data[offset:])
	return out, nil
}

func (w Wallet) AccountData() WalletAccountData {
	return WalletAccountData{
		Owner:            w.Owner,
		Bump:             w.Bump,
		TransactionCount: w.TransactionCount,
	}
}
