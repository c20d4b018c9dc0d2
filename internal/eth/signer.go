package eth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrMissingKey is returned when no signing key is configured
var ErrMissingKey = errors.New("signing key is not configured")

// Signer produces recoverable secp256k1 signatures over 32-byte digests
type Signer interface {
	Sign(digest []byte) ([]byte, error)
	Address() common.Address
}

// LocalSigner signs with an in-process private key
type LocalSigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewLocalSigner wraps a private key
func NewLocalSigner(key *ecdsa.PrivateKey) (*LocalSigner, error) {
	if key == nil {
		return nil, ErrMissingKey
	}
	return &LocalSigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// LoadSigner parses a hex encoded private key, with or without 0x prefix
func LoadSigner(hexKey string) (*LocalSigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, ErrMissingKey
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	return NewLocalSigner(key)
}

// Sign returns a 65-byte [R || S || V] signature with V in {0, 1}
func (s *LocalSigner) Sign(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	return sig, nil
}

// Address returns the address derived from the signer's public key
func (s *LocalSigner) Address() common.Address {
	return s.addr
}

// PrivateKeyBytes returns the raw scalar of the key. Used for key derivation.
func (s *LocalSigner) PrivateKeyBytes() []byte {
	return crypto.FromECDSA(s.key)
}
