package eth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrMalformedEnvelope is returned when envelope text cannot be decoded
var ErrMalformedEnvelope = errors.New("malformed envelope")

// ChallengeMessage is the body of a challenge envelope
type ChallengeMessage struct {
	Server  common.Address
	Account common.Address
	Nonce   []byte
	Domain  string
	MinTime uint64
	MaxTime uint64
}

// Envelope is a challenge message plus every signature attached so far.
// The server signs first; the client appends its own.
type Envelope struct {
	Message    ChallengeMessage
	Signatures [][]byte
}

// Payload returns the RLP encoding of the message alone
func (e *Envelope) Payload() ([]byte, error) {
	return rlp.EncodeToBytes(&e.Message)
}

// AddSignature signs the envelope's hash and appends the signature
func (e *Envelope) AddSignature(domain EIP712Domain, signer Signer) error {
	hash, err := SigningHash(domain, e.Message)
	if err != nil {
		return err
	}
	sig, err := signer.Sign(hash)
	if err != nil {
		return err
	}
	e.Signatures = append(e.Signatures, sig)
	return nil
}

// HasSignatureFrom reports whether any attached signature over the message was
// produced by addr
func (e *Envelope) HasSignatureFrom(domain EIP712Domain, addr common.Address) (bool, error) {
	hash, err := SigningHash(domain, e.Message)
	if err != nil {
		return false, err
	}
	for _, sig := range e.Signatures {
		signer, err := RecoverAddress(hash, sig)
		if err != nil {
			continue
		}
		if signer == addr {
			return true, nil
		}
	}
	return false, nil
}

// EncodeEnvelope serializes an envelope to base64 text
func EncodeEnvelope(env *Envelope) (string, error) {
	raw, err := rlp.EncodeToBytes(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope parses base64 envelope text
func DecodeEnvelope(text string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(raw) == 0 {
		return nil, ErrMalformedEnvelope
	}

	var env Envelope
	if err := rlp.DecodeBytes(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &env, nil
}
