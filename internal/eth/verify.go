package eth

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is returned for signatures that cannot be recovered
var ErrInvalidSignature = errors.New("invalid signature")

// RecoverAddress returns the address that produced sig over digest.
// V may be 0/1 or the wallet convention 27/28.
func RecoverAddress(digest, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}

	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	if normalized[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignatureAgainstAddress checks that sig over the typed challenge was
// produced by expected
func VerifySignatureAgainstAddress(domain EIP712Domain, msg ChallengeMessage, sig []byte, expected common.Address) (bool, error) {
	hash, err := SigningHash(domain, msg)
	if err != nil {
		return false, err
	}
	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
