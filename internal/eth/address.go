package eth

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAddress is returned when an address is not 0x-prefixed 20-byte hex
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrBadChecksum is returned when a mixed-case address fails EIP-55
	ErrBadChecksum = errors.New("address checksum mismatch")
)

// ParseAddress validates a user-supplied address. The 0x prefix is required.
// All-lower and all-upper hex are accepted as-is; mixed case must be a valid
// EIP-55 checksum.
func ParseAddress(s string) (common.Address, error) {
	if len(s) != 2+2*common.AddressLength || !strings.HasPrefix(s, "0x") {
		return common.Address{}, ErrInvalidAddress
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrInvalidAddress
	}

	addr := common.HexToAddress(s)
	body := s[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && addr.Hex() != s {
		return common.Address{}, ErrBadChecksum
	}

	return addr, nil
}
