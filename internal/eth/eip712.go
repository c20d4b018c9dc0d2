package eth

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const challengeType = "Challenge"

// EIP712Domain separates challenge signatures from any other typed data a
// wallet may be asked to sign
type EIP712Domain struct {
	Name    string
	Version string
	ChainID *big.Int
}

func (d EIP712Domain) typed() apitypes.TypedDataDomain {
	chainID := d.ChainID
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return apitypes.TypedDataDomain{
		Name:    d.Name,
		Version: d.Version,
		ChainId: (*math.HexOrDecimal256)(chainID),
	}
}

var challengeTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	challengeType: {
		{Name: "server", Type: "address"},
		{Name: "account", Type: "address"},
		{Name: "nonce", Type: "bytes"},
		{Name: "domain", Type: "string"},
		{Name: "minTime", Type: "uint256"},
		{Name: "maxTime", Type: "uint256"},
	},
}

// TypedData returns the EIP-712 document a wallet is asked to sign for msg
func TypedData(domain EIP712Domain, msg ChallengeMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       challengeTypes,
		PrimaryType: challengeType,
		Domain:      domain.typed(),
		Message: apitypes.TypedDataMessage{
			"server":  msg.Server.Hex(),
			"account": msg.Account.Hex(),
			"nonce":   msg.Nonce,
			"domain":  msg.Domain,
			"minTime": new(big.Int).SetUint64(msg.MinTime),
			"maxTime": new(big.Int).SetUint64(msg.MaxTime),
		},
	}
}

// SigningHash is the canonical digest signed by both server and client
func SigningHash(domain EIP712Domain, msg ChallengeMessage) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(TypedData(domain, msg))
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}
