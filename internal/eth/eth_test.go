package eth

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDomain = EIP712Domain{Name: "walletauth", Version: "1", ChainID: big.NewInt(1)}

func newSigner(t *testing.T) *LocalSigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := NewLocalSigner(key)
	require.NoError(t, err)
	return s
}

func TestParseAddress(t *testing.T) {
	s := newSigner(t)
	checksummed := s.Address().Hex()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "checksummed", input: checksummed},
		{name: "lowercase", input: strings.ToLower(checksummed)},
		{name: "uppercase body", input: "0x" + strings.ToUpper(checksummed[2:])},
		{name: "missing prefix", input: checksummed[2:], wantErr: ErrInvalidAddress},
		{name: "too short", input: checksummed[:41], wantErr: ErrInvalidAddress},
		{name: "non hex", input: "0x" + strings.Repeat("z", 40), wantErr: ErrInvalidAddress},
		{name: "empty", input: "", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, s.Address(), addr)
		})
	}
}

func TestParseAddress_BadChecksum(t *testing.T) {
	addr := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	_, err := ParseAddress(addr)
	require.NoError(t, err)

	flipped := "0x5aaEb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	_, err = ParseAddress(flipped)
	require.ErrorIs(t, err, ErrBadChecksum)
}

func TestLoadSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hexutil.Encode(crypto.FromECDSA(key))

	s, err := LoadSigner(hexKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	_, err = LoadSigner("")
	require.ErrorIs(t, err, ErrMissingKey)

	_, err = LoadSigner("not-a-key")
	require.Error(t, err)
}

func TestEnvelope_RoundTripKeepsSignatures(t *testing.T) {
	server := newSigner(t)
	client := newSigner(t)

	env := &Envelope{Message: ChallengeMessage{
		Server:  server.Address(),
		Account: client.Address(),
		Nonce:   []byte("0123456789abcdef0123456789abcdef"),
		Domain:  "auth.example.com",
		MinTime: 100,
		MaxTime: 400,
	}}
	require.NoError(t, env.AddSignature(testDomain, server))

	text, err := EncodeEnvelope(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(text)
	require.NoError(t, err)
	require.NoError(t, decoded.AddSignature(testDomain, client))
	require.Len(t, decoded.Signatures, 2)

	ok, err := decoded.HasSignatureFrom(testDomain, server.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = decoded.HasSignatureFrom(testDomain, client.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	want, err := env.Payload()
	require.NoError(t, err)
	got, err := decoded.Payload()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	for _, input := range []string{"", "!!!not base64", "AAAA", "wA=="} {
		_, err := DecodeEnvelope(input)
		assert.ErrorIs(t, err, ErrMalformedEnvelope, "input %q", input)
	}
}

func TestSigningHash_DependsOnDomain(t *testing.T) {
	msg := ChallengeMessage{Nonce: []byte{1, 2, 3}, Domain: "a", MinTime: 1, MaxTime: 2}

	h1, err := SigningHash(testDomain, msg)
	require.NoError(t, err)
	h2, err := SigningHash(EIP712Domain{Name: "other", Version: "1", ChainID: big.NewInt(1)}, msg)
	require.NoError(t, err)

	assert.Len(t, h1, 32)
	assert.NotEqual(t, h1, h2)
}

func TestVerifySignatureAgainstAddress(t *testing.T) {
	s := newSigner(t)
	other := newSigner(t)
	msg := ChallengeMessage{Account: s.Address(), Nonce: []byte{9}, Domain: "d", MaxTime: 10}

	hash, err := SigningHash(testDomain, msg)
	require.NoError(t, err)
	sig, err := s.Sign(hash)
	require.NoError(t, err)

	ok, err := VerifySignatureAgainstAddress(testDomain, msg, sig, s.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySignatureAgainstAddress(testDomain, msg, sig, other.Address())
	require.NoError(t, err)
	assert.False(t, ok)

	// wallets report V as 27/28
	walletSig := append([]byte(nil), sig...)
	walletSig[64] += 27
	ok, err = VerifySignatureAgainstAddress(testDomain, msg, walletSig, s.Address())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = VerifySignatureAgainstAddress(testDomain, msg, sig[:64], s.Address())
	require.ErrorIs(t, err, ErrInvalidSignature)
}
