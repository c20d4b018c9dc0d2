package walletauth

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/adapters/directory"
	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/internal/testutil"
	"github.com/layer-3/walletauth/service"
	transport "github.com/layer-3/walletauth/transport/http"
)

var testDomain = Domain{Name: "walletauth", Version: "1", ChainID: big.NewInt(1)}

func newWallet(t *testing.T) *eth.LocalSigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := eth.NewLocalSigner(key)
	require.NoError(t, err)
	return s
}

// startServer runs the auth service behind httptest and returns the server identity.
func startServer(t *testing.T, clock clockwork.Clock) (*httptest.Server, *eth.LocalSigner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := newWallet(t)
	secret, err := tokenizer.DeriveSecret(server.PrivateKeyBytes())
	require.NoError(t, err)
	tok, err := tokenizer.NewJWTTokenizer(secret, "auth.example.com", clock)
	require.NoError(t, err)

	svc, err := service.NewAuthService(
		store.NewMemoryStore(clock),
		directory.NewMemoryDirectory(),
		tok,
		events.NopPublisher{},
		testutil.MakeNoopLogger(),
		service.Options{
			Signer:     server,
			Domain:     testDomain,
			HomeDomain: "auth.example.com",
			Clock:      clock,
		},
	)
	require.NoError(t, err)

	ts := httptest.NewServer(transport.SetupRouter(svc, testutil.MakeNoopLogger()))
	t.Cleanup(ts.Close)
	return ts, server
}

func TestHTTPClient_Login(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	ts, server := startServer(t, clock)
	client := NewHTTPClient(ts.URL, testDomain, server.Address())
	wallet := newWallet(t)

	session, err := client.Login(ctx, wallet)
	require.NoError(t, err)
	assert.True(t, session.Success)
	assert.Equal(t, wallet.Address().Hex(), session.Identity)
	assert.Nil(t, session.LastSeen)

	account, err := client.Me(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address().Hex(), account.Address)
	assert.Equal(t, session.UserID, account.UserID)

	clock.Advance(time.Hour)

	again, err := client.Login(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, again.UserID)
	require.NotNil(t, again.LastSeen)
	assert.True(t, again.LastSeen.Equal(clock.Now().Add(-time.Hour)))
}

func TestHTTPClient_RejectsUntrustedServer(t *testing.T) {
	ctx := context.Background()
	ts, _ := startServer(t, clockwork.NewFakeClock())
	impostor := newWallet(t)
	client := NewHTTPClient(ts.URL, testDomain, impostor.Address())

	_, err := client.Login(ctx, newWallet(t))
	assert.ErrorIs(t, err, ErrUntrustedServer)
}

func TestHTTPClient_CosignRejectsForeignChallenge(t *testing.T) {
	ctx := context.Background()
	ts, server := startServer(t, clockwork.NewFakeClock())
	client := NewHTTPClient(ts.URL, testDomain, server.Address())

	ch, err := client.Challenge(ctx, newWallet(t).Address().Hex())
	require.NoError(t, err)

	_, err = client.Cosign(ch.Envelope, newWallet(t))
	assert.ErrorIs(t, err, ErrWrongAccount)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	ts, server := startServer(t, clock)
	client := NewHTTPClient(ts.URL, testDomain, server.Address())
	wallet := newWallet(t)

	_, err := client.Challenge(ctx, "0xnope")
	assert.ErrorIs(t, err, core.ErrInvalidIdentity)

	_, err = client.Verify(ctx, wallet.Address().Hex(), "AAAA")
	assert.ErrorIs(t, err, core.ErrChallengeMissingOrExpired)

	ch, err := client.Challenge(ctx, wallet.Address().Hex())
	require.NoError(t, err)
	signed, err := client.Cosign(ch.Envelope, wallet)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	_, err = client.Verify(ctx, wallet.Address().Hex(), signed)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.ErrorIs(t, err, core.ErrChallengeMissingOrExpired)

	_, err = client.Me(ctx, "garbage")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
