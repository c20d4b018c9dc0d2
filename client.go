package walletauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/walletauth/internal/eth"
)

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the auth service over its JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	domain     Domain
	server     common.Address
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.httpClient = c
	}
}

// NewHTTPClient creates a client for the service at baseURL. Challenges are
// only signed when they carry a signature from server under domain.
func NewHTTPClient(baseURL string, domain Domain, server common.Address, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		domain:     domain,
		server:     server,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Challenge requests a fresh server-signed challenge for address.
func (c *HTTPClient) Challenge(ctx context.Context, address string) (*Challenge, error) {
	var out Challenge
	body := map[string]string{"address": address}
	if err := c.do(ctx, http.MethodPost, "/auth/challenge", body, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify submits a co-signed envelope and returns the issued session.
func (c *HTTPClient) Verify(ctx context.Context, address, envelope string) (*Session, error) {
	var out Session
	body := map[string]string{"address": address, "envelope": envelope}
	if err := c.do(ctx, http.MethodPost, "/auth/verify", body, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account bound to accessToken.
func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*Account, error) {
	var out Account
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, accessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login requests a challenge, checks it was issued by the trusted server for
// wallet, co-signs it and submits it.
func (c *HTTPClient) Login(ctx context.Context, wallet Signer) (*Session, error) {
	address := wallet.Address().Hex()

	ch, err := c.Challenge(ctx, address)
	if err != nil {
		return nil, err
	}

	signed, err := c.Cosign(ch.Envelope, wallet)
	if err != nil {
		return nil, err
	}

	return c.Verify(ctx, address, signed)
}

// Cosign validates an issued envelope and appends the wallet signature.
func (c *HTTPClient) Cosign(envelope string, wallet Signer) (string, error) {
	env, err := eth.DecodeEnvelope(envelope)
	if err != nil {
		return "", err
	}

	if env.Message.Account != wallet.Address() {
		return "", ErrWrongAccount
	}

	ok, err := env.HasSignatureFrom(c.domain, c.server)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUntrustedServer
	}

	if err := env.AddSignature(c.domain, wallet); err != nil {
		return "", fmt.Errorf("sign challenge: %w", err)
	}

	return eth.EncodeEnvelope(env)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, token string, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
