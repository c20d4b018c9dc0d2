package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// ChallengeRequest is the body of POST /auth/challenge
type ChallengeRequest struct {
	Address string `json:"address" binding:"required"`
}

// ChallengeResponse is returned by POST /auth/challenge
type ChallengeResponse struct {
	Envelope  string `json:"envelope"`
	Nonce     string `json:"nonce"`
	ExpiresIn int64  `json:"expires_in"`
}

// VerifyRequest is the body of POST /auth/verify
type VerifyRequest struct {
	Address  string `json:"address" binding:"required"`
	Envelope string `json:"envelope" binding:"required"`
}

// VerifyResponse is returned by POST /auth/verify
type VerifyResponse struct {
	Success   bool       `json:"success"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
	Identity  string     `json:"identity"`
	UserID    string     `json:"user_id"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "Invalid request"})
		return
	}

	issued, err := h.authService.RequestChallenge(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChallengeResponse{
		Envelope:  issued.Envelope,
		Nonce:     issued.Nonce,
		ExpiresIn: int64(issued.ExpiresIn / time.Second),
	})
}

// Verify handles the signed challenge submission
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "Invalid request"})
		return
	}

	login, err := h.authService.SubmitVerification(c.Request.Context(), req.Address, req.Envelope)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Success:   true,
		Token:     login.Token,
		TokenType: "Bearer",
		ExpiresAt: login.Session.ExpiresAt,
		Identity:  login.Session.Address,
		UserID:    login.User.ID,
		LastSeen:  login.PrevLastSeen,
	})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	// Session is set by the auth middleware
	value, exists := c.Get(sessionKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "Session not found in context"})
		return
	}
	session := value.(*core.Session)

	c.JSON(http.StatusOK, gin.H{
		"address":    session.Address,
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt,
	})
}

// Health reports liveness
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps protocol errors to status codes. Signature failures share
// one response so clients cannot tell which check failed.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal", Message: "Authentication failed"}

	switch {
	case errors.Is(err, core.ErrInvalidIdentity):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "invalid_identity", Message: "Invalid wallet address"}
	case errors.Is(err, core.ErrChallengeMissingOrExpired):
		status = http.StatusUnauthorized
		resp = ErrorResponse{Error: "challenge_missing_or_expired", Message: "Challenge missing or expired, request a new one"}
	case errors.Is(err, core.ErrMalformedArtifact):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "malformed_artifact", Message: "Envelope could not be parsed"}
	case errors.Is(err, core.ErrSignatureMismatch):
		status = http.StatusUnauthorized
		resp = ErrorResponse{Error: "signature_mismatch", Message: "Invalid signature"}
	case errors.Is(err, core.ErrDirectoryUnavailable):
		status = http.StatusServiceUnavailable
		resp = ErrorResponse{Error: "directory_unavailable", Message: "Try again later"}
	}

	c.JSON(status, resp)
}
