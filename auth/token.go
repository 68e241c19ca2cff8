package auth

import (
	"strings"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
)

// TokenHolder owns the bearer token of exactly one incoming request. It is
// created by the HTTP middleware and handed to every outbound API call made
// while servicing that request. Nothing is cached across requests.
type TokenHolder struct {
	token string
}

func NewTokenHolder() *TokenHolder {
	return &TokenHolder{}
}

// SetToken replaces the held token. An empty string clears it.
func (h *TokenHolder) SetToken(token string) {
	h.token = token
}

// Token returns the held token or an Unauthenticated error when none is set.
func (h *TokenHolder) Token() (string, error) {
	if h == nil || h.token == "" {
		return "", errors.Unauthenticated("no bearer token for this request")
	}
	return h.token, nil
}

// Preview returns a short, log-safe prefix of the token.
func (h *TokenHolder) Preview() string {
	if h == nil || h.token == "" {
		return ""
	}
	if len(h.token) <= 8 {
		return h.token[:1] + "..."
	}
	return h.token[:8] + "..."
}

// ParseBearer extracts the token from an Authorization header value,
// stripping an optional "Bearer " prefix.
func ParseBearer(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
