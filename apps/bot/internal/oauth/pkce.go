package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"net/url"
	"strings"
)

// verifierAlphabet is the unreserved character set allowed in a PKCE verifier.
const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// DefaultVerifierLength is used when no length is configured.
const DefaultVerifierLength = 64

// ErrMissingParams is returned when a redirect lacks code or state.
var ErrMissingParams = errors.New("oauth: redirect is missing code or state")

// GenerateState returns a random URL-safe token binding the redirect to the chat session.
func GenerateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateVerifier returns a random PKCE verifier of length characters (43..128 per RFC 7636).
func GenerateVerifier(length int) (string, error) {
	if length <= 0 {
		length = DefaultVerifierLength
	}
	max := big.NewInt(int64(len(verifierAlphabet)))

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(verifierAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// DeriveChallenge returns the S256 challenge of verifier: base64url(sha256(verifier)) without padding.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Params are the query parameters VK appends to the redirect URI.
type Params struct {
	Code     string
	State    string
	DeviceID string
}

// ExtractParams parses code, state and device_id from a redirect URL.
func ExtractParams(redirectURL string) (Params, error) {
	u, err := url.Parse(strings.TrimSpace(redirectURL))
	if err != nil {
		return Params{}, ErrMissingParams
	}
	q := u.Query()
	p := Params{
		Code:     q.Get("code"),
		State:    q.Get("state"),
		DeviceID: q.Get("device_id"),
	}
	if p.Code == "" || p.State == "" {
		return Params{}, ErrMissingParams
	}
	return p, nil
}
