package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const tokenSeparator = "."

// ErrEmptySecret is returned by [NewCodec] when no signing secret is
// provided. Callers must treat this as fatal: serving requests with an empty
// key would let anyone forge sessions.
var ErrEmptySecret = errors.New("session secret must not be empty")

// Codec signs sessions into tokens and validates tokens back into sessions.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte

	// now is the clock used for iat/exp stamping and expiry checks.
	// Overridden in tests.
	now func() time.Time
}

// NewCodec builds a Codec keyed with the server-held HMAC secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// Encode stamps iat/exp onto a copy of s and returns the signed token:
// base64url(JSON payload) + "." + base64url(HMAC-SHA256 over the payload
// segment), both without padding.
func (c *Codec) Encode(s Session, ttl time.Duration) (string, error) {
	if !s.Role.Valid() {
		return "", errors.New("session has no valid role")
	}
	if ttl <= 0 {
		return "", errors.New("session ttl must be positive")
	}

	now := c.now()
	s.IssuedAt = now.Unix()
	s.ExpiresAt = now.Add(ttl).Unix()

	payload, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	sig := base64.RawURLEncoding.EncodeToString(c.sign(body))

	return body + tokenSeparator + sig, nil
}

// Decode validates a token and returns the embedded session. Every failure
// mode — wrong segment count, undecodable base64, signature mismatch,
// malformed JSON, expired payload — collapses into (nil, false) so callers
// cannot distinguish tampering from absence.
//
// The signature is verified before the payload is parsed; attacker-controlled
// bytes never reach the JSON decoder. A validly signed payload without an exp
// field is accepted as non-expiring.
func (c *Codec) Decode(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	body, sig, found := strings.Cut(token, tokenSeparator)
	if !found || strings.Contains(sig, tokenSeparator) {
		return nil, false
	}

	provided, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(provided, c.sign(body)) {
		return nil, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, false
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, false
	}
	if !s.Role.Valid() || s.Email == "" {
		return nil, false
	}
	if s.ExpiresAt != 0 && s.ExpiresAt < c.now().Unix() {
		return nil, false
	}

	return &s, true
}

func (c *Codec) sign(body string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return mac.Sum(nil)
}
