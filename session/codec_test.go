package session

import (
	"encoding/base64"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("unit-test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	if _, err := NewCodec(""); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tests := []struct {
		name string
		sess Session
	}{
		{"admin", NewAdmin("boss@example.com")},
		{"engineer", NewEngineer("eng@example.com", "nadia")},
		{"sub", NewSub("sub@example.com", SubScope{
			Engineers: []string{"nadia", "tomas"},
			Projects:  []string{"p-100", "p-200"},
			Promos:    []string{"SPRING24"},
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Encode(tt.sess, time.Hour)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			decoded, ok := c.Decode(token)
			if !ok {
				t.Fatal("expected freshly encoded token to decode")
			}
			if decoded.IssuedAt == 0 || decoded.ExpiresAt == 0 {
				t.Fatal("expected iat and exp to be stamped")
			}
			if decoded.ExpiresAt-decoded.IssuedAt != int64(time.Hour/time.Second) {
				t.Fatalf("expected exp-iat of 3600s, got %d", decoded.ExpiresAt-decoded.IssuedAt)
			}

			want := tt.sess
			want.IssuedAt = decoded.IssuedAt
			want.ExpiresAt = decoded.ExpiresAt
			if !reflect.DeepEqual(want, *decoded) {
				t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, *decoded)
			}
		})
	}
}

func TestTokenShape(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Encode(NewAdmin("boss@example.com"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(token, "=") {
		t.Fatal("token must not contain base64 padding")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		t.Fatalf("expected 2 dot-separated segments, got %d", len(parts))
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("signature segment is not base64url: %v", err)
	}
	if len(sig) != 32 {
		t.Fatalf("expected 32-byte HMAC-SHA256 signature, got %d bytes", len(sig))
	}
}

func TestDecodeRejectsSignatureBitFlips(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Encode(NewEngineer("eng@example.com", "nadia"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body, sigPart, _ := strings.Cut(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		t.Fatalf("decode sig: %v", err)
	}

	for i := range sig {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(sig))
			copy(mutated, sig)
			mutated[i] ^= 1 << bit

			forged := body + "." + base64.RawURLEncoding.EncodeToString(mutated)
			if _, ok := c.Decode(forged); ok {
				t.Fatalf("flipping sig byte %d bit %d must invalidate the token", i, bit)
			}
		}
	}
}

func TestDecodeRejectsBodyBitFlips(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Encode(NewAdmin("boss@example.com"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bodyPart, sigPart, _ := strings.Cut(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(bodyPart)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}

	for i := range payload {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(payload))
			copy(mutated, payload)
			mutated[i] ^= 1 << bit

			forged := base64.RawURLEncoding.EncodeToString(mutated) + "." + sigPart
			if _, ok := c.Decode(forged); ok {
				t.Fatalf("flipping body byte %d bit %d must invalidate the token", i, bit)
			}
		}
	}
}

func TestDecodeRejectsExpired(t *testing.T) {
	c := newTestCodec(t)

	issued := time.Now().Add(-2 * time.Hour)
	c.now = func() time.Time { return issued }
	token, err := c.Encode(NewAdmin("boss@example.com"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Valid while the clock is inside the TTL.
	c.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if _, ok := c.Decode(token); !ok {
		t.Fatal("token should be valid before expiry")
	}

	// Invalid the moment exp is in the past, signature notwithstanding.
	c.now = time.Now
	if _, ok := c.Decode(token); ok {
		t.Fatal("expired token must decode as absent")
	}
}

func TestDecodeAcceptsMissingExp(t *testing.T) {
	c := newTestCodec(t)

	// Hand-build a validly signed payload without exp: the documented
	// non-expiring escape hatch.
	payload, err := json.Marshal(map[string]any{
		"email": "svc@example.com",
		"role":  "admin",
		"iat":   time.Now().Add(-365 * 24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	token := body + "." + base64.RawURLEncoding.EncodeToString(c.sign(body))

	sess, ok := c.Decode(token)
	if !ok {
		t.Fatal("validly signed token without exp must be accepted")
	}
	if sess.Email != "svc@example.com" || sess.Role != RoleAdmin {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	c := newTestCodec(t)
	valid, err := c.Encode(NewAdmin("boss@example.com"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	body, sig, _ := strings.Cut(valid, ".")

	signedGarbage := func(raw string) string {
		b := base64.RawURLEncoding.EncodeToString([]byte(raw))
		return b + "." + base64.RawURLEncoding.EncodeToString(c.sign(b))
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", body},
		{"three parts", valid + "." + sig},
		{"body not base64", "!!!." + sig},
		{"sig not base64", body + ".!!!"},
		{"signed non-json", signedGarbage("not json")},
		{"signed wrong role", signedGarbage(`{"email":"a@b.c","role":"root"}`)},
		{"signed missing email", signedGarbage(`{"role":"admin"}`)},
		{"swapped segments", sig + "." + body},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := c.Decode(tt.token); ok {
				t.Fatalf("token %q must be rejected", tt.token)
			}
		})
	}
}

func TestDecodeRejectsForeignSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec("a different secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, err := other.Encode(NewAdmin("boss@example.com"), time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, ok := c.Decode(token); ok {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	c := newTestCodec(t)

	if _, err := c.Encode(Session{Email: "x@y.z"}, time.Hour); err == nil {
		t.Fatal("expected encode without role to fail")
	}
	if _, err := c.Encode(NewAdmin("x@y.z"), 0); err == nil {
		t.Fatal("expected encode with zero ttl to fail")
	}
	if _, err := c.Encode(NewAdmin("x@y.z"), -time.Hour); err == nil {
		t.Fatal("expected encode with negative ttl to fail")
	}
}
