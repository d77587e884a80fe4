package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCookieAttachExtractRoundTrip(t *testing.T) {
	transport := NewCookieTransport("")

	token := "abc.def"
	rec := httptest.NewRecorder()
	transport.Attach(rec, token, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	if got := transport.FromRequest(req); got != token {
		t.Fatalf("extract = %q, want %q", got, token)
	}
}

func TestAttachAttributes(t *testing.T) {
	transport := NewCookieTransport("session")

	rec := httptest.NewRecorder()
	transport.Attach(rec, "tok", 7*24*time.Hour)

	header := rec.Header().Get("Set-Cookie")
	for _, want := range []string{
		"session=tok",
		"Path=/",
		"Max-Age=604800",
		"HttpOnly",
		"SameSite=Lax",
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("Set-Cookie %q missing %q", header, want)
		}
	}
}

func TestClearDropsCookie(t *testing.T) {
	transport := NewCookieTransport("session")

	rec := httptest.NewRecorder()
	transport.Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one Set-Cookie header, got %d", len(cookies))
	}
	if cookies[0].Value != "" {
		t.Fatalf("expected empty value, got %q", cookies[0].Value)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("Set-Cookie %q missing Max-Age=0", rec.Header().Get("Set-Cookie"))
	}
}

func TestFromRequestAbsent(t *testing.T) {
	transport := NewCookieTransport("session")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := transport.FromRequest(req); got != "" {
		t.Fatalf("expected empty token for missing cookie, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	if got := transport.FromRequest(req); got != "" {
		t.Fatalf("expected empty token for unrelated cookie, got %q", got)
	}
}

func TestCustomCookieName(t *testing.T) {
	transport := NewCookieTransport("dash_session")
	if transport.Name() != "dash_session" {
		t.Fatalf("Name() = %q", transport.Name())
	}

	rec := httptest.NewRecorder()
	transport.Attach(rec, "tok", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	if got := transport.FromRequest(req); got != "tok" {
		t.Fatalf("extract = %q, want tok", got)
	}
}
