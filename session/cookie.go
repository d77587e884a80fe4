package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "session"

// CookieTransport moves session tokens between HTTP responses and requests.
// It only handles the cookie mechanics; validity of the carried token is the
// Codec's concern.
//
// The Secure flag is deliberately not set here: whether the deployment
// terminates TLS is an operational decision made in front of this process.
type CookieTransport struct {
	name string
}

// NewCookieTransport builds a transport for the named cookie. An empty name
// falls back to [DefaultCookieName].
func NewCookieTransport(name string) CookieTransport {
	if name == "" {
		name = DefaultCookieName
	}
	return CookieTransport{name: name}
}

// Name returns the cookie name the transport reads and writes.
func (t CookieTransport) Name() string {
	return t.name
}

// Attach sets the session cookie on the response: Path=/, the given max-age,
// HttpOnly, SameSite=Lax.
func (t CookieTransport) Attach(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with an empty value and MaxAge<0
// (Max-Age=0 on the wire), telling the client to drop it immediately.
func (t CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the token carried by the request's session cookie, or
// "" when the cookie is absent.
func (t CookieTransport) FromRequest(r *http.Request) string {
	c, err := r.Cookie(t.name)
	if err != nil {
		return ""
	}
	return c.Value
}
