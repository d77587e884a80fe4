package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arvindpj/storegate/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the validated session the gate stored for this
// request. ok is false for anonymous requests.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return s, ok
}

// GateConfig fixes the paths the gate rules operate on.
type GateConfig struct {
	LoginPath string
	HomePath  string

	// ProtectedPrefixes require any authenticated role.
	ProtectedPrefixes []string

	// AdminPrefixes require the admin role and are checked before the
	// protected rule: a logged-in engineer hitting user management is sent
	// home, not to the login page.
	AdminPrefixes []string
}

// DefaultGateConfig covers the dashboard's operational areas.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		LoginPath: "/login",
		HomePath:  "/",
		ProtectedPrefixes: []string{
			"/analytics",
			"/projects",
			"/products",
			"/customers",
			"/orders",
			"/promos",
			"/expenses",
		},
		AdminPrefixes: []string{
			"/users",
			"/api/users",
		},
	}
}

// Gate returns the authorization middleware. For every request it extracts
// the session cookie, decodes it through codec (invalid, tampered, and
// expired tokens all count as anonymous), and either redirects according to
// the path rules or passes the request on with the session in its context.
func Gate(codec *session.Codec, cookies session.CookieTransport, cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := codec.Decode(cookies.FromRequest(r))
			if ok {
				r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, sess))
			}

			path := r.URL.Path

			// Admin-only gate. Takes precedence over the protected-path
			// rule so non-admins land on the home page.
			if matchesPrefix(path, cfg.AdminPrefixes) {
				if !ok || sess.Role != session.RoleAdmin {
					http.Redirect(w, r, cfg.HomePath, http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Already-authenticated users do not see the login form.
			if path == cfg.LoginPath {
				if ok {
					http.Redirect(w, r, cfg.HomePath, http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if path == cfg.HomePath || matchesPrefix(path, cfg.ProtectedPrefixes) {
				if !ok {
					http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
