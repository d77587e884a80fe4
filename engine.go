package storegate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arvindpj/storegate/internal/rate"
	"github.com/arvindpj/storegate/password"
	"github.com/arvindpj/storegate/session"
)

// decoyStoredHash is a syntactically valid stored hash for an unguessable
// password, used to equalize login timing when the email is unknown.
const decoyStoredHash = "scrypt:" +
	"6f1d2c3b4a5968778695a4b3c2d1e0f1" +
	":" +
	"9c1185a5c5e9fc54612808977ee8f548b2258d31a8d56b8dbb7d2a596f2f0f3c" +
	"5d4c3b2a19087f6e5d4c3b2a19087f6e5d4c3b2a19087f6e5d4c3b2a19087f6e"

// Engine orchestrates login, logout, and session introspection. Safe for
// concurrent use after [Builder.Build].
type Engine struct {
	config  Config
	users   UserStore
	hasher  *password.Hasher
	codec   *session.Codec
	cookies session.CookieTransport
	limiter *rate.Limiter
	audit   *auditDispatcher
}

// Codec exposes the session codec for wiring the middleware gate.
func (e *Engine) Codec() *session.Codec {
	return e.codec
}

// Cookies exposes the cookie transport for wiring the middleware gate.
func (e *Engine) Cookies() session.CookieTransport {
	return e.cookies
}

// SessionTTL returns the configured token lifetime.
func (e *Engine) SessionTTL() time.Duration {
	return e.config.SessionTTL
}

// Close flushes the audit dispatcher. Call on shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Login verifies credentials and returns a signed session token with the
// session it encodes. Unknown email, inactive account, and wrong password
// all fail with [ErrInvalidCredentials]; the KDF work factor is paid in every
// branch that reaches it so the cases stay as indistinguishable in timing as
// practical. Attach the caller's IP via [WithClientIP] to enable per-IP
// limiting.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (string, *session.Session, error) {
	if e == nil || e.users == nil {
		return "", nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)
	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.emit(AuditLoginRateLimited, email, ip, false, ErrLoginRateLimited)
				return "", nil, ErrLoginRateLimited
			}
			// Redis being down must not lock everyone out; fall through to
			// credential verification, which is still KDF-bounded.
		}
	}

	rec, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn the same KDF cost as a real verification so an unknown
			// email is not measurably faster than a wrong password.
			e.hasher.Verify(plaintext, decoyStoredHash)
			e.recordFailure(ctx, email, ip, "unknown email")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !e.hasher.Verify(plaintext, rec.PasswordHash) {
		e.recordFailure(ctx, email, ip, "wrong password")
		return "", nil, ErrInvalidCredentials
	}

	if !rec.Active {
		e.recordFailure(ctx, email, ip, "inactive account")
		return "", nil, ErrInvalidCredentials
	}

	sess := sessionForRecord(rec)
	token, err := e.codec.Encode(sess, e.config.SessionTTL)
	if err != nil {
		return "", nil, err
	}

	if e.limiter != nil {
		_ = e.limiter.ResetLogin(ctx, email, ip)
	}
	e.emit(AuditLoginSuccess, email, ip, true, nil)

	// Re-decode rather than returning the input so the caller sees exactly
	// what future requests will see, iat/exp included.
	decoded, ok := e.codec.Decode(token)
	if !ok {
		return "", nil, ErrEngineNotReady
	}
	return token, decoded, nil
}

// IssueCookie attaches the token to the response with the configured TTL.
func (e *Engine) IssueCookie(w http.ResponseWriter, token string) {
	e.cookies.Attach(w, token, e.config.SessionTTL)
}

// Logout clears the session cookie. There is no server-side state to
// destroy; the token itself stays valid until expiry.
func (e *Engine) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	e.cookies.Clear(w)

	email := ""
	if sess, ok := e.codec.Decode(e.cookies.FromRequest(r)); ok {
		email = sess.Email
	}
	e.emit(AuditLogout, email, clientIPFromContext(ctx), true, nil)
}

// Introspect returns the request's session, or nil for anything invalid:
// missing cookie, malformed token, bad signature, or expiry. The caller
// cannot tell which.
func (e *Engine) Introspect(r *http.Request) *session.Session {
	sess, ok := e.codec.Decode(e.cookies.FromRequest(r))
	if !ok {
		return nil
	}
	return sess
}

func (e *Engine) recordFailure(ctx context.Context, email, ip, reason string) {
	if e.limiter != nil {
		_ = e.limiter.IncrementLogin(ctx, email, ip)
	}
	e.emit(AuditLoginFailed, email, ip, false, errors.New(reason))
}

func (e *Engine) emit(eventType, email, ip string, success bool, err error) {
	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		IP:        ip,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(context.Background(), event)
}

// sessionForRecord builds the role-appropriate session payload, copying only
// the scoping fields the role legitimately carries.
func sessionForRecord(rec UserRecord) session.Session {
	switch rec.Role {
	case session.RoleEngineer:
		return session.NewEngineer(rec.Email, rec.EngineerName)
	case session.RoleSub:
		return session.NewSub(rec.Email, session.SubScope{
			Engineers: rec.AllowedEngineers,
			Projects:  rec.AllowedProjects,
			Promos:    rec.AllowedPromos,
		})
	default:
		return session.NewAdmin(rec.Email)
	}
}
