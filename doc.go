// Package storegate is the authentication and authorization core of the
// store administration dashboard: stateless HMAC-signed cookie sessions,
// scrypt credential verification, role-based page gating, and per-role data
// scoping.
//
// The package is designed for concurrent server workloads: [Engine] methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// storegate is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserStore] contract, and the audit types. Token encoding lives in the
// session package, password hashing in the password package, the page gate in
// the middleware package, and data scoping in the scope package; Redis rate
// limiting is internal.
//
// # Session model
//
// Sessions are self-contained signed tokens; nothing is persisted server-side
// per session. Logout is purely client-side cookie removal, so a captured
// token stays valid until its embedded expiry — the TTL is the only
// revocation mechanism. Keep Config.SessionTTL as short as the operation
// tolerates.
package storegate
