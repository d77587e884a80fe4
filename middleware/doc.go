// Package middleware contains the page-level authorization gate. The gate
// runs once per request before any business handler: it decodes the session
// cookie, stores the result in the request context, and applies the fixed
// path rules (login-page redirect, root gate, protected prefixes, admin-only
// prefixes). Finer checks — which engineer's data a session may read — are
// the scope package's job and happen inside handlers.
package middleware
