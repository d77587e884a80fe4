// Package rate provides the Redis-backed login attempt limiter.
//
// # Window semantics
//
// Fixed-window counters: INCR plus EXPIRE on the first hit of a window.
// Key prefixes:
//   - sg:login:u:  — failed logins per email
//   - sg:login:ip: — failed logins per client IP
//
// # What this package must NOT do
//
//   - Decide when a login counts as failed (the engine does).
//   - Be imported outside the storegate module.
package rate
