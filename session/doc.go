// Package session provides the self-contained signed session token used by the
// dashboard: a JSON payload carrying identity, role, and scoping lists,
// protected by an HMAC-SHA256 signature, plus the cookie transport that moves
// the token between browser and server.
//
// # Token format
//
// A token is two dot-separated segments, both base64url without padding:
// the JSON payload and the HMAC-SHA256 signature computed over the encoded
// payload segment. The signature is always verified before the payload is
// parsed; a token that fails any step of decoding is treated as absent.
//
// # Architecture boundaries
//
// This package owns the [Session] model, the [Codec], and the
// [CookieTransport]. It does NOT look up credentials, evaluate path rules, or
// decide what a role may see — those responsibilities belong to the engine,
// the middleware gate, and the scope package.
//
// # What this package must NOT do
//
//   - Trust any payload field before the signature has been verified.
//   - Surface why a token was rejected; callers only learn valid/invalid.
//   - Hold server-side session state. Tokens are the only session record.
package session
