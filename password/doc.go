// Package password derives and verifies salted scrypt password hashes in the
// stored form "scrypt:<salt-hex>:<derived-key-hex>".
//
// Verification is constant-time over the derived key and never panics or
// errors on malformed stored hashes; any defect in the stored string simply
// verifies as false, so login failures stay uniform across unknown accounts,
// inactive accounts, and wrong passwords.
package password
