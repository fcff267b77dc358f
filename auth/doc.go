// Package auth loads the bearer token presented to the tool gateway.
//
// A token can be passed directly, read from any afs URL, or decrypted from a
// scy secret resource. The gateway verifies tokens; this package only inspects
// JWT claims to warn about expiry at startup.
package auth
