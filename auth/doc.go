// Package auth guards report HTTP endpoints with JWT bearer authentication.
//
// A Verifier validates tokens signed with HMAC, RSA, or ECDSA keys supplied
// by a KeyProvider: StaticKeyProvider for fixed keys, JWKSProvider for keys
// fetched and cached from a JWKS endpoint. RequireToken wraps the graph's
// HTTP handlers and stows verified claims in the request context, where
// handlers retrieve them with ClaimsFrom.
package auth
