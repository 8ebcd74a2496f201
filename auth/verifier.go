package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config configures bearer-token verification.
type Config struct {
	// HeaderName is the request header carrying the token.
	// Default: "Authorization"
	HeaderName string

	// TokenPrefix precedes the token inside the header.
	// Default: "Bearer "
	TokenPrefix string

	// Issuer, when set, must match the token's iss claim.
	Issuer string

	// Audience, when set, must appear in the token's aud claim.
	Audience string

	// Leeway tolerates clock skew when validating exp and nbf.
	Leeway time.Duration
}

// DefaultConfig returns the defaults NewVerifier applies to unset fields.
func DefaultConfig() Config {
	return Config{
		HeaderName:  "Authorization",
		TokenPrefix: "Bearer ",
	}
}

// KeyProvider retrieves signing keys for token validation.
type KeyProvider interface {
	// GetKey returns the verification key for the given key ID. An empty
	// keyID means the token carried no kid header.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider serves a single fixed key regardless of key ID:
// an HMAC secret ([]byte), an *rsa.PublicKey, or an *ecdsa.PublicKey.
type StaticKeyProvider struct {
	key any
}

// NewStaticKeyProvider creates a provider serving the given key.
func NewStaticKeyProvider(key any) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// Verifier validates JWT bearer tokens against a key provider.
type Verifier struct {
	config Config
	keys   KeyProvider
}

// NewVerifier creates a verifier, filling unset config fields from
// DefaultConfig.
func NewVerifier(config Config, keys KeyProvider) *Verifier {
	def := DefaultConfig()
	if config.HeaderName == "" {
		config.HeaderName = def.HeaderName
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = def.TokenPrefix
	}

	return &Verifier{config: config, keys: keys}
}

// Verify parses and validates a raw token string and returns its claims.
// Failures map onto the package sentinels: ErrMissingToken, ErrTokenExpired,
// ErrTokenNotYetValid, ErrKeyNotFound, and ErrInvalidToken for everything
// else (bad signature, malformed token, issuer or audience mismatch).
func (v *Verifier) Verify(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithLeeway(v.config.Leeway)}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		kid := ""
		if kidVal, ok := token.Header["kid"].(string); ok {
			kid = kidVal
		}
		return v.keys.GetKey(ctx, kid)
	}, opts...)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case errors.Is(err, ErrKeyNotFound):
		return nil, ErrKeyNotFound
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Ensure StaticKeyProvider implements KeyProvider
var _ KeyProvider = (*StaticKeyProvider)(nil)
