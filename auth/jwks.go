package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint.
	URL string

	// CacheTTL is how long fetched keys stay fresh before a lookup
	// triggers a refresh. Default: 1 hour
	CacheTTL time.Duration

	// HTTPClient performs the fetches. If nil, a client with a 30s
	// timeout is used.
	HTTPClient *http.Client
}

// JWKSProvider retrieves verification keys from a JWKS endpoint. Fetched
// keys are cached for the configured TTL; a lookup that misses the cache
// (unknown kid, or TTL elapsed) refreshes the document, with concurrent
// refreshes collapsed into a single fetch. When a refresh fails, previously
// fetched keys keep serving so a flaky endpoint does not take verification
// down with it.
type JWKSProvider struct {
	config JWKSConfig

	mu        sync.RWMutex
	keys      map[string]crypto.PublicKey
	fetchedAt time.Time

	group singleflight.Group
}

// NewJWKSProvider creates a JWKS key provider.
func NewJWKSProvider(config JWKSConfig) *JWKSProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &JWKSProvider{
		config: config,
		keys:   make(map[string]crypto.PublicKey),
	}
}

// GetKey returns the key for the given key ID, refreshing the cached JWKS
// document when the ID is unknown or the cache has gone stale. An empty
// keyID resolves only when the document holds exactly one key.
func (p *JWKSProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	p.mu.RLock()
	fresh := time.Since(p.fetchedAt) < p.config.CacheTTL
	key := p.lookupLocked(keyID)
	p.mu.RUnlock()

	if fresh && key != nil {
		return key, nil
	}

	_, err, _ := p.group.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		// Stale keys beat no keys.
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key = p.lookupLocked(keyID)
	p.mu.RUnlock()

	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds a key by ID. Caller must hold at least mu.RLock.
func (p *JWKSProvider) lookupLocked(keyID string) crypto.PublicKey {
	if keyID == "" {
		if len(p.keys) == 1 {
			for _, key := range p.keys {
				return key
			}
		}
		return nil
	}
	return p.keys[keyID]
}

// refresh fetches the JWKS document and replaces the cached key set.
func (p *JWKSProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]crypto.PublicKey)
	for _, jwk := range doc.Keys {
		key, err := jwk.publicKey()
		if err != nil {
			continue // skip unsupported or malformed entries
		}
		keys[jwk.Kid] = key
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	return nil
}

// jwksDocument is the JWKS endpoint response format.
type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// jwk is a single JSON Web Key, covering the RSA and EC parameter sets.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`

	// RSA
	N string `json:"n"`
	E string `json:"e"`

	// EC
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (k jwk) publicKey() (crypto.PublicKey, error) {
	switch k.Kty {
	case "RSA":
		return k.rsaKey()
	case "EC":
		return k.ecdsaKey()
	default:
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
}

func (k jwk) rsaKey() (*rsa.PublicKey, error) {
	if k.N == "" || k.E == "" {
		return nil, fmt.Errorf("incomplete RSA parameters")
	}

	n, err := decodeBigInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	e, err := decodeBigInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

func (k jwk) ecdsaKey() (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch k.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve %q", k.Crv)
	}

	if k.X == "" || k.Y == "" {
		return nil, fmt.Errorf("incomplete EC parameters")
	}

	x, err := decodeBigInt(k.X)
	if err != nil {
		return nil, fmt.Errorf("decode x: %w", err)
	}
	y, err := decodeBigInt(k.Y)
	if err != nil {
		return nil, fmt.Errorf("decode y: %w", err)
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func decodeBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// Ensure JWKSProvider implements KeyProvider
var _ KeyProvider = (*JWKSProvider)(nil)
