package auth

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"openadr/internal/shared/logger"
)

// KeyType selects which JWKS entries are considered for validation.
type KeyType string

const (
	KeyTypeHMAC KeyType = "HMAC"
	KeyTypeRSA  KeyType = "RSA"
	KeyTypeEC   KeyType = "EC"
	KeyTypeED   KeyType = "ED"
)

// jwksCacheTTL bounds how stale the cached key set may get.
const jwksCacheTTL = 5 * time.Minute

// ValidationKey is one usable key from the JWKS.
type ValidationKey struct {
	KeyID string
	Key   any
}

type jwksDocument struct {
	Keys []jwkEntry `json:"keys"`
}

type jwkEntry struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Crv string `json:"crv"`
	K   string `json:"k"`
	N   string `json:"n"`
	E   string `json:"e"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// JWKSProvider fetches and caches the validation keys published at a
// JWKS location. Refreshes are last-write-wins.
type JWKSProvider struct {
	location string
	keyType  KeyType
	client   *http.Client
	logger   logger.Interface

	mu        sync.RWMutex
	keys      []ValidationKey
	fetchedAt time.Time
}

// NewJWKSProvider creates a provider for the given location. The
// location is an HTTP URL or a file path.
func NewJWKSProvider(location string, keyType KeyType, log logger.Interface) *JWKSProvider {
	return &JWKSProvider{
		location: location,
		keyType:  keyType,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log,
	}
}

// Keys returns the cached key set, refreshing it when stale.
func (p *JWKSProvider) Keys() ([]ValidationKey, error) {
	p.mu.RLock()
	keys, fetchedAt := p.keys, p.fetchedAt
	p.mu.RUnlock()

	if keys != nil && time.Since(fetchedAt) < jwksCacheTTL {
		return keys, nil
	}

	fresh, err := p.fetch()
	if err != nil {
		if keys != nil {
			p.logger.Warnw("JWKS refresh failed, using cached keys", "error", err)
			return keys, nil
		}
		return nil, err
	}

	p.mu.Lock()
	p.keys = fresh
	p.fetchedAt = time.Now()
	p.mu.Unlock()
	return fresh, nil
}

func (p *JWKSProvider) fetch() ([]ValidationKey, error) {
	raw, err := p.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS from %s: %w", p.location, err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make([]ValidationKey, 0, len(doc.Keys))
	for _, entry := range doc.Keys {
		key, ok, err := p.parseEntry(entry)
		if err != nil {
			// One bad entry must not poison the whole set.
			p.logger.Warnw("skipping unparseable JWK", "kid", entry.Kid, "kty", entry.Kty, "error", err)
			continue
		}
		if !ok {
			continue
		}
		keys = append(keys, ValidationKey{KeyID: entry.Kid, Key: key})
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no usable %s keys in JWKS", p.keyType)
	}
	return keys, nil
}

func (p *JWKSProvider) read() ([]byte, error) {
	if strings.HasPrefix(p.location, "http://") || strings.HasPrefix(p.location, "https://") {
		resp, err := p.client.Get(p.location)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(strings.TrimPrefix(p.location, "file://"))
}

// parseEntry converts one JWK into a verification key. ok is false when
// the entry's type does not match the configured key type.
func (p *JWKSProvider) parseEntry(entry jwkEntry) (any, bool, error) {
	switch {
	case entry.Kty == "oct" && p.keyType == KeyTypeHMAC:
		k, err := b64(entry.K)
		if err != nil {
			return nil, false, fmt.Errorf("invalid k: %w", err)
		}
		return k, true, nil

	case entry.Kty == "RSA" && p.keyType == KeyTypeRSA:
		n, err := b64(entry.N)
		if err != nil {
			return nil, false, fmt.Errorf("invalid n: %w", err)
		}
		e, err := b64(entry.E)
		if err != nil {
			return nil, false, fmt.Errorf("invalid e: %w", err)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}, true, nil

	case entry.Kty == "EC" && p.keyType == KeyTypeEC:
		curve, err := curveFor(entry.Crv)
		if err != nil {
			return nil, false, err
		}
		x, err := b64(entry.X)
		if err != nil {
			return nil, false, fmt.Errorf("invalid x: %w", err)
		}
		y, err := b64(entry.Y)
		if err != nil {
			return nil, false, fmt.Errorf("invalid y: %w", err)
		}
		return &ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(x),
			Y:     new(big.Int).SetBytes(y),
		}, true, nil

	case entry.Kty == "OKP" && p.keyType == KeyTypeED:
		if entry.Crv != "Ed25519" {
			return nil, false, fmt.Errorf("unsupported OKP curve %q", entry.Crv)
		}
		x, err := b64(entry.X)
		if err != nil {
			return nil, false, fmt.Errorf("invalid x: %w", err)
		}
		if len(x) != ed25519.PublicKeySize {
			return nil, false, fmt.Errorf("Ed25519 key must be %d bytes", ed25519.PublicKeySize)
		}
		return ed25519.PublicKey(x), true, nil
	}
	return nil, false, nil
}

func curveFor(crv string) (elliptic.Curve, error) {
	switch crv {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported EC curve %q", crv)
	}
}

func b64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	return base64.RawURLEncoding.DecodeString(s)
}
