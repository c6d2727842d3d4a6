package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func testLogger() logger.Interface {
	return logger.NewLogger()
}

func TestParseScopesDropsUnknown(t *testing.T) {
	scopes := ParseScopes("read_all write_programs fly_to_moon", testLogger())
	assert.Equal(t, []Scope{ScopeReadAll, ScopeWritePrograms}, scopes)

	assert.Empty(t, ParseScopes("", testLogger()))
}

func TestClaimsCapabilities(t *testing.T) {
	bl := &Claims{ClientID: "bl", Scopes: []Scope{ScopeReadAll, ScopeWritePrograms}}
	assert.True(t, bl.CanReadAll())
	assert.True(t, bl.CanReadTargets())
	assert.True(t, bl.CanReadVenObjects())
	assert.True(t, bl.IsBusinessLogic())

	ven := &Claims{ClientID: "ven-1", Scopes: []Scope{ScopeReadTargets, ScopeReadVenObjects}}
	assert.False(t, ven.CanReadAll())
	assert.True(t, ven.CanReadTargets())
	assert.True(t, ven.CanReadVenObjects())
	assert.False(t, ven.IsBusinessLogic())
	assert.True(t, ven.CanRead())
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testSecret, nil, testLogger())
	require.NoError(t, err)
	require.True(t, svc.CanIssue())

	token, expiresIn, err := svc.Issue("ven-1-client-id", []Scope{ScopeReadTargets, ScopeWriteReports})
	require.NoError(t, err)
	assert.Equal(t, int64(30*24*3600), expiresIn)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ven-1-client-id", claims.ClientID)
	assert.Equal(t, []Scope{ScopeReadTargets, ScopeWriteReports}, claims.Scopes)
}

func TestValidateRejectsBadSecretLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	_, err := NewTokenService(short, nil, testLogger())
	assert.Error(t, err)

	_, err = NewTokenService("not base64!!", nil, testLogger())
	assert.Error(t, err)
}

func TestValidateExpiredAndNotYetValid(t *testing.T) {
	svc, err := NewTokenService(testSecret, nil, testLogger())
	require.NoError(t, err)

	secret, _ := base64.StdEncoding.DecodeString(testSecret)
	sign := func(claims *tokenClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		return s
	}

	now := time.Now()
	expired := sign(&tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "c",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}})
	_, err = svc.Validate(expired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	future := sign(&tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "c",
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	_, err = svc.Validate(future)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not yet valid")
}

func TestValidateWrongSignature(t *testing.T) {
	issuer, err := NewTokenService(testSecret, nil, testLogger())
	require.NoError(t, err)
	other, err := NewTokenService(base64.StdEncoding.EncodeToString([]byte("ffffffffffffffffffffffffffffffff")), nil, testLogger())
	require.NoError(t, err)

	token, _, err := issuer.Issue("c", nil)
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthError(err))
}

func TestValidateAgainstJWKSFile(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	jwksPath := filepath.Join(t.TempDir(), "jwks.json")
	doc := `{"keys":[
		{"kty":"RSA","kid":"broken","n":"!!!","e":"AQAB"},
		{"kty":"oct","kid":"k1","k":"` + base64.RawURLEncoding.EncodeToString(secret) + `"}
	]}`
	require.NoError(t, os.WriteFile(jwksPath, []byte(doc), 0o600))

	provider := NewJWKSProvider(jwksPath, KeyTypeHMAC, testLogger())
	keys, err := provider.Keys()
	require.NoError(t, err)
	// The RSA entry is filtered by type, the oct entry parses.
	require.Len(t, keys, 1)

	svc, err := NewTokenService("", provider, testLogger())
	require.NoError(t, err)
	assert.False(t, svc.CanIssue())

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		Scope: "read_targets",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ven-1-client-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ven-1-client-id", claims.ClientID)
	assert.Equal(t, []Scope{ScopeReadTargets}, claims.Scopes)
}

func TestJWKSSkipsUnparseableKeys(t *testing.T) {
	jwksPath := filepath.Join(t.TempDir(), "jwks.json")
	doc := `{"keys":[{"kty":"oct","kid":"bad","k":""},{"kty":"oct","kid":"good","k":"` +
		base64.RawURLEncoding.EncodeToString([]byte("another-32-byte-secret-value-ok!")) + `"}]}`
	require.NoError(t, os.WriteFile(jwksPath, []byte(doc), 0o600))

	provider := NewJWKSProvider(jwksPath, KeyTypeHMAC, testLogger())
	keys, err := provider.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "good", keys[0].KeyID)
}
