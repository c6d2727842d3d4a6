package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
)

// issuedTokenTTL is the lifetime of internally issued tokens.
const issuedTokenTTL = 30 * 24 * time.Hour

// minSecretLen is the minimum HMAC secret length in bytes.
const minSecretLen = 32

// tokenClaims is the JWT claim set of internally issued tokens.
type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService issues and validates bearer tokens. Validation uses the
// configured HMAC secret when one is set, otherwise the keys published
// at the JWKS location.
type TokenService struct {
	secret []byte
	jwks   *JWKSProvider
	logger logger.Interface
}

// NewTokenService builds a token service. base64Secret may be empty when
// a JWKS provider is given; an undersized secret is rejected.
func NewTokenService(base64Secret string, jwks *JWKSProvider, log logger.Interface) (*TokenService, error) {
	s := &TokenService{jwks: jwks, logger: log}

	if base64Secret != "" {
		secret, err := base64.StdEncoding.DecodeString(base64Secret)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OAuth secret: %w", err)
		}
		if len(secret) < minSecretLen {
			return nil, fmt.Errorf("OAuth secret must be at least %d bytes, got %d", minSecretLen, len(secret))
		}
		s.secret = secret
		return s, nil
	}

	if jwks == nil {
		// Without configuration we still come up, with a per-process
		// random secret. Tokens do not survive a restart.
		secret := make([]byte, minSecretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate OAuth secret: %w", err)
		}
		s.secret = secret
		log.Warnw("no OAuth secret configured, using a random per-process secret; issued tokens will not survive a restart")
	}
	return s, nil
}

// CanIssue reports whether the service holds a signing secret.
func (s *TokenService) CanIssue() bool {
	return s.secret != nil
}

// Issue mints a bearer token for the client.
func (s *TokenService) Issue(clientID string, scopes []Scope) (token string, expiresIn int64, err error) {
	if s.secret == nil {
		return "", 0, fmt.Errorf("token issuance requires an HMAC secret")
	}

	now := time.Now().UTC()
	claims := &tokenClaims{
		Scope: JoinScopes(scopes),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(issuedTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(issuedTokenTTL.Seconds()), nil
}

// Validate checks the token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if s.secret != nil {
		return s.validateWithKey(tokenString, s.secret)
	}
	if s.jwks == nil {
		return nil, apperrors.NewAuthError("no validation keys available")
	}

	keys, err := s.jwks.Keys()
	if err != nil {
		s.logger.Errorw("failed to load JWKS", "error", err)
		return nil, apperrors.NewAuthError("no validation keys available")
	}

	// Try each key in turn: a signature mismatch just means the next
	// key might fit, any other failure is final.
	for _, key := range keys {
		claims, err := s.validateWithKey(tokenString, key.Key)
		if err == nil {
			return claims, nil
		}
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Details == detailSignature {
			continue
		}
		return nil, err
	}
	return nil, apperrors.NewAuthError("token signature does not match any known key")
}

const detailSignature = "signature"

func (s *TokenService) validateWithKey(tokenString string, key any) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.NewAuthError("token expired")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, apperrors.NewAuthError("token not yet valid")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperrors.NewAuthError("invalid token signature", detailSignature)
		default:
			return nil, apperrors.NewAuthError("invalid token", err.Error())
		}
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.Subject == "" {
		return nil, apperrors.NewAuthError("token has no subject")
	}
	return &Claims{
		ClientID: claims.Subject,
		Scopes:   ParseScopes(claims.Scope, s.logger),
	}, nil
}
