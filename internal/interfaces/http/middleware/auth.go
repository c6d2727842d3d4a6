// Package middleware provides the gin middleware chain of the VTN:
// bearer token authentication, request logging and panic recovery.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"openadr/internal/infrastructure/auth"
	apperrors "openadr/internal/shared/errors"

	"openadr/internal/interfaces/http/utils"
)

// claimsKey is the gin context key the validated claims are stored under.
const claimsKey = "auth_claims"

// Auth validates the bearer token and stores its claims on the context.
// Requests without a valid token are rejected before any handler runs.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth. Handlers behind the
// middleware can rely on them being present.
func ClaimsFrom(c *gin.Context) (*auth.Claims, error) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, apperrors.NewAuthError("request is not authenticated")
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil, apperrors.NewAuthError("request is not authenticated")
	}
	return claims, nil
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", apperrors.NewAuthError("missing Authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.NewAuthError("Authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}

// RequireScope rejects requests whose claims lack the scope.
func RequireScope(scope auth.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ClaimsFrom(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		if !claims.Has(scope) {
			utils.AbortWithError(c, apperrors.NewForbiddenError("token lacks the required scope", string(scope)))
			return
		}
		c.Next()
	}
}

// RequireRead rejects requests whose claims carry no read scope at all.
func RequireRead() gin.HandlerFunc {
	return requireClaims((*auth.Claims).CanRead, "token lacks a read scope")
}

// RequireReadTargets gates program and event reads.
func RequireReadTargets() gin.HandlerFunc {
	return requireClaims((*auth.Claims).CanReadTargets, "token lacks read_all or read_targets")
}

// RequireReadVenObjects gates reads of VEN-owned objects.
func RequireReadVenObjects() gin.HandlerFunc {
	return requireClaims((*auth.Claims).CanReadVenObjects, "token lacks read_all or read_ven_objects")
}

func requireClaims(check func(*auth.Claims) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ClaimsFrom(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		if !check(claims) {
			utils.AbortWithError(c, apperrors.NewForbiddenError(message))
			return
		}
		c.Next()
	}
}
