// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file gates the content-management routes. Authenticate verifies the
// bearer token and stores the caller's subject and role in the Gin context;
// Authorize checks the role against the access policy for one resource and
// action. Public routes use neither.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/auth"
)

const (
	ctxKeyUserID = "userID"
	ctxKeyRole   = "role"
	ctxKeyClaims = "auth.claims"
)

// TokenVerifier validates a bearer token. *auth.Verifier implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// PolicyChecker decides whether a role may perform act on obj.
// *auth.Enforcer implements it.
type PolicyChecker interface {
	Allowed(role, obj, act string) (bool, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
// Missing or invalid tokens are answered with 401.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "Not authorized, token failed")
			return
		}
		c.Set(ctxKeyUserID, claims.Subject)
		c.Set(ctxKeyRole, claims.Role)
		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

// Authorize lets the request through when the authenticated role may
// perform act on obj, and answers 403 otherwise. It must run after
// Authenticate; without a role it answers 401.
func Authorize(p PolicyChecker, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
			return
		}
		allowed, err := p.Allowed(role, obj, act)
		if err != nil {
			LoggerFrom(c).Error().Err(err).Str("role", role).Str("obj", obj).Str("act", act).Msg("policy check failed")
			AbortWithError(c, http.StatusInternalServerError, "internal_error", "Server Error")
			return
		}
		if !allowed {
			AbortWithError(c, http.StatusForbidden, "forbidden",
				fmt.Sprintf("User role %s is not authorized to access this route", role))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" on public routes.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Role returns the authenticated role, or "".
func Role(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ClaimsFrom returns the verified token claims.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxKeyClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok && cl != nil
}
