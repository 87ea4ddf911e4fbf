// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/identity"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/auth"
)

const principalKey = "principal"

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(principalKey, identity.Principal{ID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// OptionalAuthMiddleware sets the principal when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		if claims, err := jwtManager.ValidateAccessToken(tokenString); err == nil {
			c.Set(principalKey, identity.Principal{ID: claims.UserID, Email: claims.Email})
		}

		c.Next()
	}
}

// GetPrincipalFromContext returns the authenticated principal, if any
func GetPrincipalFromContext(c *gin.Context) (identity.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

// IdentitySession returns a per-request identity session seeded from the
// bearer token. Anonymous requests get a signed-out session.
func IdentitySession(c *gin.Context) *identity.Session {
	if p, ok := GetPrincipalFromContext(c); ok {
		return identity.NewSignedInSession(p)
	}
	return identity.NewSession()
}
