package testutil

import (
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/middleware"
)

// MockValidatedClaims creates the claims the JWT middleware stores for a token
func MockValidatedClaims(subject, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{Role: role},
	}
}

// SetMockAuthContext sets up the context exactly as EnsureValidToken does
func SetMockAuthContext(c *gin.Context, subject, role, accessToken string) {
	c.Set("user_id", subject)
	c.Set("access_token", accessToken)
	c.Set("validated_claims", MockValidatedClaims(subject, role))
}

// MockAuthMiddleware stands in for EnsureValidToken. The bearer token is
// taken as the Auth0 subject and X-Test-Role as the role claim; requests
// without a token are rejected like an invalid JWT.
func MockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || token == c.GetHeader("Authorization") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}

		SetMockAuthContext(c, token, c.GetHeader("X-Test-Role"), token)
		c.Next()
	}
}
