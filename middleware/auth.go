package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/utils"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAuth validates the bearer token from the Authorization header
// and stores the verified claims in the request context.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Authorization header missing.")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret)
		if err != nil {
			message := "Invalid token."
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token has expired."
			}
			utils.RespondWithUnauthorized(c, message)
			c.Abort()
			return
		}

		// Store user info in context
		c.Set("username", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	})
}

// OptionalAuth validates a token when present but lets anonymous
// requests through. Used for the open-query deployment variant.
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString != "" {
			if claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret); err == nil {
				c.Set("username", claims.Subject)
				c.Set("role", claims.Role)
				c.Set("claims", claims)
			}
		}

		c.Next()
	})
}

// Helper function to get username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// Helper function to get role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
