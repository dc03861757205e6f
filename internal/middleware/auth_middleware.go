package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lottoworks/luckydraw-backend/internal/config"
	"golang.org/x/exp/slog"
)

// JWTAuthMiddleware guards the administrative surface with a bearer token
func JWTAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtSecret := []byte(cfg.JWT.Secret)

	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must use the Bearer scheme"})
			return
		}
		tokenString := authHeader[len(bearerSchema):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			slog.Warn("Rejected admin token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("adminEmail", sub)
			}
		}
		c.Next()
	}
}

// OracleAuthMiddleware guards the fulfillment callback with the shared key
// the oracle presents in X-Oracle-Key
func OracleAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	callbackKey := []byte(cfg.Oracle.CallbackKey)

	return func(c *gin.Context) {
		presented := []byte(c.GetHeader("X-Oracle-Key"))
		if len(callbackKey) == 0 || subtle.ConstantTimeCompare(presented, callbackKey) != 1 {
			slog.Warn("Rejected oracle callback", "remoteAddr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid oracle key"})
			return
		}
		c.Next()
	}
}
