package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"loan-portal-api/internal/domain"
)

// Context keys set by the auth middleware
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
	CtxViewRole = "view_role"
)

// ViewAsHeader carries an optional display-only role override. It is
// validated against the role enum and stored separately from the real role;
// authorization always re-derives from the authenticated identity.
const ViewAsHeader = "X-View-As-Role"

// Auth returns a middleware that validates JWT tokens and extracts the
// authenticated user id and role
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		var userIDStr string
		if uid, ok := claims["user_id"].(string); ok {
			userIDStr = uid
		} else if sub, ok := claims["sub"].(string); ok {
			userIDStr = sub
		} else {
			abortUnauthorized(c, "User ID not found in token")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			abortUnauthorized(c, "Invalid user ID format")
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok || !domain.IsValidRole(domain.Role(roleStr)) {
			abortUnauthorized(c, "Role not found in token")
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, domain.Role(roleStr))

		// Display-only view-as override, request-scoped. Dropped silently when
		// invalid so it can never widen anything.
		if viewAs := c.GetHeader(ViewAsHeader); viewAs != "" {
			if domain.IsValidRole(domain.Role(viewAs)) {
				c.Set(CtxViewRole, domain.Role(viewAs))
			}
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
	c.Abort()
}
