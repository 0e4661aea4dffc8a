package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CUknot/videocall_backend/apperrors"
	"github.com/CUknot/videocall_backend/utils"
)

// UserIDKey is the gin context key holding the authenticated caller id.
const UserIDKey = "userID"

// JWTAuth verifies the bearer token and stores the caller id under UserIDKey.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, "Authorization header is required")
			return
		}

		userID, err := utils.ParseToken(strings.TrimSpace(tokenString), secret)
		if err != nil {
			abort(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func abort(c *gin.Context, message string) {
	appErr := apperrors.New(apperrors.ErrCodeUnauthorized, message)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// UserID returns the caller id set by JWTAuth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
