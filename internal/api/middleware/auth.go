package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

const userIDKey = "userID"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// Auth 从会话 cookie 中解析用户；失败返回 401
func Auth(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		userID, err := verifier.VerifyToken(token)
		if err != nil {
			msg := service.Message(err)
			if msg == "" {
				msg = "Unauthorized: Invalid token"
			}
			response.Unauthorized(c, msg)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the id set by Auth, or "" on public routes.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
