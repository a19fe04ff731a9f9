package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"book-catalog/internal/service"
)

const authUserIDKey = "auth_user_id"

// JWTAuthMiddleware valida el bearer token y guarda el identificador del
// usuario en el contexto. Ante cualquier falla corta con 401 sin invocar
// el handler; token expirado y firma inválida reciben el mismo status.
func JWTAuthMiddleware(tokenSvc *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			respondError(c, http.StatusInternalServerError, "Internal Server Error", "Token service not configured")
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(c, http.StatusUnauthorized, "Access denied", "No token provided")
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		userID, err := tokenSvc.Verify(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Access denied", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene el identificador del usuario autenticado.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}
