package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	authH *AuthHandler,
	bookH *BookHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := JWTAuthMiddleware(tokenSvc)

	auth := r.Group("/api/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/profile", requireAuth, authH.GetProfile)

	// Todas las rutas de libros requieren autenticación.
	books := r.Group("/api/books", requireAuth)
	books.GET("", bookH.ListBooks)
	books.POST("", bookH.CreateBook)
	books.GET("/:id", bookH.GetBook)
	books.PUT("/:id", bookH.UpdateBook)
	books.DELETE("/:id", bookH.DeleteBook)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
