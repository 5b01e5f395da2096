package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	subH *SubscriptionHandler,
	wordH *WordHandler,
	highlightH *HighlightHandler,
	videoH *VideoNoteHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/oauth", authH.OAuthLogin)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)

	// El webhook llega sin token de usuario; su autenticidad se verifica
	// con la firma del proveedor.
	r.POST("/webhooks/paypal", subH.PayPalWebhook)

	api := r.Group("")
	api.Use(JWTAuthMiddleware(authH.jwtServ))

	api.GET("/subscriptions/status", subH.Status)
	api.POST("/subscriptions/activate", subH.Activate)
	api.POST("/subscriptions/cancel", subH.Cancel)

	api.POST("/words/search", wordH.Search)
	api.GET("/words", wordH.List)
	api.GET("/words/:id/similar", wordH.Similar)
	api.DELETE("/words/:id", wordH.Delete)

	api.POST("/highlights", highlightH.Create)
	api.GET("/highlights", highlightH.List)
	api.DELETE("/highlights/:id", highlightH.Delete)

	api.POST("/youtube/notes", videoH.Create)
	api.GET("/youtube/notes", videoH.List)
	api.DELETE("/youtube/notes/:id", videoH.Delete)

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
