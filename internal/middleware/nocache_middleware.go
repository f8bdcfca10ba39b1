package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoCacheMiddleware marks responses as uncacheable. Every page and token
// response on the linking surface carries credentials, so nothing may end
// up in an intermediary cache.
type NoCacheMiddleware struct{}

func NewNoCacheMiddleware() *NoCacheMiddleware {
	return &NoCacheMiddleware{}
}

func (m *NoCacheMiddleware) Init() error {
	return nil
}

func (m *NoCacheMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
