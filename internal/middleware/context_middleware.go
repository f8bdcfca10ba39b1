package middleware

import (
	"strings"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ContextMiddleware resolves the caller's identity from the Authorization
// header and puts the resulting user context on the gin context. Requests
// without a valid token simply carry no context; handlers that require one
// reject the request themselves.
type ContextMiddleware struct {
	auth *service.AuthService
}

func NewContextMiddleware(auth *service.AuthService) *ContextMiddleware {
	return &ContextMiddleware{
		auth: auth,
	}
}

func (m *ContextMiddleware) Init() error {
	return nil
}

func (m *ContextMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		userContext, err := m.auth.VerifyIdentityToken(strings.TrimPrefix(authHeader, "Bearer "))

		if err != nil {
			log.Debug().Err(err).Msg("Failed to verify identity token")
			c.Next()
			return
		}

		c.Set("context", userContext)
		c.Next()
	}
}
