package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kaimonolist/linkd/internal/middleware"
	"github.com/kaimonolist/linkd/internal/service"
	"github.com/kaimonolist/linkd/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gotest.tools/v3/assert"
)

func setupContextRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(service.AuthServiceConfig{
		IdentitySecret: "test-secret",
	})

	contextMiddleware := middleware.NewContextMiddleware(auth)

	assert.NilError(t, contextMiddleware.Init())

	engine := gin.New()
	engine.Use(contextMiddleware.Middleware())

	engine.GET("/whoami", func(c *gin.Context) {
		userContext, err := utils.GetContext(c)
		if err != nil {
			c.String(http.StatusUnauthorized, "anonymous")
			return
		}
		c.String(http.StatusOK, userContext.UID)
	})

	return engine
}

func TestContextMiddleware(t *testing.T) {
	router := setupContextRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte("test-secret"))

	assert.NilError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)
	assert.Equal(t, "user-1", recorder.Body.String())
}

func TestContextMiddlewarePassesThrough(t *testing.T) {
	router := setupContextRouter(t)

	// No header: the request proceeds without a user context.
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 401, recorder.Code)

	// Invalid token: same.
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 401, recorder.Code)
}
