package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimitedRouter(scope string, r rate.Limit, b int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(scope, r, b, func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}))
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return router
}

func hit(router *gin.Engine, client string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Client", client)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	router := newLimitedRouter("test-burst", rate.Limit(0.001), 2)

	assert.Equal(t, http.StatusOK, hit(router, "a"))
	assert.Equal(t, http.StatusOK, hit(router, "a"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "a"))

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, hit(router, "b"))
}

func TestRateLimitScopesAreIndependent(t *testing.T) {
	auth := newLimitedRouter("test-auth", rate.Limit(0.001), 1)
	general := newLimitedRouter("test-general", rate.Limit(0.001), 1)

	assert.Equal(t, http.StatusOK, hit(auth, "c"))
	assert.Equal(t, http.StatusTooManyRequests, hit(auth, "c"))
	assert.Equal(t, http.StatusOK, hit(general, "c"))
}
