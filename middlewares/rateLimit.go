package middlewares

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	limiters = make(map[string]*rate.Limiter)
	mu       sync.Mutex
)

// getLimiter keeps one limiter per scope and client key, so the auth and
// general limits are tracked separately for the same client.
func getLimiter(scope, key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	id := scope + "|" + key
	limiter, exists := limiters[id]
	if !exists {
		limiter = rate.NewLimiter(r, b)
		limiters[id] = limiter
	}
	return limiter
}

func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

func RateLimitMiddleware(scope string, r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getLimiter(scope, keyFunc(c), r, b)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}

		c.Next()
	}
}
