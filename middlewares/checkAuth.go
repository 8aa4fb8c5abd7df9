package middlewares

import (
	"net/http"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// sessionToken reads a bearer token, falling back to the session cookie when
// no Authorization header is sent.
func sessionToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	cookie, err := c.Cookie(UserCookie)
	if err != nil || cookie == "" {
		return "", false
	}
	return cookie, true
}

func CheckAuth(c *gin.Context) {
	tokenString, ok := sessionToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := claimUserID(claims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").Where(goqu.C("id").Eq(userID)).ScanStruct(&user)
	if err != nil {
		log.Error().Err(err).Int("userId", userID).Msg("failed to load session user")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.Set("currentUser", user)
	c.Next()
}
