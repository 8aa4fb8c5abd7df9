package middlewares

import (
	"net/http"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/gin-gonic/gin"
)

// AdminFromRequest returns the admin session carried by the admin cookie, if any.
func AdminFromRequest(c *gin.Context) (models.AdminSession, bool) {
	tokenString, err := c.Cookie(AdminCookie)
	if err != nil || tokenString == "" {
		return models.AdminSession{}, false
	}
	claims, err := ParseToken(tokenString)
	if err != nil {
		return models.AdminSession{}, false
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return models.AdminSession{Email: email, Role: role}, true
}

// IsConfiguredAdmin reports whether the session belongs to the configured admin account.
func IsConfiguredAdmin(admin models.AdminSession) bool {
	return admin.Role == models.AdminRole &&
		initializers.Cfg.AdminEmail != "" &&
		admin.Email == initializers.Cfg.AdminEmail
}

func CheckAdmin(c *gin.Context) {
	admin, ok := AdminFromRequest(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if !IsConfiguredAdmin(admin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	c.Set("admin", admin)
	c.Next()
}
