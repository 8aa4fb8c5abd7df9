package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/middlewares"
	"github.com/CampusLease/models"
	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) models.User {
	return c.MustGet("currentUser").(models.User)
}

func sessionUser(user models.User) models.SessionUser {
	return models.SessionUser{ID: strconv.Itoa(user.ID), Name: user.Name, Email: user.Email}
}

// bindBody decodes a JSON body into dst. An empty body leaves dst untouched
// so the caller's validation reports the missing fields.
func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return false
	}
	return true
}

func invalidPayload(c *gin.Context, details []string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": details})
}

// paramID parses a numeric path parameter, answering 400 with message when it is not a number.
func paramID(c *gin.Context, name, message string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return 0, false
	}
	return id, true
}

func sameSite() http.SameSite {
	if initializers.Cfg.CookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func setSessionCookie(c *gin.Context, name, token string) {
	c.SetSameSite(sameSite())
	c.SetCookie(name, token, int(middlewares.SessionTTL.Seconds()), "/", "", initializers.Cfg.CookieSecure, true)
}

func clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(sameSite())
	c.SetCookie(name, "", -1, "/", "", initializers.Cfg.CookieSecure, true)
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
