package controllers

import (
	"net/http"
	"strconv"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/middlewares"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

func recordLoginEvent(userID int, email, eventType string) {
	_, err := initializers.DB.Insert("login_events").Rows(goqu.Record{
		"user_id":    userID,
		"email":      email,
		"event_type": eventType,
		"created_at": initializers.NowTimestamp(),
	}).Executor().Exec()
	if err != nil {
		log.Error().Err(err).Int("userId", userID).Str("event", eventType).Msg("failed to record login event")
	}
}

// startSession signs a session token, sets the session cookie and returns the auth response body.
func startSession(c *gin.Context, user models.SessionUser) (models.AuthResponse, bool) {
	token, err := middlewares.SignToken(jwt.MapClaims{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to sign session token")
		internalError(c, "Failed to generate token")
		return models.AuthResponse{}, false
	}

	setSessionCookie(c, middlewares.UserCookie, token)
	return models.AuthResponse{SessionUser: user, Token: token}, true
}

func Register(c *gin.Context) {
	var body models.UserSignup
	if !bindBody(c, &body) {
		return
	}

	body.Normalize()
	if details := body.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	passwordHash, err := hashPassword(body.Password)
	if err != nil {
		internalError(c, "Registration failed")
		return
	}

	id, err := initializers.InsertReturningID(initializers.DB.Insert("users").Rows(goqu.Record{
		"name":          body.Name,
		"email":         body.Email,
		"password_hash": passwordHash,
		"created_at":    initializers.NowTimestamp(),
	}))
	if err != nil {
		if initializers.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		log.Error().Err(err).Str("email", body.Email).Msg("failed to register user")
		internalError(c, "Registration failed")
		return
	}

	recordLoginEvent(int(id), body.Email, models.LoginEventRegister)

	response, ok := startSession(c, models.SessionUser{ID: strconv.FormatInt(id, 10), Name: body.Name, Email: body.Email})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, response)
}

func Login(c *gin.Context) {
	var body models.UserLogin
	if !bindBody(c, &body) {
		return
	}

	body.Normalize()
	if details := body.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").Where(goqu.C("email").Eq(body.Email)).ScanStruct(&user)
	if err != nil {
		log.Error().Err(err).Msg("failed to load user for login")
		internalError(c, "Login failed")
		return
	}

	ok, legacy := false, false
	if found {
		ok, legacy = verifyPassword(body.Password, user.Password_Hash)
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if legacy {
		upgradeLegacyHash(user.ID, body.Password)
	}

	recordLoginEvent(user.ID, user.Email, models.LoginEventLogin)

	response, ok := startSession(c, sessionUser(user))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response)
}

// upgradeLegacyHash replaces a verified scrypt hash with bcrypt. Failure leaves
// the old hash in place, which still verifies.
func upgradeLegacyHash(userID int, password string) {
	hash, err := hashPassword(password)
	if err != nil {
		return
	}
	_, err = initializers.DB.Update("users").
		Set(goqu.Record{"password_hash": hash}).
		Where(goqu.C("id").Eq(userID)).
		Executor().Exec()
	if err != nil {
		log.Warn().Err(err).Int("userId", userID).Msg("failed to upgrade legacy password hash")
	}
}

func Logout(c *gin.Context) {
	clearSessionCookie(c, middlewares.UserCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, sessionUser(currentUser(c)))
}
