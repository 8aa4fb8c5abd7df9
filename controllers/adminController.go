package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/middlewares"
	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const loginEventLimit = 100

func AdminLogin(c *gin.Context) {
	var body models.AdminLogin
	if !bindBody(c, &body) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	cfg := initializers.Cfg
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(cfg.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(body.Password), []byte(cfg.AdminPassword)) == 1
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" || !emailOK || !passwordOK {
		clearSessionCookie(c, middlewares.AdminCookie)
		log.Warn().Str("email", email).Msg("rejected admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin credentials"})
		return
	}

	admin := models.AdminSession{Email: cfg.AdminEmail, Role: models.AdminRole}
	token, err := middlewares.SignToken(jwt.MapClaims{"email": admin.Email, "role": admin.Role})
	if err != nil {
		log.Error().Err(err).Msg("failed to sign admin token")
		internalError(c, "Failed to generate token")
		return
	}

	setSessionCookie(c, middlewares.AdminCookie, token)
	c.JSON(http.StatusOK, admin)
}

func AdminLogout(c *gin.Context) {
	clearSessionCookie(c, middlewares.AdminCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func AdminMe(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet("admin").(models.AdminSession))
}

func AdminGetStats(c *gin.Context) {
	var stats models.AdminStats
	counts := []struct {
		table string
		dst   *int64
	}{
		{"users", &stats.Users},
		{"listings", &stats.Listings},
		{"applications", &stats.Applications},
		{"threads", &stats.Threads},
		{"messages", &stats.Messages},
	}
	for _, count := range counts {
		n, err := initializers.DB.From(count.table).Count()
		if err != nil {
			log.Error().Err(err).Str("table", count.table).Msg("failed to count rows")
			internalError(c, "Failed to load stats")
			return
		}
		*count.dst = n
	}
	c.JSON(http.StatusOK, stats)
}

func AdminGetUsers(c *gin.Context) {
	users := []models.User{}
	err := initializers.DB.From("users").
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ScanStructs(&users)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		internalError(c, "Failed to load users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func AdminGetListings(c *gin.Context) {
	rows, err := services.ListListings(services.ListingFilter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list listings")
		internalError(c, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, listingDTOs(rows))
}

func AdminGetApplications(c *gin.Context) {
	applications := []models.ApplicationWithListing{}
	err := initializers.DB.From("applications").
		Select(goqu.T("applications").All(), goqu.I("listings.title").As("listing_title")).
		LeftJoin(goqu.T("listings"), goqu.On(goqu.I("listings.id").Eq(goqu.I("applications.listing_id")))).
		Order(goqu.I("applications.created_at").Desc(), goqu.I("applications.id").Desc()).
		ScanStructs(&applications)
	if err != nil {
		log.Error().Err(err).Msg("failed to list applications")
		internalError(c, "Failed to load applications")
		return
	}
	c.JSON(http.StatusOK, applications)
}

func AdminGetThreads(c *gin.Context) {
	threads, err := services.ListThreads(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to list threads")
		internalError(c, "Failed to load threads")
		return
	}
	c.JSON(http.StatusOK, threads)
}

func AdminGetLoginEvents(c *gin.Context) {
	events := []models.LoginEvent{}
	err := initializers.DB.From("login_events").
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(loginEventLimit).
		ScanStructs(&events)
	if err != nil {
		log.Error().Err(err).Msg("failed to list login events")
		internalError(c, "Failed to load login events")
		return
	}
	c.JSON(http.StatusOK, events)
}

// AdminUpdateListing merges a partial body over the stored listing and saves
// the result. The listing keeps its owner account.
func AdminUpdateListing(c *gin.Context) {
	id, ok := paramID(c, "id", "Invalid listing id")
	if !ok {
		return
	}

	existing, err := services.GetListingRow(id)
	if err != nil {
		log.Error().Err(err).Int("listingId", id).Msg("failed to load listing")
		internalError(c, "Failed to load listing")
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	var body map[string]interface{}
	if !bindBody(c, &body) {
		return
	}

	payload := models.NormalizeListing(existing.ToListing().MergeInto(body))
	if details := payload.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	row, err := services.UpdateListing(id, payload.Record(existing.Owner_User_ID, initializers.HasLegacySqft))
	if errors.Is(err, services.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int("listingId", id).Msg("failed to update listing")
		internalError(c, "Failed to update listing")
		return
	}

	log.Info().Int("listingId", id).Msg("listing updated by admin")
	c.JSON(http.StatusOK, row.ToListing())
}

func AdminDeleteListing(c *gin.Context) {
	id, ok := paramID(c, "id", "Invalid listing id")
	if !ok {
		return
	}

	err := services.DeleteListingCascade(id)
	if errors.Is(err, services.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int("listingId", id).Msg("failed to delete listing")
		internalError(c, "Failed to delete listing")
		return
	}

	log.Info().Int("listingId", id).Msg("listing deleted by admin")
	c.JSON(http.StatusNoContent, nil)
}

func AdminUpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id", "Invalid user id")
	if !ok {
		return
	}

	var existing models.User
	found, err := initializers.DB.From("users").Where(goqu.C("id").Eq(id)).ScanStruct(&existing)
	if err != nil {
		log.Error().Err(err).Int("userId", id).Msg("failed to load user")
		internalError(c, "Failed to load user")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var body models.AdminUserUpdate
	if !bindBody(c, &body) {
		return
	}

	name := existing.Name
	if body.Name != nil {
		name = strings.TrimSpace(*body.Name)
	}
	email := existing.Email
	if body.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*body.Email))
	}
	password := lo.FromPtr(body.Password)

	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is invalid"})
		return
	}
	if password != "" && len(password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	record := goqu.Record{"name": name, "email": email}
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			internalError(c, "Failed to update user")
			return
		}
		record["password_hash"] = hash
	}

	_, err = initializers.DB.Update("users").Set(record).Where(goqu.C("id").Eq(id)).Executor().Exec()
	if err != nil {
		if initializers.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		log.Error().Err(err).Int("userId", id).Msg("failed to update user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update user"})
		return
	}

	existing.Name = name
	existing.Email = email
	log.Info().Int("userId", id).Msg("user updated by admin")
	c.JSON(http.StatusOK, existing)
}
