package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func UpsertMyRoommateProfile(c *gin.Context) {
	user := currentUser(c)

	var body models.RoommateProfileInput
	if !bindBody(c, &body) {
		return
	}
	body.Normalize()
	if details := body.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	profile, err := services.UpsertRoommateProfile(user.ID, body.Record())
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to save roommate profile")
		internalError(c, "Failed to save roommate profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func GetMyRoommateProfile(c *gin.Context) {
	user := currentUser(c)
	profile, err := services.GetRoommateProfile(user.ID)
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to load roommate profile")
		internalError(c, "Failed to load roommate profile")
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roommate profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// queryInt reads an optional integer query parameter, adding a detail when it is malformed.
func queryInt(c *gin.Context, name string, details *[]string) *int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*details = append(*details, name+" must be a number")
		return nil
	}
	return &value
}

// GetRoommates lists everyone else's profile, scored against the caller's own when it exists.
func GetRoommates(c *gin.Context) {
	user := currentUser(c)

	var details []string
	filter := services.RoommateFilter{
		MinScore:   queryInt(c, "minScore", &details),
		Gender:     strings.TrimSpace(c.Query("gender")),
		University: strings.TrimSpace(c.Query("university")),
		MaxBudget:  queryInt(c, "maxBudget", &details),
		Pets:       strings.TrimSpace(c.Query("pets")),
		Smoking:    strings.TrimSpace(c.Query("smoking")),
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": details})
		return
	}

	me, err := services.GetRoommateProfile(user.ID)
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to load roommate profile")
		internalError(c, "Failed to load roommates")
		return
	}

	candidates, err := services.ListRoommateProfiles(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roommate profiles")
		internalError(c, "Failed to load roommates")
		return
	}

	c.JSON(http.StatusOK, services.RankRoommates(me, candidates, filter))
}

func GetRoommate(c *gin.Context) {
	user := currentUser(c)
	id, ok := paramID(c, "id", "Invalid roommate profile id")
	if !ok {
		return
	}

	profile, err := services.GetRoommateProfileByID(id)
	if err != nil {
		log.Error().Err(err).Int("profileId", id).Msg("failed to load roommate profile")
		internalError(c, "Failed to load roommate profile")
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roommate profile not found"})
		return
	}

	if profile.UserID != strconv.Itoa(user.ID) {
		me, err := services.GetRoommateProfile(user.ID)
		if err != nil {
			log.Error().Err(err).Int("userId", user.ID).Msg("failed to load roommate profile")
			internalError(c, "Failed to load roommate profile")
			return
		}
		if me != nil {
			profile.CompatibilityScore = lo.ToPtr(services.CalculateCompatibility(me.Preferences(), profile.Preferences()))
		}
	}
	c.JSON(http.StatusOK, profile)
}
