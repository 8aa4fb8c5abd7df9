package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func CreateApplication(c *gin.Context) {
	user := currentUser(c)

	var body models.ApplicationCreate
	if !bindBody(c, &body) {
		return
	}
	body.Normalize()
	if details := body.Validate(user.Name, user.Email); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	listingID := int(body.ListingID)
	listing, err := services.GetListingRow(listingID)
	if err != nil {
		log.Error().Err(err).Int("listingId", listingID).Msg("failed to load listing for application")
		internalError(c, "Failed to submit application")
		return
	}
	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	application := models.Application{
		Listing_ID:        listingID,
		Name:              user.Name,
		Email:             user.Email,
		Phone:             lo.EmptyableToPtr(body.Phone),
		Message:           lo.EmptyableToPtr(body.Message),
		Applicant_User_ID: &user.ID,
		Created_At:        initializers.NowTimestamp(),
	}
	id, err := initializers.InsertReturningID(initializers.DB.Insert("applications").Rows(application))
	if err != nil {
		log.Error().Err(err).Int("listingId", listingID).Msg("failed to insert application")
		internalError(c, "Failed to submit application")
		return
	}
	application.ID = int(id)

	log.Info().Int("applicationId", application.ID).Int("listingId", listingID).Msg("application submitted")
	go services.NotifyOwnerOfApplication(*listing, application)

	c.JSON(http.StatusCreated, application)
}

// GetApplications lists the caller's own applications, optionally for one listing.
func GetApplications(c *gin.Context) {
	user := currentUser(c)

	query := initializers.DB.From("applications").
		Where(goqu.C("applicant_user_id").Eq(user.ID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())

	if raw := strings.TrimSpace(c.Query("listingId")); raw != "" {
		listingID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": []string{"listingId must be a number"}})
			return
		}
		query = query.Where(goqu.C("listing_id").Eq(listingID))
	}

	applications := []models.Application{}
	if err := query.ScanStructs(&applications); err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to list applications")
		internalError(c, "Failed to load applications")
		return
	}
	c.JSON(http.StatusOK, applications)
}
