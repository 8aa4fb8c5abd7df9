package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func listingDTOs(rows []models.ListingRow) []models.Listing {
	return lo.Map(rows, func(row models.ListingRow, _ int) models.Listing { return row.ToListing() })
}

// queryNumber reads an optional numeric query parameter. An absent parameter
// yields nil; a present but non-numeric one adds a detail.
func queryNumber(c *gin.Context, name string, details *[]string) *float64 {
	raw, present := c.GetQuery(name)
	if !present {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return lo.ToPtr(0.0)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !models.IsFinite(value) {
		*details = append(*details, name+" must be a number")
		return nil
	}
	return &value
}

func GetListings(c *gin.Context) {
	var details []string
	filter := services.ListingFilter{
		City:     strings.TrimSpace(c.Query("city")),
		MinPrice: queryNumber(c, "minPrice", &details),
		MaxPrice: queryNumber(c, "maxPrice", &details),
		Bedrooms: queryNumber(c, "bedrooms", &details),
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": details})
		return
	}

	rows, err := services.ListListings(filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list listings")
		internalError(c, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, listingDTOs(rows))
}

func GetMyListings(c *gin.Context) {
	user := currentUser(c)
	rows, err := services.ListListings(services.ListingFilter{OwnerUserID: &user.ID})
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to list own listings")
		internalError(c, "Failed to load listings")
		return
	}
	c.JSON(http.StatusOK, listingDTOs(rows))
}

func GetListing(c *gin.Context) {
	id, ok := paramID(c, "id", "Invalid listing id")
	if !ok {
		return
	}

	row, err := services.GetListingRow(id)
	if err != nil {
		log.Error().Err(err).Int("listingId", id).Msg("failed to load listing")
		internalError(c, "Failed to load listing")
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	c.JSON(http.StatusOK, row.ToListing())
}

// bindListing reads and validates a listing body. The owner's name and email
// always come from the session; only the phone is taken from the body.
func bindListing(c *gin.Context, user models.User) (models.ListingPayload, bool) {
	var body map[string]interface{}
	if !bindBody(c, &body) {
		return models.ListingPayload{}, false
	}

	payload := models.NormalizeListing(body)
	payload.Owner.Name = user.Name
	payload.Owner.Email = user.Email
	if details := payload.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return models.ListingPayload{}, false
	}
	return payload, true
}

func CreateListing(c *gin.Context) {
	user := currentUser(c)
	payload, ok := bindListing(c, user)
	if !ok {
		return
	}

	row, err := services.CreateListing(payload.Record(&user.ID, initializers.HasLegacySqft))
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to create listing")
		internalError(c, "Failed to create listing")
		return
	}

	log.Info().Int("listingId", row.ID).Int("userId", user.ID).Msg("listing created")
	c.JSON(http.StatusCreated, row.ToListing())
}

// ownedListing loads the listing behind the id parameter and checks the caller
// may change it. Listings without an owner can be changed by any signed-in user.
func ownedListing(c *gin.Context, user models.User, forbidden string) (*models.ListingRow, bool) {
	id, ok := paramID(c, "id", "Invalid listing id")
	if !ok {
		return nil, false
	}

	row, err := services.GetListingRow(id)
	if err != nil {
		log.Error().Err(err).Int("listingId", id).Msg("failed to load listing")
		internalError(c, "Failed to load listing")
		return nil, false
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return nil, false
	}
	if owner := lo.FromPtr(row.Owner_User_ID); owner != 0 && owner != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden})
		return nil, false
	}
	return row, true
}

func UpdateListing(c *gin.Context) {
	user := currentUser(c)
	existing, ok := ownedListing(c, user, "Not allowed to update this listing")
	if !ok {
		return
	}

	payload, ok := bindListing(c, user)
	if !ok {
		return
	}

	row, err := services.UpdateListing(existing.ID, payload.Record(&user.ID, initializers.HasLegacySqft))
	if errors.Is(err, services.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int("listingId", existing.ID).Msg("failed to update listing")
		internalError(c, "Failed to update listing")
		return
	}
	c.JSON(http.StatusOK, row.ToListing())
}

func DeleteListing(c *gin.Context) {
	user := currentUser(c)
	existing, ok := ownedListing(c, user, "Not allowed to delete this listing")
	if !ok {
		return
	}

	err := services.DeleteListingCascade(existing.ID)
	if errors.Is(err, services.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int("listingId", existing.ID).Msg("failed to delete listing")
		internalError(c, "Failed to delete listing")
		return
	}

	log.Info().Int("listingId", existing.ID).Int("userId", user.ID).Msg("listing deleted")
	c.JSON(http.StatusNoContent, nil)
}
