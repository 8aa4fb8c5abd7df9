package models

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/samber/lo"
)

var ListingStatuses = []string{"available", "pending", "leased"}

// ListingRow mirrors the listings table. Flags are stored as 0/1 integers and
// arrays as JSON text so the row scans the same from SQLite and Postgres.
type ListingRow struct {
	ID                 int `goqu:"skipinsert"`
	Title              string
	Address            string
	City               string
	Price              int
	Bedrooms           int
	Bathrooms          float64
	Square_Feet        int
	Property_Type      string
	Images_JSON        string
	Amenities_JSON     string
	Utilities_Included int
	Pets_Allowed       int
	Parking_Available  int
	Furnished          int
	Available_From     string
	Available_Until    *string
	Owner_Name         string
	Owner_Email        string
	Owner_Phone        string
	Owner_User_ID      *int
	Status             string
	Lat                float64
	Lng                float64
	Description        string
	Created_At         string
	Updated_At         string
}

type ListingOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Listing struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Address           string       `json:"address"`
	City              string       `json:"city"`
	Price             int          `json:"price"`
	Bedrooms          int          `json:"bedrooms"`
	Bathrooms         float64      `json:"bathrooms"`
	SquareFeet        int          `json:"squareFeet"`
	Type              string       `json:"type"`
	Images            []string     `json:"images"`
	Amenities         []string     `json:"amenities"`
	UtilitiesIncluded bool         `json:"utilitiesIncluded"`
	PetsAllowed       bool         `json:"petsAllowed"`
	ParkingAvailable  bool         `json:"parkingAvailable"`
	Furnished         bool         `json:"furnished"`
	AvailableFrom     string       `json:"availableFrom"`
	AvailableUntil    string       `json:"availableUntil"`
	Owner             ListingOwner `json:"owner"`
	OwnerID           string       `json:"ownerId,omitempty"`
	Status            string       `json:"status"`
	Coordinates       Coordinates  `json:"coordinates"`
	Description       string       `json:"description"`
	CreatedDate       string       `json:"createdDate"`
}

func (row ListingRow) ToListing() Listing {
	listing := Listing{
		ID:                strconv.Itoa(row.ID),
		Title:             row.Title,
		Address:           row.Address,
		City:              row.City,
		Price:             row.Price,
		Bedrooms:          row.Bedrooms,
		Bathrooms:         row.Bathrooms,
		SquareFeet:        row.Square_Feet,
		Type:              row.Property_Type,
		Images:            DecodeStringList(row.Images_JSON),
		Amenities:         DecodeStringList(row.Amenities_JSON),
		UtilitiesIncluded: row.Utilities_Included != 0,
		PetsAllowed:       row.Pets_Allowed != 0,
		ParkingAvailable:  row.Parking_Available != 0,
		Furnished:         row.Furnished != 0,
		AvailableFrom:     row.Available_From,
		AvailableUntil:    lo.FromPtr(row.Available_Until),
		Owner: ListingOwner{
			Name:  row.Owner_Name,
			Email: row.Owner_Email,
			Phone: row.Owner_Phone,
		},
		Status:      lo.Ternary(row.Status == "", "available", row.Status),
		Coordinates: Coordinates{Lat: row.Lat, Lng: row.Lng},
		Description: row.Description,
		CreatedDate: row.Created_At,
	}
	if row.Owner_User_ID != nil {
		listing.OwnerID = strconv.Itoa(*row.Owner_User_ID)
	}
	return listing
}

// ListingPayload is a normalized create/update body. Numbers stay float64 so
// a non-numeric input survives as NaN until Validate reports it.
type ListingPayload struct {
	Title             string
	Address           string
	City              string
	Price             float64
	Bedrooms          float64
	Bathrooms         float64
	SquareFeet        float64
	Type              string
	Images            []string
	Amenities         []string
	UtilitiesIncluded bool
	PetsAllowed       bool
	ParkingAvailable  bool
	Furnished         bool
	AvailableFrom     string
	AvailableUntil    string
	Owner             ListingOwner
	Status            string
	Coordinates       Coordinates
	Description       string
}

// NormalizeListing reads a listing body. Both the camelCase keys of the API and
// the snake_case column names are accepted.
func NormalizeListing(body map[string]interface{}) ListingPayload {
	if body == nil {
		body = map[string]interface{}{}
	}
	owner, _ := body["owner"].(map[string]interface{})
	if owner == nil {
		owner = map[string]interface{}{}
	}
	coordinates, _ := body["coordinates"].(map[string]interface{})
	if coordinates == nil {
		coordinates = map[string]interface{}{}
	}

	ownerField := func(key, column string) string {
		if s, ok := firstString(owner, key); ok {
			return s
		}
		return stringOr(body, "", column)
	}
	coordinate := func(key string) float64 {
		value := firstPresent(coordinates, key)
		if value == nil {
			value = body[key]
		}
		f := ParseNumber(value)
		if !IsFinite(f) {
			return 0
		}
		return f
	}

	status := stringOr(body, "", "status")
	if status == "" {
		status = "available"
	}

	return ListingPayload{
		Title:             stringOr(body, "", "title"),
		Address:           stringOr(body, "", "address"),
		City:              stringOr(body, "", "city"),
		Price:             ParseNumber(body["price"]),
		Bedrooms:          ParseNumber(body["bedrooms"]),
		Bathrooms:         ParseNumber(body["bathrooms"]),
		SquareFeet:        ParseNumber(firstPresent(body, "squareFeet", "square_feet")),
		Type:              stringOr(body, "", "type", "property_type"),
		Images:            stringList(body, "images", "images_json"),
		Amenities:         stringList(body, "amenities", "amenities_json"),
		UtilitiesIncluded: truthy(firstPresent(body, "utilitiesIncluded", "utilities_included")),
		PetsAllowed:       truthy(firstPresent(body, "petsAllowed", "pets_allowed")),
		ParkingAvailable:  truthy(firstPresent(body, "parkingAvailable", "parking_available")),
		Furnished:         truthy(body["furnished"]),
		AvailableFrom:     stringOr(body, "", "availableFrom", "available_from"),
		AvailableUntil:    stringOr(body, "", "availableUntil", "available_until"),
		Owner: ListingOwner{
			Name:  ownerField("name", "owner_name"),
			Email: ownerField("email", "owner_email"),
			Phone: ownerField("phone", "owner_phone"),
		},
		Status:      status,
		Coordinates: Coordinates{Lat: coordinate("lat"), Lng: coordinate("lng")},
		Description: stringOr(body, "", "description"),
	}
}

func (p ListingPayload) Validate() []string {
	var details []string
	if p.Title == "" {
		details = append(details, "title is required")
	}
	if p.Address == "" {
		details = append(details, "address is required")
	}
	if p.City == "" {
		details = append(details, "city is required")
	}
	if !IsFinite(p.Price) || p.Price <= 0 {
		details = append(details, "price must be > 0")
	}
	if !IsFinite(p.Bedrooms) || p.Bedrooms < 0 {
		details = append(details, "bedrooms must be >= 0")
	}
	if !IsFinite(p.Bathrooms) || p.Bathrooms <= 0 {
		details = append(details, "bathrooms must be > 0")
	}
	if !IsFinite(p.SquareFeet) || p.SquareFeet <= 0 {
		details = append(details, "squareFeet must be > 0")
	}
	if p.Type == "" {
		details = append(details, "type is required")
	}
	if p.AvailableFrom == "" {
		details = append(details, "availableFrom is required")
	}
	if p.Description == "" {
		details = append(details, "description is required")
	}
	if !lo.Contains(ListingStatuses, p.Status) {
		details = append(details, "status must be available, pending, or leased")
	}
	return details
}

// Record maps a validated payload to listings columns. withLegacySqft mirrors
// square_feet into the pre-rename sqft column while it still exists.
func (p ListingPayload) Record(ownerUserID *int, withLegacySqft bool) goqu.Record {
	var availableUntil, owner interface{}
	if p.AvailableUntil != "" {
		availableUntil = p.AvailableUntil
	}
	if ownerUserID != nil {
		owner = *ownerUserID
	}
	squareFeet := int(math.Round(p.SquareFeet))

	record := goqu.Record{
		"title":              p.Title,
		"address":            p.Address,
		"city":               p.City,
		"price":              int(math.Round(p.Price)),
		"bedrooms":           int(math.Round(p.Bedrooms)),
		"bathrooms":          p.Bathrooms,
		"square_feet":        squareFeet,
		"property_type":      p.Type,
		"images_json":        EncodeStringList(p.Images),
		"amenities_json":     EncodeStringList(p.Amenities),
		"utilities_included": boolToInt(p.UtilitiesIncluded),
		"pets_allowed":       boolToInt(p.PetsAllowed),
		"parking_available":  boolToInt(p.ParkingAvailable),
		"furnished":          boolToInt(p.Furnished),
		"available_from":     p.AvailableFrom,
		"available_until":    availableUntil,
		"owner_name":         p.Owner.Name,
		"owner_email":        p.Owner.Email,
		"owner_phone":        p.Owner.Phone,
		"owner_user_id":      owner,
		"status":             p.Status,
		"lat":                p.Coordinates.Lat,
		"lng":                p.Coordinates.Lng,
		"description":        p.Description,
	}
	if withLegacySqft {
		record["sqft"] = squareFeet
	}
	return record
}

// MergeInto overlays a partial body on the listing. Nested owner and
// coordinates objects are merged key by key rather than replaced.
func (l Listing) MergeInto(body map[string]interface{}) map[string]interface{} {
	encoded, _ := json.Marshal(l)
	merged := map[string]interface{}{}
	_ = json.Unmarshal(encoded, &merged)

	for key, value := range body {
		nested, isObject := value.(map[string]interface{})
		base, baseIsObject := merged[key].(map[string]interface{})
		if (key == "owner" || key == "coordinates") && isObject && baseIsObject {
			for k, v := range nested {
				base[k] = v
			}
			continue
		}
		merged[key] = value
	}
	return merged
}
