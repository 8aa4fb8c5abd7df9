package controllers

import (
	"github.com/CampusLease/models"
	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

const fixtureTimestamp = "2026-01-15 10:30:00"

// MockUser creates a sample signed-in user for testing
func MockUser() models.User {
	return models.User{
		ID:         1,
		Name:       "Test User",
		Email:      "test@example.com",
		Created_At: fixtureTimestamp,
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password
// Password is "password123" - use this in tests
func MockUserWithPassword() models.User {
	user := MockUser()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user.Password_Hash = string(hashedPassword)
	return user
}

// MockOtherUser is a second account that owns nothing of MockUser's
func MockOtherUser() models.User {
	return models.User{
		ID:         2,
		Name:       "Other User",
		Email:      "other@example.com",
		Created_At: fixtureTimestamp,
	}
}

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userColumns)
	for _, u := range users {
		rows.AddRow(u.ID, u.Name, u.Email, u.Password_Hash, u.Created_At)
	}
	return rows
}

var listingColumns = []string{
	"id", "title", "address", "city", "price", "bedrooms", "bathrooms", "square_feet",
	"property_type", "images_json", "amenities_json", "utilities_included", "pets_allowed",
	"parking_available", "furnished", "available_from", "available_until", "owner_name",
	"owner_email", "owner_phone", "owner_user_id", "status", "lat", "lng", "description",
	"created_at", "updated_at",
}

// MockListingRow creates a stored listing owned by ownerUserID (nil for an unowned listing)
func MockListingRow(id int, ownerUserID *int) models.ListingRow {
	return models.ListingRow{
		ID:                 id,
		Title:              "Sunny studio near campus",
		Address:            "4512 University Way NE",
		City:               "Seattle",
		Price:              1450,
		Bedrooms:           1,
		Bathrooms:          1,
		Square_Feet:        520,
		Property_Type:      "Studio",
		Images_JSON:        `["https://images.example.com/studio.jpg"]`,
		Amenities_JSON:     `["Laundry","WiFi"]`,
		Utilities_Included: 1,
		Pets_Allowed:       0,
		Parking_Available:  0,
		Furnished:          1,
		Available_From:     "2026-09-01",
		Owner_Name:         "Test User",
		Owner_Email:        "test@example.com",
		Owner_Phone:        "206-555-0100",
		Owner_User_ID:      ownerUserID,
		Status:             "available",
		Lat:                47.6615,
		Lng:                -122.3128,
		Description:        "Bright studio two blocks from the Ave.",
		Created_At:         fixtureTimestamp,
		Updated_At:         fixtureTimestamp,
	}
}

func listingRows(listings ...models.ListingRow) *sqlmock.Rows {
	rows := sqlmock.NewRows(listingColumns)
	for _, l := range listings {
		rows.AddRow(
			l.ID, l.Title, l.Address, l.City, l.Price, l.Bedrooms, l.Bathrooms, l.Square_Feet,
			l.Property_Type, l.Images_JSON, l.Amenities_JSON, l.Utilities_Included, l.Pets_Allowed,
			l.Parking_Available, l.Furnished, l.Available_From, nullable(l.Available_Until), l.Owner_Name,
			l.Owner_Email, l.Owner_Phone, nullable(l.Owner_User_ID), l.Status, l.Lat, l.Lng, l.Description,
			l.Created_At, l.Updated_At,
		)
	}
	return rows
}

// validListingBody is a create/update body that passes validation
func validListingBody() map[string]interface{} {
	return map[string]interface{}{
		"title":         "Sunny studio near campus",
		"address":       "4512 University Way NE",
		"city":          "Seattle",
		"price":         "1,450",
		"bedrooms":      1,
		"bathrooms":     1,
		"squareFeet":    520,
		"type":          "Studio",
		"images":        []string{"https://images.example.com/studio.jpg"},
		"amenities":     []string{"Laundry", "WiFi"},
		"furnished":     true,
		"availableFrom": "2026-09-01",
		"owner":         map[string]interface{}{"name": "Spoofed", "email": "spoof@example.com", "phone": "206-555-0100"},
		"description":   "Bright studio two blocks from the Ave.",
	}
}

var threadColumns = []string{
	"id", "property_id", "property_title", "participant_name", "participant_email",
	"owner_user_id", "created_at", "updated_at",
}

var messageColumns = []string{
	"id", "thread_id", "sender", "sender_email", "recipient", "recipient_email",
	"content", "sender_user_id", "created_at", "read",
}

var roommateColumns = []string{
	"id", "user_id", "name", "age", "gender", "university", "major", "bio", "photo",
	"budget_min", "budget_max", "move_in_date", "preferred_locations_json", "sleep_schedule",
	"cleanliness", "noise", "guests", "smoking", "drinking", "pets", "study_habits",
	"social_level", "interests_json", "created_at", "updated_at",
}

// MockRoommateRow creates a stored roommate profile with the given habits
func MockRoommateRow(id, userID int, name, sleep, cleanliness string, interests string) models.RoommateProfileRow {
	return models.RoommateProfileRow{
		ID:                       id,
		User_ID:                  userID,
		Name:                     name,
		Age:                      21,
		Gender:                   "Female",
		University:               "University of Washington",
		Major:                    "Computer Science",
		Budget_Min:               800,
		Budget_Max:               1200,
		Move_In_Date:             "2026-09-01",
		Preferred_Locations_JSON: `["U District"]`,
		Sleep_Schedule:           sleep,
		Cleanliness:              cleanliness,
		Noise:                    "Quiet",
		Guests:                   "Rarely",
		Smoking:                  "No",
		Drinking:                 "No",
		Pets:                     "No Pets",
		Study_Habits:             "Focused",
		Social_Level:             "Low-key",
		Interests_JSON:           interests,
		Created_At:               fixtureTimestamp,
		Updated_At:               fixtureTimestamp,
	}
}

func roommateRows(profiles ...models.RoommateProfileRow) *sqlmock.Rows {
	rows := sqlmock.NewRows(roommateColumns)
	for _, p := range profiles {
		rows.AddRow(
			p.ID, p.User_ID, p.Name, p.Age, p.Gender, p.University, p.Major, p.Bio, nullable(p.Photo),
			p.Budget_Min, p.Budget_Max, p.Move_In_Date, p.Preferred_Locations_JSON, p.Sleep_Schedule,
			p.Cleanliness, p.Noise, p.Guests, p.Smoking, p.Drinking, p.Pets, p.Study_Habits,
			p.Social_Level, p.Interests_JSON, p.Created_At, p.Updated_At,
		)
	}
	return rows
}

func intPtr(i int) *int {
	return &i
}

// nullable turns a nil pointer into a NULL column value for sqlmock rows
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
