package models

import "strings"

type Application struct {
	ID                int     `json:"id" goqu:"skipinsert"`
	Listing_ID        int     `json:"listing_id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             *string `json:"phone"`
	Message           *string `json:"message"`
	Applicant_User_ID *int    `json:"applicant_user_id"`
	Created_At        string  `json:"created_at"`
}

// ApplicationWithListing is an application joined with its listing title for the admin console.
type ApplicationWithListing struct {
	Application
	Listing_Title *string `json:"listing_title" db:"listing_title"`
}

type ApplicationCreate struct {
	ListingID FlexNumber `json:"listingId"`
	Phone     string     `json:"phone"`
	Message   string     `json:"message"`
}

func (a *ApplicationCreate) Normalize() {
	a.Phone = strings.TrimSpace(a.Phone)
	a.Message = strings.TrimSpace(a.Message)
}

// Validate checks the body once the applicant's name and email have been taken from the session.
func (a ApplicationCreate) Validate(name, email string) []string {
	var details []string
	id := float64(a.ListingID)
	if !IsFinite(id) || id <= 0 || id != float64(int(id)) {
		details = append(details, "listingId must be a valid listing id")
	}
	if name == "" {
		details = append(details, "name is required")
	}
	if !strings.Contains(email, "@") {
		details = append(details, "email is invalid")
	}
	return details
}
