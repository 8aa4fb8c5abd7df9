package models

import (
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/samber/lo"
)

var (
	SleepSchedules    = []string{"Early Bird", "Night Owl", "Flexible"}
	CleanlinessLevels = []string{"Very Clean", "Moderately Clean", "Relaxed"}
	NoiseLevels       = []string{"Quiet", "Moderate", "Lively"}
	GuestFrequencies  = []string{"Rarely", "Sometimes", "Often"}
	SmokingOptions    = []string{"No", "Yes"}
	DrinkingOptions   = []string{"No", "Yes", "Sometimes"}
	PetOptions        = []string{"No Pets", "Has Pets", "Open to Pets"}
	StudyHabits       = []string{"Focused", "Balanced", "Flexible"}
	SocialLevels      = []string{"Low-key", "Social", "Very Social"}
)

// RoommatePreferences is the part of a profile the compatibility score reads.
type RoommatePreferences struct {
	SleepSchedule string
	Cleanliness   string
	Noise         string
	SocialLevel   string
	StudyHabits   string
	Smoking       string
	Pets          string
	Interests     []string
}

type RoommateProfileRow struct {
	ID                       int `goqu:"skipinsert"`
	User_ID                  int
	Name                     string
	Age                      int
	Gender                   string
	University               string
	Major                    string
	Bio                      string
	Photo                    *string
	Budget_Min               int
	Budget_Max               int
	Move_In_Date             string
	Preferred_Locations_JSON string
	Sleep_Schedule           string
	Cleanliness              string
	Noise                    string
	Guests                   string
	Smoking                  string
	Drinking                 string
	Pets                     string
	Study_Habits             string
	Social_Level             string
	Interests_JSON           string
	Created_At               string
	Updated_At               string
}

type RoommateProfile struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"userId"`
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Gender             string   `json:"gender"`
	University         string   `json:"university"`
	Major              string   `json:"major"`
	Bio                string   `json:"bio"`
	Photo              string   `json:"photo,omitempty"`
	BudgetMin          int      `json:"budgetMin"`
	BudgetMax          int      `json:"budgetMax"`
	MoveInDate         string   `json:"moveInDate"`
	PreferredLocations []string `json:"preferredLocations"`
	SleepSchedule      string   `json:"sleepSchedule"`
	Cleanliness        string   `json:"cleanliness"`
	Noise              string   `json:"noise"`
	Guests             string   `json:"guests"`
	Smoking            string   `json:"smoking"`
	Drinking           string   `json:"drinking"`
	Pets               string   `json:"pets"`
	StudyHabits        string   `json:"studyHabits"`
	SocialLevel        string   `json:"socialLevel"`
	Interests          []string `json:"interests"`
	CompatibilityScore *int     `json:"compatibilityScore,omitempty"`
}

func (row RoommateProfileRow) ToProfile() RoommateProfile {
	return RoommateProfile{
		ID:                 strconv.Itoa(row.ID),
		UserID:             strconv.Itoa(row.User_ID),
		Name:               row.Name,
		Age:                row.Age,
		Gender:             row.Gender,
		University:         row.University,
		Major:              row.Major,
		Bio:                row.Bio,
		Photo:              lo.FromPtr(row.Photo),
		BudgetMin:          row.Budget_Min,
		BudgetMax:          row.Budget_Max,
		MoveInDate:         row.Move_In_Date,
		PreferredLocations: DecodeStringList(row.Preferred_Locations_JSON),
		SleepSchedule:      row.Sleep_Schedule,
		Cleanliness:        row.Cleanliness,
		Noise:              row.Noise,
		Guests:             row.Guests,
		Smoking:            row.Smoking,
		Drinking:           row.Drinking,
		Pets:               row.Pets,
		StudyHabits:        row.Study_Habits,
		SocialLevel:        row.Social_Level,
		Interests:          DecodeStringList(row.Interests_JSON),
	}
}

func (p RoommateProfile) Preferences() RoommatePreferences {
	return RoommatePreferences{
		SleepSchedule: p.SleepSchedule,
		Cleanliness:   p.Cleanliness,
		Noise:         p.Noise,
		SocialLevel:   p.SocialLevel,
		StudyHabits:   p.StudyHabits,
		Smoking:       p.Smoking,
		Pets:          p.Pets,
		Interests:     p.Interests,
	}
}

type RoommateProfileInput struct {
	Name               string     `json:"name"`
	Age                FlexNumber `json:"age"`
	Gender             string     `json:"gender"`
	University         string     `json:"university"`
	Major              string     `json:"major"`
	Bio                string     `json:"bio"`
	Photo              string     `json:"photo"`
	BudgetMin          FlexNumber `json:"budgetMin"`
	BudgetMax          FlexNumber `json:"budgetMax"`
	MoveInDate         string     `json:"moveInDate"`
	PreferredLocations []string   `json:"preferredLocations"`
	SleepSchedule      string     `json:"sleepSchedule"`
	Cleanliness        string     `json:"cleanliness"`
	Noise              string     `json:"noise"`
	Guests             string     `json:"guests"`
	Smoking            string     `json:"smoking"`
	Drinking           string     `json:"drinking"`
	Pets               string     `json:"pets"`
	StudyHabits        string     `json:"studyHabits"`
	SocialLevel        string     `json:"socialLevel"`
	Interests          []string   `json:"interests"`
}

func cleanList(items []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}

func (in *RoommateProfileInput) Normalize() {
	for _, field := range []*string{
		&in.Name, &in.Gender, &in.University, &in.Major, &in.Bio, &in.Photo, &in.MoveInDate,
		&in.SleepSchedule, &in.Cleanliness, &in.Noise, &in.Guests, &in.Smoking, &in.Drinking,
		&in.Pets, &in.StudyHabits, &in.SocialLevel,
	} {
		*field = strings.TrimSpace(*field)
	}
	in.PreferredLocations = cleanList(in.PreferredLocations)
	in.Interests = cleanList(in.Interests)
}

func (in RoommateProfileInput) Validate() []string {
	var details []string
	if in.Name == "" {
		details = append(details, "name is required")
	}
	if age := float64(in.Age); !IsFinite(age) || age < 16 || age > 120 {
		details = append(details, "age must be between 16 and 120")
	}
	budgetMin, budgetMax := float64(in.BudgetMin), float64(in.BudgetMax)
	if !IsFinite(budgetMin) || budgetMin < 0 {
		details = append(details, "budgetMin must be >= 0")
	}
	if !IsFinite(budgetMax) || budgetMax < budgetMin {
		details = append(details, "budgetMax must be >= budgetMin")
	}

	enums := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"sleepSchedule", in.SleepSchedule, SleepSchedules},
		{"cleanliness", in.Cleanliness, CleanlinessLevels},
		{"noise", in.Noise, NoiseLevels},
		{"guests", in.Guests, GuestFrequencies},
		{"smoking", in.Smoking, SmokingOptions},
		{"drinking", in.Drinking, DrinkingOptions},
		{"pets", in.Pets, PetOptions},
		{"studyHabits", in.StudyHabits, StudyHabits},
		{"socialLevel", in.SocialLevel, SocialLevels},
	}
	for _, e := range enums {
		if !lo.Contains(e.allowed, e.value) {
			details = append(details, e.field+" must be one of: "+strings.Join(e.allowed, ", "))
		}
	}
	return details
}

// Record maps a validated profile to roommate_profiles columns, excluding user_id and timestamps.
func (in RoommateProfileInput) Record() goqu.Record {
	var photo interface{}
	if in.Photo != "" {
		photo = in.Photo
	}
	return goqu.Record{
		"name":                     in.Name,
		"age":                      int(in.Age),
		"gender":                   in.Gender,
		"university":               in.University,
		"major":                    in.Major,
		"bio":                      in.Bio,
		"photo":                    photo,
		"budget_min":               int(in.BudgetMin),
		"budget_max":               int(in.BudgetMax),
		"move_in_date":             in.MoveInDate,
		"preferred_locations_json": EncodeStringList(in.PreferredLocations),
		"sleep_schedule":           in.SleepSchedule,
		"cleanliness":              in.Cleanliness,
		"noise":                    in.Noise,
		"guests":                   in.Guests,
		"smoking":                  in.Smoking,
		"drinking":                 in.Drinking,
		"pets":                     in.Pets,
		"study_habits":             in.StudyHabits,
		"social_level":             in.SocialLevel,
		"interests_json":           EncodeStringList(in.Interests),
	}
}
