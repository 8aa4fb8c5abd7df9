package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/samber/lo"
)

// RoommateFilter narrows a ranked roommate list. Zero values are not applied.
type RoommateFilter struct {
	MinScore   *int
	Gender     string
	University string
	MaxBudget  *int
	Pets       string
	Smoking    string
}

func (f RoommateFilter) matches(p models.RoommateProfile, scored bool) bool {
	if scored && f.MinScore != nil && lo.FromPtr(p.CompatibilityScore) < *f.MinScore {
		return false
	}
	if f.Gender != "" && !strings.EqualFold(p.Gender, f.Gender) {
		return false
	}
	if f.University != "" && !strings.Contains(strings.ToLower(p.University), strings.ToLower(f.University)) {
		return false
	}
	if f.MaxBudget != nil && p.BudgetMin > *f.MaxBudget {
		return false
	}
	if f.Pets != "" && !strings.EqualFold(p.Pets, f.Pets) {
		return false
	}
	if f.Smoking != "" && !strings.EqualFold(p.Smoking, f.Smoking) {
		return false
	}
	return true
}

// RankRoommates scores every candidate against me, filters, and orders the
// result best match first. Without a profile for me nothing is scored and the
// list is ordered by name.
func RankRoommates(me *models.RoommateProfile, candidates []models.RoommateProfile, filter RoommateFilter) []models.RoommateProfile {
	scored := me != nil
	ranked := make([]models.RoommateProfile, 0, len(candidates))
	for _, candidate := range candidates {
		if scored {
			candidate.CompatibilityScore = lo.ToPtr(CalculateCompatibility(me.Preferences(), candidate.Preferences()))
		}
		if filter.matches(candidate, scored) {
			ranked = append(ranked, candidate)
		}
	}

	slices.SortStableFunc(ranked, func(a, b models.RoommateProfile) int {
		return cmp.Or(
			cmp.Compare(lo.FromPtr(b.CompatibilityScore), lo.FromPtr(a.CompatibilityScore)),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return ranked
}

// GetRoommateProfile returns nil without an error when the user has no profile.
func GetRoommateProfile(userID int) (*models.RoommateProfile, error) {
	return findRoommateProfile(goqu.C("user_id").Eq(userID))
}

// GetRoommateProfileByID returns nil without an error when no profile has the id.
func GetRoommateProfileByID(profileID int) (*models.RoommateProfile, error) {
	return findRoommateProfile(goqu.C("id").Eq(profileID))
}

func findRoommateProfile(where goqu.Expression) (*models.RoommateProfile, error) {
	var row models.RoommateProfileRow
	found, err := initializers.DB.From("roommate_profiles").Where(where).ScanStruct(&row)
	if err != nil {
		return nil, fmt.Errorf("loading roommate profile: %w", err)
	}
	if !found {
		return nil, nil
	}
	profile := row.ToProfile()
	return &profile, nil
}

// ListRoommateProfiles returns every profile except the one owned by excludeUserID.
func ListRoommateProfiles(excludeUserID int) ([]models.RoommateProfile, error) {
	var rows []models.RoommateProfileRow
	err := initializers.DB.From("roommate_profiles").
		Where(goqu.C("user_id").Neq(excludeUserID)).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		ScanStructs(&rows)
	if err != nil {
		return nil, fmt.Errorf("listing roommate profiles: %w", err)
	}
	return lo.Map(rows, func(row models.RoommateProfileRow, _ int) models.RoommateProfile {
		return row.ToProfile()
	}), nil
}

// UpsertRoommateProfile replaces the user's profile wholesale, creating it on first save.
func UpsertRoommateProfile(userID int, record goqu.Record) (*models.RoommateProfile, error) {
	now := initializers.NowTimestamp()
	record["updated_at"] = now

	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		var existingID int
		found, err := tx.From("roommate_profiles").
			Select("id").
			Where(goqu.C("user_id").Eq(userID)).
			ScanVal(&existingID)
		if err != nil {
			return err
		}

		if found {
			_, err = tx.Update("roommate_profiles").
				Set(record).
				Where(goqu.C("id").Eq(existingID)).
				Executor().Exec()
			return err
		}

		record["user_id"] = userID
		record["created_at"] = now
		_, err = tx.Insert("roommate_profiles").Rows(record).Executor().Exec()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving roommate profile of user %d: %w", userID, err)
	}

	profile, err := GetRoommateProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("roommate profile of user %d missing after save", userID)
	}
	return profile, nil
}
