package services

import (
	"github.com/CampusLease/models"
	"github.com/samber/lo"
)

const (
	MaxCompatibilityScore = 100

	interestPoints   = 3
	maxInterestBonus = 15
)

type preferenceWeight struct {
	weight int
	value  func(models.RoommatePreferences) string
}

// preferenceWeights sum to 80. With the interest bonus the highest reachable
// score is 95; MaxCompatibilityScore is only a ceiling.
var preferenceWeights = []preferenceWeight{
	{15, func(p models.RoommatePreferences) string { return p.SleepSchedule }},
	{15, func(p models.RoommatePreferences) string { return p.Cleanliness }},
	{10, func(p models.RoommatePreferences) string { return p.Noise }},
	{10, func(p models.RoommatePreferences) string { return p.SocialLevel }},
	{10, func(p models.RoommatePreferences) string { return p.StudyHabits }},
	{10, func(p models.RoommatePreferences) string { return p.Smoking }},
	{10, func(p models.RoommatePreferences) string { return p.Pets }},
}

// CalculateCompatibility scores two roommate profiles from 0 to 100. Each
// preference that matches exactly adds its weight, and every interest the two
// share adds 3 points up to 15. Interests are compared as sets, so the score is
// the same in both directions.
func CalculateCompatibility(a, b models.RoommatePreferences) int {
	score := 0
	for _, w := range preferenceWeights {
		if w.value(a) == w.value(b) {
			score += w.weight
		}
	}

	shared := lo.Intersect(lo.Uniq(a.Interests), lo.Uniq(b.Interests))
	score += min(len(shared)*interestPoints, maxInterestBonus)

	return min(score, MaxCompatibilityScore)
}
