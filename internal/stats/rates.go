package stats

import (
	"math"

	"github.com/roach88/snooker/internal/model"
)

// percent returns part/whole as a percentage rounded to one decimal.
// A zero whole yields 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// PotPercentage is pots over pot attempts.
func PotPercentage(ps *model.PlayerStatistics) float64 {
	return percent(ps.Shots.Potted, ps.Shots.Total)
}

// RestPotPercentage is pots over attempts with the rest.
func RestPotPercentage(ps *model.PlayerStatistics) float64 {
	return percent(ps.RestShots.Successful, ps.RestShots.Attempted)
}

// SafetySuccessRate is held safeties over safeties played.
func SafetySuccessRate(ps *model.PlayerStatistics) float64 {
	return percent(ps.Safeties.Successful, ps.Safeties.Attempted)
}

// EscapeSuccessRate is successful escapes over escape attempts.
func EscapeSuccessRate(ps *model.PlayerStatistics) float64 {
	return percent(ps.Escapes.Successful, ps.Escapes.Attempted)
}

// AverageShotTime is the mean shot time in seconds.
func AverageShotTime(ps *model.PlayerStatistics) float64 {
	if ps.Shots.Total == 0 {
		return 0
	}
	return round1(float64(ps.TotalShotTime) / float64(ps.Shots.Total) / 1000)
}

// PointsPerVisit is total points over visits to the table.
func PointsPerVisit(ps *model.PlayerStatistics) float64 {
	if ps.Visits == 0 {
		return 0
	}
	return round1(float64(ps.TotalPoints) / float64(ps.Visits))
}

// BallPotPercentage is pots over attempts on one color.
func BallPotPercentage(t model.BallTally) float64 {
	return percent(t.Potted, t.Attempted)
}
