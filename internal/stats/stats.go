// Package stats computes the descriptive statistics shown on dashboards.
// Everything is recomputed per request from the query result; at expected
// data volumes that is cheaper than maintaining aggregates.
package stats

import (
	"math"

	"glucolog/internal/entity"
)

// Summary is the stats contract consumed by the dashboard views.
type Summary struct {
	TotalReadings int     `json:"total_readings"`
	AvgSugar      float64 `json:"avg_sugar"`
	MinSugar      int     `json:"min_sugar"`
	MaxSugar      int     `json:"max_sugar"`
	BeforeAvg     float64 `json:"before_avg"`
	AfterAvg      float64 `json:"after_avg"`
}

// AdminOverview extends Summary with account counts for the admin dashboard.
type AdminOverview struct {
	TotalUsers    int64   `json:"total_users"`
	ActiveUsers   int64   `json:"active_users"`
	TotalReadings int64   `json:"total_readings"`
	AvgSugar      float64 `json:"avg_sugar"`
	BeforeAvg     float64 `json:"before_avg"`
	AfterAvg      float64 `json:"after_avg"`
}

// Summarize aggregates a set of readings. Empty input yields all zeros.
// Readings whose meal relation is neither "Before Food" nor "After Food"
// count towards the overall figures but are excluded from both partitions.
func Summarize(readings []entity.DbReading) Summary {
	if len(readings) == 0 {
		return Summary{}
	}

	sum := 0
	minSugar := readings[0].SugarValue
	maxSugar := readings[0].SugarValue
	beforeSum, beforeCount := 0, 0
	afterSum, afterCount := 0, 0

	for _, r := range readings {
		sum += r.SugarValue
		if r.SugarValue < minSugar {
			minSugar = r.SugarValue
		}
		if r.SugarValue > maxSugar {
			maxSugar = r.SugarValue
		}
		switch r.MealRelation {
		case entity.MealBeforeFood:
			beforeSum += r.SugarValue
			beforeCount++
		case entity.MealAfterFood:
			afterSum += r.SugarValue
			afterCount++
		}
	}

	return Summary{
		TotalReadings: len(readings),
		AvgSugar:      round1(float64(sum) / float64(len(readings))),
		MinSugar:      minSugar,
		MaxSugar:      maxSugar,
		BeforeAvg:     partitionAvg(beforeSum, beforeCount),
		AfterAvg:      partitionAvg(afterSum, afterCount),
	}
}

func partitionAvg(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return round1(float64(sum) / float64(count))
}

// round1 rounds to one decimal place for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
