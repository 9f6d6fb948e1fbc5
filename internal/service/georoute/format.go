package georoute

import (
	"fmt"
	"math"
)

// Route distance categories.
const (
	CategoryUrban    = "urban"
	CategoryRegional = "regional"
	CategoryLongHaul = "long_haul"
)

// FormatDuration renders seconds as "5h 0min" or "45min" for sub-hour trips.
func FormatDuration(seconds float64) string {
	totalMinutes := int(math.Round(seconds / 60))
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}

// Categorize buckets a route by road distance.
func Categorize(distanceKm float64) string {
	switch {
	case distanceKm < 50:
		return CategoryUrban
	case distanceKm < 300:
		return CategoryRegional
	default:
		return CategoryLongHaul
	}
}
