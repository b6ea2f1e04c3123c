package route

import "fmt"

// FormatDistance renders meters as "12.34 km" at or above one kilometer,
// otherwise "850 m".
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.2f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}

// FormatDuration renders seconds as "2 hr 15 min" at or above one hour,
// otherwise "42 min".
func FormatDuration(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// FormatCost renders a trip cost, using "Free" for zero.
func FormatCost(cost float64) string {
	if cost == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", cost)
}
