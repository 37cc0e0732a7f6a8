// Package tenure computes donor membership duration and certificate
// eligibility from a profile's creation timestamp.
//
// Everything here is pure: the current time is always passed in, never read
// from the clock, so callers and tests control both inputs.
package tenure

import (
	"fmt"
	"math"
	"time"
)

// EligibilityDays is the minimum membership length, in days, before an
// admin may issue an annual certificate for a donor.
const EligibilityDays = 365

// Info is the result of a tenure calculation.
type Info struct {
	ElapsedDays int    `json:"elapsedDays"`
	Eligible    bool   `json:"eligible"`
	Display     string `json:"display"`
}

// Calculate returns the elapsed membership duration between createdAt and
// now, the annual-certificate eligibility flag, and a human-readable
// rendering ("42 days" under a year, "1.3 years" at or above).
//
// The difference is taken as an absolute value and rounded up to whole
// days, so a createdAt slightly in the future (clock skew between the
// client and the store) never yields negative tenure.
func Calculate(createdAt, now time.Time) Info {
	diff := now.Sub(createdAt)
	if diff < 0 {
		diff = -diff
	}

	days := int(math.Ceil(diff.Hours() / 24))

	info := Info{
		ElapsedDays: days,
		Eligible:    days >= EligibilityDays,
	}

	if years := float64(days) / 365; years >= 1 {
		info.Display = fmt.Sprintf("%.1f years", years)
	} else {
		info.Display = fmt.Sprintf("%d days", days)
	}

	return info
}
