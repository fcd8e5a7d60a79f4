package services

import (
	"github.com/saske7779/Web-app-granja/internal/models"
)

// YieldFor returns the daily income produced by the given active quantities.
// Pure: the balance preview endpoint and the distribution job both rely on it
// returning identical results for identical inputs.
func YieldFor(quantities map[models.AssetType]int) float64 {
	var total float64
	for t, q := range quantities {
		if q <= 0 {
			continue
		}
		spec, ok := models.SpecFor(t)
		if !ok {
			continue
		}
		total += float64(q) * spec.DailyYield
	}
	return total
}

// DailyReferralIncome maps a referral count to the daily bonus credited on
// top of asset yield. Capped at 1.00.
func DailyReferralIncome(count int) float64 {
	income := float64(count) / 10 * 0.01
	if income > 1.00 {
		return 1.00
	}
	return income
}
