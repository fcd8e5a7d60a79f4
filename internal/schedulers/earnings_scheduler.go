package schedulers

import (
	"context"
	"time"

	"github.com/saske7779/Web-app-granja/internal/config"
	"github.com/saske7779/Web-app-granja/internal/services"
)

var log = config.InitLogger()

// DistributeEarnings returns the cron job body for the daily distribution.
func DistributeEarnings(es *services.EarningsService) func() {
	return func() {
		period := services.PeriodKey(time.Now())
		credited, err := es.Distribute(context.Background(), period)
		if err != nil {
			log.Error("Earnings distribution failed: ", err)
			return
		}
		log.Infof("Earnings distributed to %d accounts for period %s", credited, period)
	}
}

// RefreshReferralIncome returns the hourly job body recomputing cached
// referral income from live edge counts.
func RefreshReferralIncome(rs *services.ReferralService) func() {
	return func() {
		updated, err := rs.RefreshAll(context.Background())
		if err != nil {
			log.Error("Referral income refresh failed: ", err)
			return
		}
		log.Infof("Referral income refreshed, %d accounts updated", updated)
	}
}

// PurgeExpiredLots returns the job body reaping lots past their expiry.
func PurgeExpiredLots(ls *services.LotService) func() {
	return func() {
		purged, err := ls.PurgeExpired(context.Background())
		if err != nil {
			log.Error("Expired lot purge failed: ", err)
			return
		}
		log.Infof("Purged %d expired lots", purged)
	}
}
