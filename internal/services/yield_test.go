package services

import (
	"testing"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestYieldFor(t *testing.T) {
	t.Run("empty farm yields nothing", func(t *testing.T) {
		assert.Zero(t, YieldFor(map[models.AssetType]int{}))
	})

	t.Run("single types", func(t *testing.T) {
		assert.InDelta(t, 0.215, YieldFor(map[models.AssetType]int{models.AssetEgg: 1}), 1e-9)
		assert.InDelta(t, 1.300, YieldFor(map[models.AssetType]int{models.AssetChicken: 1}), 1e-9)
		assert.InDelta(t, 4.270, YieldFor(map[models.AssetType]int{models.AssetHen: 1}), 1e-9)
		assert.InDelta(t, 7.425, YieldFor(map[models.AssetType]int{models.AssetRooster: 1}), 1e-9)
		assert.InDelta(t, 1.000, YieldFor(map[models.AssetType]int{models.AssetTurkey: 1}), 1e-9)
	})

	t.Run("mixed farm", func(t *testing.T) {
		got := YieldFor(map[models.AssetType]int{
			models.AssetEgg:     2,
			models.AssetChicken: 1,
		})
		assert.InDelta(t, 1.73, got, 1e-9)
	})

	t.Run("negative and unknown entries are ignored", func(t *testing.T) {
		got := YieldFor(map[models.AssetType]int{
			models.AssetEgg:       -5,
			models.AssetType("x"): 10,
		})
		assert.Zero(t, got)
	})
}

func TestDailyReferralIncome(t *testing.T) {
	assert.Zero(t, DailyReferralIncome(0))
	assert.InDelta(t, 0.001, DailyReferralIncome(1), 1e-9)
	assert.InDelta(t, 0.01, DailyReferralIncome(10), 1e-9)
	assert.InDelta(t, 0.5, DailyReferralIncome(500), 1e-9)
	assert.InDelta(t, 1.00, DailyReferralIncome(1000), 1e-9)

	// capped
	assert.InDelta(t, 1.00, DailyReferralIncome(5000), 1e-9)
}
