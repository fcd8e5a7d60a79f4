package models

type AssetType string

const (
	AssetEgg     AssetType = "egg"
	AssetChicken AssetType = "chicken"
	AssetHen     AssetType = "hen"
	AssetRooster AssetType = "rooster"
	AssetTurkey  AssetType = "turkey"
)

// ComboItem is the purchasable bundle of 3 eggs and 1 chicken.
const ComboItem = "combo"

// MaxActivePerType caps the active quantity of each asset type per account.
const MaxActivePerType = 50

// AssetSpec holds the fixed business constants for one asset type.
type AssetSpec struct {
	UnitCost     float64
	DurationDays int
	DailyYield   float64
}

var assetSpecs = map[AssetType]AssetSpec{
	AssetEgg:     {UnitCost: 5, DurationDays: 28, DailyYield: 0.215},
	AssetChicken: {UnitCost: 25, DurationDays: 25, DailyYield: 1.300},
	AssetHen:     {UnitCost: 70, DurationDays: 22, DailyYield: 4.270},
	AssetRooster: {UnitCost: 99, DurationDays: 20, DailyYield: 7.425},
	AssetTurkey:  {UnitCost: 6, DurationDays: 10, DailyYield: 1.000},
}

// ComboCost buys ComboEggs eggs plus ComboChickens chickens as one atomic grant.
const (
	ComboCost     float64 = 35
	ComboEggs             = 3
	ComboChickens         = 1
)

func AssetTypes() []AssetType {
	return []AssetType{AssetEgg, AssetChicken, AssetHen, AssetRooster, AssetTurkey}
}

func SpecFor(t AssetType) (AssetSpec, bool) {
	s, ok := assetSpecs[t]
	return s, ok
}

func ValidAssetType(t AssetType) bool {
	_, ok := assetSpecs[t]
	return ok
}
