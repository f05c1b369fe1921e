package booking

import "math"

// VehicleBucket is a discrete vehicle-value tier driving franchise amounts.
type VehicleBucket string

const (
	BucketEconomy VehicleBucket = "economy"
	BucketDefault VehicleBucket = "default"
	BucketPremium VehicleBucket = "premium"
	BucketLuxury  VehicleBucket = "luxury"
)

// fallbackVehicleValueUsd is assumed when no usable valuation or nightly rate
// is available. Lands in the default bucket.
const fallbackVehicleValueUsd = 12_500

// nightlyRateValueMultiplier estimates vehicle value from the nightly rate
// when no explicit valuation exists.
const nightlyRateValueMultiplier = 125

// walletCreditValueThresholdUsd splits the two wallet security credit amounts.
const walletCreditValueThresholdUsd = 20_000

// bucketThresholds maps estimated vehicle value to a bucket. Entries must stay
// sorted ascending by maxValueUsd and the last entry must be +Inf so every
// value resolves; the first entry with maxValueUsd >= value wins.
var bucketThresholds = []struct {
	maxValueUsd          float64
	bucket               VehicleBucket
	standardDeductibleUsd float64
}{
	{10_000, BucketEconomy, 500},
	{20_000, BucketDefault, 800},
	{40_000, BucketPremium, 1200},
	{math.Inf(1), BucketLuxury, 1800},
}

// bucketOrder ranks buckets for comparisons (economy < default < premium < luxury).
var bucketOrder = map[VehicleBucket]int{
	BucketEconomy: 0,
	BucketDefault: 1,
	BucketPremium: 2,
	BucketLuxury:  3,
}

// Compare returns -1, 0 or 1 comparing two buckets by risk order.
func (b VehicleBucket) Compare(other VehicleBucket) int {
	switch {
	case bucketOrder[b] < bucketOrder[other]:
		return -1
	case bucketOrder[b] > bucketOrder[other]:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the bucket.
func (b VehicleBucket) String() string { return string(b) }

// FranchiseInfo carries the deductible figures derived for a vehicle value.
// Immutable once computed.
type FranchiseInfo struct {
	Bucket                VehicleBucket `json:"bucket"`
	EstimatedCarValueUsd  float64       `json:"estimated_car_value_usd"`
	StandardDeductibleUsd float64       `json:"standard_deductible_usd"`
	RolloverDeductibleUsd float64       `json:"rollover_deductible_usd"`
	WalletCreditUsd       float64       `json:"wallet_credit_usd"`
	HoldMinimumArs        float64       `json:"hold_minimum_ars"`
}

// StandardDeductibleCents returns the standard deductible in cents.
func (f FranchiseInfo) StandardDeductibleCents() int64 {
	return int64(math.Round(f.StandardDeductibleUsd * 100))
}

// EstimateVehicleValue resolves the effective vehicle value in USD with a
// documented precedence: explicit valuation, then nightly rate x 125, then
// the 12,500 USD fallback. Non-finite and non-positive inputs are skipped.
func EstimateVehicleValue(valueUsd, nightlyRateUsd float64) float64 {
	if isUsableValue(valueUsd) {
		return valueUsd
	}
	if isUsableValue(nightlyRateUsd) {
		return nightlyRateUsd * nightlyRateValueMultiplier
	}
	return fallbackVehicleValueUsd
}

func isUsableValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// ResolveBucket maps an estimated vehicle value to its bucket. Values that are
// not usable fall back to the default assumption before bucketing.
func ResolveBucket(estimatedValueUsd float64) VehicleBucket {
	if !isUsableValue(estimatedValueUsd) {
		estimatedValueUsd = fallbackVehicleValueUsd
	}
	for _, t := range bucketThresholds {
		if t.maxValueUsd >= estimatedValueUsd {
			return t.bucket
		}
	}
	// Unreachable: the last threshold is +Inf.
	return BucketLuxury
}

// BuildFranchiseInfo derives the franchise figures for an estimated vehicle
// value. The rollover deductible is always exactly twice the standard one.
func BuildFranchiseInfo(estimatedValueUsd float64) FranchiseInfo {
	if !isUsableValue(estimatedValueUsd) {
		estimatedValueUsd = fallbackVehicleValueUsd
	}

	var standard float64
	bucket := BucketLuxury
	for _, t := range bucketThresholds {
		if t.maxValueUsd >= estimatedValueUsd {
			bucket = t.bucket
			standard = t.standardDeductibleUsd
			break
		}
	}

	walletCredit := float64(500)
	if estimatedValueUsd <= walletCreditValueThresholdUsd {
		walletCredit = 300
	}

	return FranchiseInfo{
		Bucket:                bucket,
		EstimatedCarValueUsd:  estimatedValueUsd,
		StandardDeductibleUsd: standard,
		RolloverDeductibleUsd: standard * 2,
		WalletCreditUsd:       walletCredit,
		HoldMinimumArs:        holdMinimumArsFor(bucket),
	}
}

// holdMinimumArsFor is a per-bucket override point for a local-currency hold
// floor. All buckets sit at zero today pending a per-market decision.
func holdMinimumArsFor(bucket VehicleBucket) float64 {
	switch bucket {
	case BucketEconomy, BucketDefault, BucketPremium, BucketLuxury:
		return 0
	default:
		return 0
	}
}

// FranchiseForVehicle resolves the franchise for a vehicle snapshot, applying
// the valuation precedence.
func FranchiseForVehicle(v VehicleSnapshot) FranchiseInfo {
	return BuildFranchiseInfo(EstimateVehicleValue(v.ValueUsd, v.NightlyRateUsd()))
}
