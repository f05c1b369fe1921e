package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoCoverage(t *testing.T) {
	check := NoCoverage(80_000, "unauthenticated")

	assert.False(t, check.HasCoverage)
	assert.Equal(t, CoverageNone, check.CoverageType)
	assert.Equal(t, "unauthenticated", check.Reason)
	assert.Equal(t, int64(80_000), check.DepositRequiredCents)
	assert.Equal(t, int64(80_000), check.UncoveredCents)
	assert.Zero(t, check.CoveredCents)
	assert.Zero(t, check.AvailableCents)
}

func TestReduceCoverageSwallowsErrors(t *testing.T) {
	check := ReduceCoverage(80_000, nil, errors.New("ledger down"))

	assert.False(t, check.HasCoverage)
	assert.Equal(t, "error", check.Reason)
	assert.Equal(t, int64(80_000), check.DepositRequiredCents)
}

func TestReduceCoverageNilResultMeansNoRecord(t *testing.T) {
	check := ReduceCoverage(80_000, nil, nil)

	assert.False(t, check.HasCoverage)
	assert.Equal(t, "no_record", check.Reason)
	assert.Equal(t, int64(80_000), check.UncoveredCents)
}

func TestReduceCoveragePassesThroughValidCheck(t *testing.T) {
	in := &SubscriptionCoverageCheck{
		HasCoverage:          true,
		CoverageType:         CoveragePartial,
		SubscriptionID:       "sub-1",
		AvailableCents:       30_000,
		CoveredCents:         30_000,
		UncoveredCents:       50_000,
		DepositRequiredCents: 80_000,
	}
	out := ReduceCoverage(80_000, in, nil)
	assert.Equal(t, *in, out)
}

func TestCoverageCheckReconciliation(t *testing.T) {
	// Covered + uncovered must equal the required deposit in every shape
	// this package produces.
	checks := []SubscriptionCoverageCheck{
		NoCoverage(80_000, "error"),
		ReduceCoverage(80_000, nil, errors.New("boom")),
		ReduceCoverage(80_000, &SubscriptionCoverageCheck{
			HasCoverage: true, CoverageType: CoverageFull,
			AvailableCents: 120_000, CoveredCents: 80_000,
			UncoveredCents: 0, DepositRequiredCents: 80_000,
		}, nil),
	}
	for _, c := range checks {
		assert.Equal(t, c.DepositRequiredCents, c.CoveredCents+c.UncoveredCents)
		if c.HasCoverage {
			assert.LessOrEqual(t, c.CoveredCents, c.AvailableCents)
		}
	}
}

func TestResolveDepositNoCoverage(t *testing.T) {
	franchise := BuildFranchiseInfo(15_000) // standard 800

	result := ResolveDeposit(franchise, NoCoverage(franchise.StandardDeductibleCents(), "no_record"))

	assert.Equal(t, DepositCoverageNone, result.CoverageType)
	assert.Equal(t, float64(800), result.DepositRequiredUsd)
	assert.Zero(t, result.CoveredBySubscriptionUsd)
	assert.Equal(t, float64(800), result.FranchiseUsd)
	assert.Empty(t, result.SubscriptionID)
}

func TestResolveDepositFullCoverage(t *testing.T) {
	franchise := BuildFranchiseInfo(15_000)

	result := ResolveDeposit(franchise, SubscriptionCoverageCheck{
		HasCoverage:          true,
		CoverageType:         CoverageFull,
		SubscriptionID:       "sub-7",
		AvailableCents:       150_000,
		CoveredCents:         80_000,
		UncoveredCents:       0,
		DepositRequiredCents: 80_000,
	})

	assert.Equal(t, DepositCoverageFull, result.CoverageType)
	assert.Zero(t, result.DepositRequiredUsd)
	assert.Equal(t, float64(800), result.CoveredBySubscriptionUsd)
	assert.Equal(t, float64(1_500), result.SubscriptionBalanceUsd)
	assert.Equal(t, "sub-7", result.SubscriptionID)
}

func TestResolveDepositPartialCoverage(t *testing.T) {
	franchise := BuildFranchiseInfo(15_000)

	result := ResolveDeposit(franchise, SubscriptionCoverageCheck{
		HasCoverage:          true,
		CoverageType:         CoveragePartial,
		SubscriptionID:       "sub-9",
		AvailableCents:       30_000,
		CoveredCents:         30_000,
		UncoveredCents:       50_000,
		DepositRequiredCents: 80_000,
	})

	assert.Equal(t, DepositCoveragePartial, result.CoverageType)
	assert.Equal(t, float64(500), result.DepositRequiredUsd)
	assert.Equal(t, float64(300), result.CoveredBySubscriptionUsd)

	// Reconciliation: deposit + covered == franchise.
	require.Equal(t, result.FranchiseUsd, result.DepositRequiredUsd+result.CoveredBySubscriptionUsd)
}

func TestResolveDepositTreatsHasCoverageFalseAsNone(t *testing.T) {
	franchise := BuildFranchiseInfo(8_000)

	// Inconsistent input: HasCoverage false wins over a partial type.
	result := ResolveDeposit(franchise, SubscriptionCoverageCheck{
		HasCoverage:  false,
		CoverageType: CoveragePartial,
	})
	assert.Equal(t, DepositCoverageNone, result.CoverageType)
	assert.Equal(t, franchise.StandardDeductibleUsd, result.DepositRequiredUsd)
}
