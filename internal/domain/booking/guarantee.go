package booking

import "math"

// PaymentMethod identifies how the renter pays the rental total.
type PaymentMethod string

const (
	PaymentMethodCreditCard    PaymentMethod = "credit_card"
	PaymentMethodWallet        PaymentMethod = "wallet"
	PaymentMethodPartialWallet PaymentMethod = "partial_wallet"
)

// IsValid returns true if the payment method is recognized.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodWallet, PaymentMethodPartialWallet:
		return true
	}
	return false
}

// HasCard returns true when a card is involved and a hold can be placed.
func (m PaymentMethod) HasCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodPartialWallet
}

// holdRolloverFactor sizes the card hold as a share of the rollover deductible.
const holdRolloverFactor = 0.35

// WalletSplit is the wallet/card allocation of the rental total (not the
// deposit), in the booking's currency.
type WalletSplit struct {
	WalletAmount float64 `json:"wallet_amount"`
	CardAmount   float64 `json:"card_amount"`
}

// GuaranteeBreakdown is the payment-method-conditioned guarantee for a
// booking. Exactly one of the hold and the wallet security credit is nonzero:
// the two mechanisms are mutually exclusive per booking.
type GuaranteeBreakdown struct {
	Bucket                VehicleBucket `json:"bucket"`
	FranchiseStandardUsd  float64       `json:"franchise_standard_usd"`
	FranchiseRolloverUsd  float64       `json:"franchise_rollover_usd"`
	HoldUsd               float64       `json:"hold_usd"`
	HoldArs               float64       `json:"hold_ars"`
	CreditSecurityUsd     float64       `json:"credit_security_usd"`
	CreditSecurityArs     float64       `json:"credit_security_ars"`
	WalletContributionUsd float64       `json:"wallet_contribution_usd"`
	CardContributionUsd   float64       `json:"card_contribution_usd"`
}

// CalculateGuarantee computes the guarantee required for a booking given its
// resolved franchise, an FX snapshot (local currency units per USD) and the
// payment method chosen at checkout. Pure: the FX snapshot and wallet split
// are supplied by the caller.
func CalculateGuarantee(
	b *Booking,
	franchise FranchiseInfo,
	fxSnapshot float64,
	method PaymentMethod,
	split WalletSplit,
) GuaranteeBreakdown {
	out := GuaranteeBreakdown{
		Bucket:               franchise.Bucket,
		FranchiseStandardUsd: franchise.StandardDeductibleUsd,
		FranchiseRolloverUsd: franchise.RolloverDeductibleUsd,
	}

	if method.HasCard() {
		out.HoldUsd = holdRolloverFactor * franchise.RolloverDeductibleUsd
		out.HoldArs = math.Max(franchise.HoldMinimumArs, math.Round(out.HoldUsd*fxSnapshot))
	} else {
		out.CreditSecurityUsd = franchise.WalletCreditUsd
		out.CreditSecurityArs = out.CreditSecurityUsd * fxSnapshot
	}

	out.WalletContributionUsd = toUsd(split.WalletAmount, b.Currency(), fxSnapshot)
	out.CardContributionUsd = toUsd(split.CardAmount, b.Currency(), fxSnapshot)

	return out
}

// toUsd converts an amount in the booking currency to USD using the FX
// snapshot. Zero amounts short-circuit without touching the rate.
func toUsd(amount float64, currency string, fxSnapshot float64) float64 {
	if amount == 0 {
		return 0
	}
	if currency == "USD" || fxSnapshot <= 0 {
		return amount
	}
	return amount / fxSnapshot
}
