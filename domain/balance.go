package domain

import "github.com/shopspring/decimal"

// Balance is the full account balance view. Pushed balance updates carry the
// complete snapshot, never deltas, so a missed message cannot leave the
// client off by one increment.
type Balance struct {
	AvailableINR    decimal.Decimal `json:"available_inr"`
	AvailableBTC    decimal.Decimal `json:"available_btc"`
	ReservedINR     decimal.Decimal `json:"reserved_inr"`
	ReservedBTC     decimal.Decimal `json:"reserved_btc"`
	CollateralBTC   decimal.Decimal `json:"collateral_btc"`
	BorrowedINR     decimal.Decimal `json:"borrowed_inr"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
}

// TotalINR returns available plus reserved INR.
func (b *Balance) TotalINR() decimal.Decimal {
	return b.AvailableINR.Add(b.ReservedINR)
}

// TotalBTC returns available, reserved and collateralized BTC combined.
func (b *Balance) TotalBTC() decimal.Decimal {
	return b.AvailableBTC.Add(b.ReservedBTC).Add(b.CollateralBTC)
}

// HasDebt reports whether anything is owed on the loan facility.
func (b *Balance) HasDebt() bool {
	return b.BorrowedINR.IsPositive() || b.InterestAccrued.IsPositive()
}
