package service

import "github.com/shopspring/decimal"

// Share counts and NAV per share carry 4 decimal places; monetary amounts
// carry 2. Both use banker's rounding so repeated daily runs do not
// accumulate a systematic half-cent bias the way round-half-up would.

// roundMoney rounds a monetary value to cents using banker's rounding.
func roundMoney(value float64) float64 {
	return decimal.NewFromFloat(value).RoundBank(2).InexactFloat64()
}

// roundShares rounds a share or NAV-per-share value to four decimal places
// using banker's rounding.
func roundShares(value float64) float64 {
	return decimal.NewFromFloat(value).RoundBank(4).InexactFloat64()
}
