package core

import "github.com/shopspring/decimal"

// Market is the on-chain view of a prediction market.
// Pools are denominated in the chain's native currency.
type Market struct {
	ID       uint64          `json:"id"`
	Question string          `json:"question"`
	EndTime  int64           `json:"endTime"`
	YesPool  decimal.Decimal `json:"yesPool"`
	NoPool   decimal.Decimal `json:"noPool"`
	Resolved bool            `json:"resolved"`
	Outcome  uint8           `json:"outcome"`
}
