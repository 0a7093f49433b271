package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/goalguru/walletauth/core"
)

// Market is the on-chain prediction-market contract. It is an external
// collaborator: this module invokes it, it does not implement it.
type Market interface {
	// ReadMarket returns the on-chain state of one market.
	ReadMarket(ctx context.Context, id uint64) (core.Market, error)

	// PlacePrediction submits a bet on a market outcome. Amount is
	// denominated in the chain's native currency. Returns the
	// transaction hash.
	PlacePrediction(ctx context.Context, marketID uint64, outcomeYes bool, amount decimal.Decimal) (string, error)
}
