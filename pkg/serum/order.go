package serum

import (
	"cosmossdk.io/math"

	"github.com/openalpha/signalpool/pkg/solkey"
)

// Side is the taker side of an order.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

// String implements fmt.Stringer for event and log attributes.
func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// Valid reports whether the side is one of the two defined values.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// OrderType selects the market's matching behavior for an order.
type OrderType uint8

const (
	OrderTypeLimit OrderType = iota
	OrderTypeImmediateOrCancel
	OrderTypePostOnly
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeImmediateOrCancel:
		return "ioc"
	case OrderTypePostOnly:
		return "post_only"
	default:
		return "unknown"
	}
}

// SelfTradeBehavior tells the market what to do when an order would cross
// one resting on the same open-orders account.
type SelfTradeBehavior uint8

const (
	SelfTradeDecrementTake SelfTradeBehavior = iota
	SelfTradeCancelProvide
	SelfTradeAbortTransaction
)

// NewOrderParams carries a place-order call into the market program.
type NewOrderParams struct {
	Market     solkey.Key
	OpenOrders solkey.Key
	// Payer is the token account funding the order; Owner is its authority.
	Payer solkey.Key
	Owner solkey.Key

	Side       Side
	LimitPrice uint64
	// MaxQtyLots is the order size in the market's lot units.
	MaxQtyLots uint64
	// MaxQuoteQtyIncludingFees caps the native price-currency spend on a bid.
	MaxQuoteQtyIncludingFees uint64

	OrderType         OrderType
	ClientID          uint64
	SelfTradeBehavior SelfTradeBehavior
	// MatchLimit bounds how many resting orders the match may walk.
	MatchLimit uint16

	// FeeDiscount optionally names a fee-discount token account.
	FeeDiscount *solkey.Key
}

// SettleParams carries a settle-funds call into the market program.
type SettleParams struct {
	Market      solkey.Key
	OpenOrders  solkey.Key
	Owner       solkey.Key
	BaseWallet  solkey.Key
	QuoteWallet solkey.Key

	// Referrer optionally names a referral fee recipient.
	Referrer *solkey.Key
}

// CancelParams carries a cancel-order call into the market program.
type CancelParams struct {
	Market     solkey.Key
	OpenOrders solkey.Key
	Owner      solkey.Key

	Side Side
	// OrderID is the market-assigned 128-bit order identifier.
	OrderID math.Int
}
