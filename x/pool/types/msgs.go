package types

import (
	"cosmossdk.io/math"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/pkg/solkey"
)

// Operation names for logs and metrics.
const (
	TypeMsgInit        = "init"
	TypeMsgCreate      = "create"
	TypeMsgDeposit     = "deposit"
	TypeMsgCreateOrder = "create_order"
	TypeMsgSettle      = "settle"
	TypeMsgCancelOrder = "cancel_order"
	TypeMsgRedeem      = "redeem"
	TypeMsgCollectFees = "collect_fees"
)

// MsgInit allocates a pool record slot and its share mint.
type MsgInit struct {
	TokenProgram solkey.Key
	Pool         solkey.Key
	Mint         solkey.Key
	Payer        solkey.Key

	PoolSeed          [32]byte
	MaxNumberOfAssets uint32
	NumberOfMarkets   uint16
}

func (m *MsgInit) ValidateBasic() error {
	if m.MaxNumberOfAssets == 0 {
		return ErrInvalidArgument.Wrap("pool must track at least one asset slot")
	}
	return nil
}

// MsgCreate turns an allocated record into a live pool, funds its first
// asset accounts, and mints the initial share supply to the creator.
type MsgCreate struct {
	TokenProgram   solkey.Key
	MarketProgram  solkey.Key
	SignalProvider solkey.Key
	Mint           solkey.Key
	// TargetShareAccount receives the initial share supply.
	TargetShareAccount  solkey.Key
	Pool                solkey.Key
	PoolAssetAccounts   []solkey.Key
	SourceOwner         solkey.Key
	SourceAssetAccounts []solkey.Key

	PoolSeed            [32]byte
	DepositAmounts      []uint64
	Markets             []solkey.Key
	FeeCollectionPeriod uint64
	// FeeRatio is the per-period fee fraction in 1/65536 units.
	FeeRatio uint16
}

func (m *MsgCreate) ValidateBasic() error {
	if len(m.DepositAmounts) != len(m.PoolAssetAccounts) ||
		len(m.DepositAmounts) != len(m.SourceAssetAccounts) {
		return ErrInvalidArgument.Wrap("deposit amounts and asset accounts must align")
	}
	if m.FeeCollectionPeriod < MinFeeCollectionPeriod {
		return ErrInvalidArgument.Wrap("fee collection period should be longer than a week")
	}
	return nil
}

// MsgDeposit buys into the pool for up to ShareAmount shares.
type MsgDeposit struct {
	TokenProgram solkey.Key
	Mint         solkey.Key
	// TargetShareAccount receives the net minted shares.
	TargetShareAccount solkey.Key
	// SignalProviderShareAccount, PlatformFeeShareAccount, and
	// BuyAndBurnShareAccount receive the deposit fee split.
	SignalProviderShareAccount solkey.Key
	PlatformFeeShareAccount    solkey.Key
	BuyAndBurnShareAccount     solkey.Key
	Pool                       solkey.Key
	PoolAssetAccounts          []solkey.Key
	SourceOwner                solkey.Key
	SourceAssetAccounts        []solkey.Key

	PoolSeed    [32]byte
	ShareAmount uint64
}

func (m *MsgDeposit) ValidateBasic() error {
	if m.ShareAmount == 0 {
		return ErrInvalidArgument.Wrap("share amount must be positive")
	}
	if len(m.PoolAssetAccounts) != len(m.SourceAssetAccounts) {
		return ErrInvalidArgument.Wrap("pool and source asset accounts must align")
	}
	return nil
}

// MsgCreateOrder places an immediate-or-cancel order on a whitelisted
// market, sized as a fixed-point ratio of the pool's source asset holding.
type MsgCreateOrder struct {
	SignalProvider   solkey.Key
	Market           solkey.Key
	PoolAssetAccount solkey.Key
	OpenOrders       solkey.Key
	Pool             solkey.Key
	MarketProgram    solkey.Key
	// FeeDiscount optionally names a fee-discount token account forwarded
	// to the market.
	FeeDiscount *solkey.Key

	PoolSeed   [32]byte
	Side       serum.Side
	LimitPrice uint64
	// RatioOfPoolToTrade is the fraction of the source asset holding to
	// offer, in 1/65536 units.
	RatioOfPoolToTrade uint16
	OrderType          serum.OrderType
	MarketIndex        uint16
	BaseLotSize        uint64
	QuoteLotSize       uint64
	TargetMint         solkey.Key
	ClientID           uint64
	SelfTradeBehavior  serum.SelfTradeBehavior
	SourceIndex        int
	TargetIndex        int
	// MatchLimit bounds the market's matching walk.
	MatchLimit uint16
}

func (m *MsgCreateOrder) ValidateBasic() error {
	if !m.Side.Valid() {
		return ErrInvalidArgument.Wrap("invalid order side")
	}
	if m.LimitPrice == 0 {
		return ErrInvalidArgument.Wrap("limit price must be positive")
	}
	if m.RatioOfPoolToTrade == 0 {
		return ErrInvalidArgument.Wrap("trade ratio must be positive")
	}
	if m.SourceIndex < 0 || m.TargetIndex < 0 {
		return ErrInvalidArgument.Wrap("asset indices must be non-negative")
	}
	return nil
}

// MsgSettle drains settled funds from an order-tracking slot back into the
// pool's asset accounts.
type MsgSettle struct {
	Market     solkey.Key
	OpenOrders solkey.Key
	Pool       solkey.Key
	Mint       solkey.Key
	// PoolBaseWallet and PoolQuoteWallet receive the two settled legs.
	PoolBaseWallet  solkey.Key
	PoolQuoteWallet solkey.Key
	// Referrer optionally names a referral fee recipient forwarded to the
	// market.
	Referrer *solkey.Key

	PoolSeed   [32]byte
	QuoteIndex int
	BaseIndex  int
}

func (m *MsgSettle) ValidateBasic() error {
	if m.QuoteIndex < 0 || m.BaseIndex < 0 {
		return ErrInvalidArgument.Wrap("asset indices must be non-negative")
	}
	return nil
}

// MsgCancelOrder cancels a resting order by id. Only the signal provider
// may cancel.
type MsgCancelOrder struct {
	SignalProvider solkey.Key
	Market         solkey.Key
	OpenOrders     solkey.Key
	Pool           solkey.Key

	PoolSeed [32]byte
	Side     serum.Side
	// OrderID is the market-assigned 128-bit order identifier.
	OrderID math.Int
}

func (m *MsgCancelOrder) ValidateBasic() error {
	if !m.Side.Valid() {
		return ErrInvalidArgument.Wrap("invalid order side")
	}
	if m.OrderID.IsNil() || m.OrderID.IsNegative() {
		return ErrInvalidArgument.Wrap("order id must be a non-negative integer")
	}
	return nil
}

// MsgRedeem burns ShareAmount shares for a pro-rata payout of every pool
// asset.
type MsgRedeem struct {
	TokenProgram solkey.Key
	Mint         solkey.Key
	SourceOwner  solkey.Key
	// SourceShareAccount holds the shares being redeemed.
	SourceShareAccount  solkey.Key
	Pool                solkey.Key
	PoolAssetAccounts   []solkey.Key
	TargetAssetAccounts []solkey.Key

	PoolSeed    [32]byte
	ShareAmount uint64
}

func (m *MsgRedeem) ValidateBasic() error {
	if m.ShareAmount == 0 {
		return ErrInvalidArgument.Wrap("share amount must be positive")
	}
	if len(m.PoolAssetAccounts) != len(m.TargetAssetAccounts) {
		return ErrInvalidArgument.Wrap("pool and target asset accounts must align")
	}
	return nil
}

// MsgCollectFees mints the accrued performance fee for every whole elapsed
// fee period.
type MsgCollectFees struct {
	TokenProgram               solkey.Key
	Pool                       solkey.Key
	Mint                       solkey.Key
	SignalProviderShareAccount solkey.Key
	PlatformFeeShareAccount    solkey.Key
	BuyAndBurnShareAccount     solkey.Key

	PoolSeed [32]byte
}

func (m *MsgCollectFees) ValidateBasic() error {
	return nil
}
