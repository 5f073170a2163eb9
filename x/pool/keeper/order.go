package keeper

import (
	"context"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// CreateOrder places an immediate-or-cancel order on a whitelisted market,
// sized as a fixed-point fraction of the pool's source asset holding. Only
// the signal provider may trade. The target asset slot is claimed for the
// market's target mint if it was unoccupied, and the source slot is released
// when the order drains it completely.
func (k *Keeper) CreateOrder(ctx context.Context, signers types.SignerSet, msg *types.MsgCreateOrder) (err error) {
	defer func() { k.observe(types.TypeMsgCreateOrder, err) }()

	if err = msg.ValidateBasic(); err != nil {
		return err
	}
	if err = k.checkPoolKey(msg.Pool, msg.PoolSeed); err != nil {
		return err
	}
	if msg.OrderType != serum.OrderTypeImmediateOrCancel {
		return types.ErrInvalidArgument.Wrap("order needs to be of type immediate-or-cancel")
	}

	sourceAccount, err := k.ledger.Account(ctx, msg.PoolAssetAccount)
	if err != nil {
		return types.ErrInvalidArgument.Wrap("invalid pool asset token account provided")
	}
	expected, err := k.associatedPoolAccount(msg.Pool, sourceAccount.Mint)
	if err != nil {
		return err
	}
	if expected != msg.PoolAssetAccount {
		return types.ErrInvalidArgument.Wrap("source token account should be associated to the pool account")
	}
	if sourceAccount.Owner != msg.Pool {
		return types.ErrInvalidArgument.Wrap("provided source token account should be owned by the pool")
	}

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeader(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	if header.MarketProgram != msg.MarketProgram {
		return types.ErrIncorrectProgram.Wrap("the provided market program account is invalid for this pool")
	}
	if !signers.Signed(msg.SignalProvider) {
		return types.ErrMissingSignature.Wrap("the signal provider's signature is required")
	}
	if msg.SignalProvider != header.SignalProvider {
		return types.ErrMissingSignature.Wrap("a wrong signal provider account was provided")
	}

	assetOffset := types.AssetOffset(header.NumberOfMarkets)
	authorized, err := types.MarketAt(data[types.HeaderLen:assetOffset], msg.MarketIndex)
	if err != nil {
		return err
	}
	if authorized != msg.Market {
		return types.ErrInvalidArgument.Wrap("the given market account is not authorized")
	}

	// An order-tracking slot with no outstanding quantity on either leg is
	// counted as a new pending order.
	ooData, err := k.store.Data(ctx, msg.OpenOrders)
	if err != nil {
		return err
	}
	openOrders, err := serum.ParseOpenOrders(ooData)
	if err != nil {
		return err
	}
	if err = header.Status.BeginOrder(openOrders.Idle()); err != nil {
		return err
	}
	if err = types.PackHeader(header, data[:types.HeaderLen]); err != nil {
		return err
	}

	assetData := data[assetOffset:]
	sourceAsset, err := types.AssetAt(assetData, msg.SourceIndex)
	if err != nil {
		return err
	}
	if !sourceAsset.Initialized() {
		return types.ErrInvalidArgument.Wrap("the pool has no asset at the specified source index")
	}
	if sourceAsset.Mint != sourceAccount.Mint {
		return types.ErrInvalidArgument.Wrap("provided token account does not match the pool source asset")
	}

	targetAsset, err := types.AssetAt(assetData, msg.TargetIndex)
	if err != nil {
		return err
	}
	if targetAsset.Initialized() {
		if targetAsset.Mint != msg.TargetMint {
			return types.ErrInvalidArgument.Wrap("target asset mint does not match given target mint")
		}
	} else {
		if err = types.WriteAssetAt(assetData, msg.TargetIndex, types.PoolAsset{Mint: msg.TargetMint}); err != nil {
			return err
		}
	}

	amountToTrade := MulShift16(sourceAccount.Amount, msg.RatioOfPoolToTrade)

	lotSize := msg.BaseLotSize
	if msg.Side == serum.SideBid {
		lotSize = msg.QuoteLotSize
	}
	if lotSize == 0 {
		return types.ErrOverflow.Wrap("market lot size cannot be zero")
	}
	lotsToTrade := amountToTrade / lotSize
	if lotsToTrade == 0 {
		return types.ErrOperationTooSmall.Wrap("operation too small")
	}

	// An order for the full holding releases the source slot.
	if sourceAccount.Amount == amountToTrade {
		if err = types.ClearAssetAt(assetData, msg.SourceIndex); err != nil {
			return err
		}
	}

	// On a bid the quote spend is capped at the traded amount; an ask is
	// bounded by its lot count alone.
	maxQuoteQty := uint64(1)
	if msg.Side == serum.SideBid {
		if amountToTrade == 0 {
			return types.ErrOperationTooSmall.Wrap("operation too small")
		}
		maxQuoteQty = amountToTrade
	}

	order := serum.NewOrderParams{
		Market:                   msg.Market,
		OpenOrders:               msg.OpenOrders,
		Payer:                    msg.PoolAssetAccount,
		Owner:                    msg.Pool,
		Side:                     msg.Side,
		LimitPrice:               msg.LimitPrice,
		MaxQtyLots:               lotsToTrade,
		MaxQuoteQtyIncludingFees: maxQuoteQty,
		OrderType:                msg.OrderType,
		ClientID:                 msg.ClientID,
		SelfTradeBehavior:        msg.SelfTradeBehavior,
		MatchLimit:               msg.MatchLimit,
		FeeDiscount:              msg.FeeDiscount,
	}
	if err = k.market.NewOrder(ctx, msg.Pool, order); err != nil {
		return err
	}
	if err = k.persistRecord(ctx, msg.Pool, data); err != nil {
		return err
	}

	k.metrics.RecordPendingOrders(msg.Pool.String(), int(header.Status.PendingCount))
	k.logger.Info("order placed",
		"pool", msg.Pool,
		"market", msg.Market,
		"side", msg.Side,
		"lots", lotsToTrade,
		"pending", header.Status.PendingCount,
	)
	return nil
}

// associatedPoolAccount derives the pool's associated token account for a
// mint.
func (k *Keeper) associatedPoolAccount(pool, mint solkey.Key) (solkey.Key, error) {
	return solkey.AssociatedTokenAddress(pool, mint, k.params.TokenProgram)
}
