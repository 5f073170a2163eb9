package keeper

import (
	"context"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/x/pool/types"
)

// Settle drains settled funds from an order-tracking slot back into the
// pool's base and quote asset accounts. When the slot shows no outstanding
// quantity on either leg the pending order count is decremented; settling a
// slot with nothing free is refused. Anyone may settle.
func (k *Keeper) Settle(ctx context.Context, msg *types.MsgSettle) (err error) {
	defer func() { k.observe(types.TypeMsgSettle, err) }()

	if err = msg.ValidateBasic(); err != nil {
		return err
	}
	if err = k.checkPoolKey(msg.Pool, msg.PoolSeed); err != nil {
		return err
	}
	if err = k.checkMintKey(msg.Mint, msg.PoolSeed); err != nil {
		return err
	}

	marketData, err := k.store.Data(ctx, msg.Market)
	if err != nil {
		return err
	}
	market, err := serum.ParseMarketState(marketData)
	if err != nil {
		return err
	}
	baseMint := market.BaseMint()
	quoteMint := market.QuoteMint()

	expected, err := k.associatedPoolAccount(msg.Pool, baseMint)
	if err != nil {
		return err
	}
	if expected != msg.PoolBaseWallet {
		return types.ErrInvalidArgument.Wrap("provided pool base account does not match the market base asset")
	}
	expected, err = k.associatedPoolAccount(msg.Pool, quoteMint)
	if err != nil {
		return err
	}
	if expected != msg.PoolQuoteWallet {
		return types.ErrInvalidArgument.Wrap("provided pool quote account does not match the market quote asset")
	}

	baseAccount, err := k.ledger.Account(ctx, msg.PoolBaseWallet)
	if err != nil {
		return err
	}
	quoteAccount, err := k.ledger.Account(ctx, msg.PoolQuoteWallet)
	if err != nil {
		return err
	}
	if baseAccount.Owner != msg.Pool || quoteAccount.Owner != msg.Pool {
		return types.ErrInvalidArgument.Wrap("pool should own the provided asset accounts")
	}

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeader(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	assetData := data[types.AssetOffset(header.NumberOfMarkets):]

	// The base and quote slots are claimed for the market's mints if they
	// were unoccupied.
	baseAsset, err := types.AssetAt(assetData, msg.BaseIndex)
	if err != nil {
		return err
	}
	if baseAsset.Initialized() && baseAsset.Mint != baseMint {
		return types.ErrInvalidArgument.Wrap("base asset does not match market base token")
	}
	baseAsset.Mint = baseMint

	quoteAsset, err := types.AssetAt(assetData, msg.QuoteIndex)
	if err != nil {
		return err
	}
	if quoteAsset.Initialized() && quoteAsset.Mint != quoteMint {
		return types.ErrInvalidArgument.Wrap("quote asset does not match market quote token")
	}
	quoteAsset.Mint = quoteMint

	ooData, err := k.store.Data(ctx, msg.OpenOrders)
	if err != nil {
		return err
	}
	openOrders, err := serum.ParseOpenOrders(ooData)
	if err != nil {
		return err
	}
	if openOrders.FullyDrained() {
		// Everything outstanding is free: the order is done.
		if err = header.Status.CompleteOrder(); err != nil {
			return err
		}
	}
	if err = types.PackHeader(header, data[:types.HeaderLen]); err != nil {
		return err
	}
	if openOrders.NothingFree() {
		return types.ErrLockedOperation.Wrap("no funds to settle")
	}

	if err = types.WriteAssetAt(assetData, msg.BaseIndex, baseAsset); err != nil {
		return err
	}
	if err = types.WriteAssetAt(assetData, msg.QuoteIndex, quoteAsset); err != nil {
		return err
	}

	settle := serum.SettleParams{
		Market:      msg.Market,
		OpenOrders:  msg.OpenOrders,
		Owner:       msg.Pool,
		BaseWallet:  msg.PoolBaseWallet,
		QuoteWallet: msg.PoolQuoteWallet,
		Referrer:    msg.Referrer,
	}
	if err = k.market.SettleFunds(ctx, msg.Pool, settle); err != nil {
		return err
	}
	if err = k.persistRecord(ctx, msg.Pool, data); err != nil {
		return err
	}

	pending := 0
	if header.Status.IsPending() {
		pending = int(header.Status.PendingCount)
	}
	k.metrics.RecordPendingOrders(msg.Pool.String(), pending)
	k.logger.Info("funds settled",
		"pool", msg.Pool,
		"market", msg.Market,
		"pending", pending,
	)
	return nil
}
