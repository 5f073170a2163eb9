package keeper

import (
	"context"

	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// Redeem burns shares for a pro-rata payout of every pool asset. Redemption
// is refused while orders are pending and while a whole fee period has gone
// uncollected, so a holder cannot dodge accrued fees. Burning the entire
// share supply resets the record for reuse under the same seed.
func (k *Keeper) Redeem(ctx context.Context, signers types.SignerSet, msg *types.MsgRedeem) (err error) {
	defer func() { k.observe(types.TypeMsgRedeem, err) }()

	if err = msg.ValidateBasic(); err != nil {
		return err
	}
	if msg.TokenProgram != k.params.TokenProgram {
		return types.ErrIncorrectProgram.Wrap("incorrect token program provided")
	}
	if err = k.checkPoolKey(msg.Pool, msg.PoolSeed); err != nil {
		return err
	}
	if err = k.checkMintKey(msg.Mint, msg.PoolSeed); err != nil {
		return err
	}
	if !signers.Signed(msg.SourceOwner) {
		return types.ErrMissingSignature.Wrap("source share account owner should be a signer")
	}

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeader(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	if header.Status.IsPending() {
		return types.ErrLockedOperation.Wrap("the pool has one or more pending orders; no buy-outs are possible for now")
	}
	if elapsedSince(k.clock.Now(ctx), header.LastFeeCollection) > header.FeeCollectionPeriod {
		return types.ErrLockedOperation.Wrap("fees should be collected before redeeming")
	}

	assets := types.UnpackAssets(data[types.AssetOffset(header.NumberOfMarkets):])
	if len(msg.PoolAssetAccounts) != len(assets) {
		return types.ErrInvalidArgument.Wrap("expected one account per pool asset")
	}

	totalShares, err := k.ledger.MintSupply(ctx, msg.Mint)
	if err != nil {
		return err
	}
	sourceShares, err := k.ledger.Account(ctx, msg.SourceShareAccount)
	if err != nil {
		return err
	}
	if sourceShares.Amount < msg.ShareAmount {
		return types.ErrInsufficientFunds.Wrap("insufficient share funds")
	}

	// Pay out every asset pro rata.
	for i := range assets {
		expected, err := solkey.AssociatedTokenAddress(msg.Pool, assets[i].Mint, k.params.TokenProgram)
		if err != nil {
			return err
		}
		if expected != msg.PoolAssetAccounts[i] {
			return types.ErrInvalidArgument.Wrap("provided pool asset account is invalid")
		}
		poolAccount, err := k.ledger.Account(ctx, msg.PoolAssetAccounts[i])
		if err != nil {
			return err
		}
		amount, err := MulDiv(msg.ShareAmount, poolAccount.Amount, totalShares)
		if err != nil {
			return err
		}
		if amount == 0 {
			continue
		}
		if err := k.ledger.Transfer(ctx, msg.PoolAssetAccounts[i], msg.TargetAssetAccounts[i], msg.Pool, amount); err != nil {
			return err
		}
	}

	if err = k.ledger.Burn(ctx, msg.SourceShareAccount, msg.Mint, msg.SourceOwner, msg.ShareAmount); err != nil {
		return err
	}

	reset := msg.ShareAmount == totalShares
	if reset {
		// Full redemption: wipe the whitelist and asset slots but keep the
		// header, so the seed stays usable for a fresh pool.
		for i := types.HeaderLen; i < len(data); i++ {
			data[i] = 0
		}
		header.Status = types.Uninitialized()
		if err = types.PackHeader(header, data[:types.HeaderLen]); err != nil {
			return err
		}
		if err = k.persistRecord(ctx, msg.Pool, data); err != nil {
			return err
		}
		k.metrics.PoolsReset.Inc()
	}

	k.metrics.SharesBurned.Add(float64(msg.ShareAmount))
	k.logger.Info("shares redeemed",
		"pool", msg.Pool,
		"shares", msg.ShareAmount,
		"reset", reset,
	)
	return nil
}

// elapsedSince returns now-since, or zero when the clock reads before the
// anchor.
func elapsedSince(now, since uint64) uint64 {
	if now < since {
		return 0
	}
	return now - since
}
