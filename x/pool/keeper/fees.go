package keeper

import (
	"context"

	"github.com/openalpha/signalpool/x/pool/types"
)

// CollectFees mints the accrued performance fee for every whole fee period
// elapsed since the last collection, compounding per period, and advances
// the schedule anchor by exactly the collected periods. Anyone may collect.
func (k *Keeper) CollectFees(ctx context.Context, msg *types.MsgCollectFees) (err error) {
	defer func() { k.observe(types.TypeMsgCollectFees, err) }()

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

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeader(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	if err = k.checkFeeShareAccounts(header.SignalProvider, msg.Mint,
		msg.SignalProviderShareAccount, msg.PlatformFeeShareAccount, msg.BuyAndBurnShareAccount); err != nil {
		return err
	}

	cycles := elapsedSince(k.clock.Now(ctx), header.LastFeeCollection) / header.FeeCollectionPeriod
	if cycles == 0 {
		return types.ErrLockedOperation.Wrap("there are currently no fees to collect")
	}

	// The fee-free remainder after n periods is (1-ratio)^n in 1/65536
	// units; the fee is carved out of the post-mint supply, so the mint
	// amount is supply*(1-feeless)/feeless.
	feeless := uint64(uint16(PowQ16(uint32(^header.FeeRatio), cycles)))
	collect := uint64(^uint16(feeless))

	supply, err := k.ledger.MintSupply(ctx, msg.Mint)
	if err != nil {
		return err
	}
	tokensToMint, err := MulDiv(collect, supply, feeless)
	if err != nil {
		return err
	}

	if err = k.mintFeeSplit(ctx, msg.Mint, msg.Pool, tokensToMint,
		msg.SignalProviderShareAccount, msg.PlatformFeeShareAccount, msg.BuyAndBurnShareAccount); err != nil {
		return err
	}

	header.LastFeeCollection += cycles * header.FeeCollectionPeriod
	if err = types.PackHeader(header, data[:types.HeaderLen]); err != nil {
		return err
	}
	if err = k.persistRecord(ctx, msg.Pool, data); err != nil {
		return err
	}

	k.metrics.FeeCyclesCollected.Add(float64(cycles))
	k.metrics.RecordSharesMinted(types.TypeMsgCollectFees, tokensToMint)
	k.logger.Info("fees collected",
		"pool", msg.Pool,
		"cycles", cycles,
		"shares", tokensToMint,
	)
	return nil
}
