package keeper

import (
	"context"
	"math"

	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// Create turns an allocated record into a live pool: it collects the
// creator's seed deposits, mints the initial share supply, and writes the
// header, market whitelist, and funded asset slots.
func (k *Keeper) Create(ctx context.Context, signers types.SignerSet, msg *types.MsgCreate) (err error) {
	defer func() { k.observe(types.TypeMsgCreate, err) }()

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
		return types.ErrMissingSignature.Wrap("source token account owner should be a signer")
	}
	if len(msg.Markets) > math.MaxUint16 {
		return types.ErrInvalidArgument.Wrap("number of given markets is too high")
	}

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeaderUnchecked(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	if header.Status.Initialized() {
		return types.ErrPoolAlreadyExists.Wrap("cannot overwrite an existing pool")
	}

	numMarkets := uint16(len(msg.Markets))
	assetOffset := types.AssetOffset(numMarkets)
	if len(data) < assetOffset {
		return types.ErrInvalidRecord.Wrap("record too small for the market whitelist")
	}

	// Collect the seed deposits. Zero amounts leave no asset slot behind.
	var assets []types.PoolAsset
	for i, amount := range msg.DepositAmounts {
		if amount == 0 {
			continue
		}
		account, err := k.ledger.Account(ctx, msg.PoolAssetAccounts[i])
		if err != nil {
			return err
		}
		if account.Delegate != nil || account.CloseAuthority != nil {
			return types.ErrInvalidArgument.Wrap("invalid pool asset account")
		}
		expected, err := solkey.AssociatedTokenAddress(msg.Pool, account.Mint, k.params.TokenProgram)
		if err != nil {
			return err
		}
		if expected != msg.PoolAssetAccounts[i] {
			return types.ErrInvalidArgument.Wrap("provided pool asset account is invalid")
		}
		if err := k.ledger.Transfer(ctx, msg.SourceAssetAccounts[i], msg.PoolAssetAccounts[i], msg.SourceOwner, amount); err != nil {
			return err
		}
		assets = append(assets, types.PoolAsset{Mint: account.Mint})
	}

	// Mint the initial share supply to the creator.
	if err = k.ledger.MintTo(ctx, msg.Mint, msg.TargetShareAccount, msg.Pool, types.InitialShareSupply); err != nil {
		return err
	}

	header = types.PoolHeader{
		MarketProgram:       msg.MarketProgram,
		Seed:                msg.PoolSeed,
		SignalProvider:      msg.SignalProvider,
		Status:              types.Unlocked(),
		NumberOfMarkets:     numMarkets,
		FeeRatio:            msg.FeeRatio,
		LastFeeCollection:   k.clock.Now(ctx),
		FeeCollectionPeriod: msg.FeeCollectionPeriod,
	}
	if err = types.PackHeader(header, data[:types.HeaderLen]); err != nil {
		return err
	}
	if err = types.PackMarkets(data[types.HeaderLen:assetOffset], msg.Markets); err != nil {
		return err
	}
	for i, asset := range assets {
		if err = types.WriteAssetAt(data[assetOffset:], i, asset); err != nil {
			return err
		}
	}
	if err = k.persistRecord(ctx, msg.Pool, data); err != nil {
		return err
	}

	k.metrics.PoolsCreated.Inc()
	k.metrics.RecordSharesMinted(types.TypeMsgCreate, types.InitialShareSupply)
	k.logger.Info("pool created",
		"pool", msg.Pool,
		"signal_provider", msg.SignalProvider,
		"markets", numMarkets,
		"assets", len(assets),
		"fee_ratio", msg.FeeRatio,
		"fee_period", msg.FeeCollectionPeriod,
	)
	return nil
}
