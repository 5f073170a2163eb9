package keeper

import (
	"context"
	"math"

	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// Deposit buys into the pool. The requested share amount is scaled down so
// the buyer's source accounts can cover every pool asset at the pool's
// current ratios, a fee is carved out of the minted shares, and the rest is
// minted to the buyer.
func (k *Keeper) Deposit(ctx context.Context, signers types.SignerSet, msg *types.MsgDeposit) (err error) {
	defer func() { k.observe(types.TypeMsgDeposit, err) }()

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

	data, err := k.loadRecord(ctx, msg.Pool)
	if err != nil {
		return err
	}
	header, err := types.UnpackHeader(data[:types.HeaderLen])
	if err != nil {
		return err
	}
	assets := types.UnpackAssets(data[types.AssetOffset(header.NumberOfMarkets):])
	if len(msg.PoolAssetAccounts) != len(assets) {
		return types.ErrInvalidArgument.Wrap("expected one account per pool asset")
	}

	if err = k.checkFeeShareAccounts(header.SignalProvider, msg.Mint,
		msg.SignalProviderShareAccount, msg.PlatformFeeShareAccount, msg.BuyAndBurnShareAccount); err != nil {
		return err
	}

	switch {
	case header.Status.IsLocked():
		return types.ErrLockedOperation.Wrap("the signal provider has currently locked the pool; no buy-ins are possible for now")
	case header.Status.IsPending():
		return types.ErrLockedOperation.Wrap("the pool has one or more pending orders; no buy-ins are possible for now")
	}

	totalShares, err := k.ledger.MintSupply(ctx, msg.Mint)
	if err != nil {
		return err
	}

	// Scale the buy-in down to what the source accounts can cover at the
	// pool's asset ratios.
	poolAmounts := make([]uint64, len(assets))
	effective := uint64(math.MaxUint64)
	for i := range assets {
		poolAccount, err := k.ledger.Account(ctx, msg.PoolAssetAccounts[i])
		if err != nil {
			return err
		}
		poolAmounts[i] = poolAccount.Amount

		sourceAccount, err := k.ledger.Account(ctx, msg.SourceAssetAccounts[i])
		if err != nil {
			return err
		}
		candidate, err := MulDiv(sourceAccount.Amount, totalShares, poolAccount.Amount)
		if err != nil {
			// An empty pool asset account places no bound on the buy-in.
			candidate = math.MaxUint64
		}
		if candidate < effective {
			effective = candidate
		}
	}
	if msg.ShareAmount < effective {
		effective = msg.ShareAmount
	}

	// Collect the proportional deposit of every pool asset.
	allZero := true
	for i := range assets {
		expected, err := solkey.AssociatedTokenAddress(msg.Pool, assets[i].Mint, k.params.TokenProgram)
		if err != nil {
			return err
		}
		if expected != msg.PoolAssetAccounts[i] {
			return types.ErrInvalidArgument.Wrap("provided pool asset account is invalid")
		}
		amount, err := MulDiv(effective, poolAmounts[i], totalShares)
		if err != nil {
			return err
		}
		if amount == 0 {
			continue
		}
		allZero = false
		if err := k.ledger.Transfer(ctx, msg.SourceAssetAccounts[i], msg.PoolAssetAccounts[i], msg.SourceOwner, amount); err != nil {
			return err
		}
	}
	if allZero {
		return types.ErrInvalidArgument.Wrap("the provided amounts cannot be all zero")
	}

	// Carve the fee out of the minted shares and split it.
	fee := MulShift16(effective, header.FeeRatio)
	afterFee := effective - fee
	if err = k.ledger.MintTo(ctx, msg.Mint, msg.TargetShareAccount, msg.Pool, afterFee); err != nil {
		return err
	}
	if err = k.mintFeeSplit(ctx, msg.Mint, msg.Pool, fee,
		msg.SignalProviderShareAccount, msg.PlatformFeeShareAccount, msg.BuyAndBurnShareAccount); err != nil {
		return err
	}

	k.metrics.RecordSharesMinted(types.TypeMsgDeposit, afterFee)
	k.logger.Info("deposit",
		"pool", msg.Pool,
		"shares", afterFee,
		"fee_shares", fee,
	)
	return nil
}

// checkFeeShareAccounts verifies the three fee recipients' share accounts
// against their associated token addresses for the pool mint.
func (k *Keeper) checkFeeShareAccounts(signalProvider, mint, spAccount, platformAccount, bnbAccount solkey.Key) error {
	expected, err := solkey.AssociatedTokenAddress(signalProvider, mint, k.params.TokenProgram)
	if err != nil {
		return err
	}
	if expected != spAccount {
		return types.ErrInvalidArgument.Wrap("the provided signal provider share account is invalid")
	}
	expected, err = solkey.AssociatedTokenAddress(k.params.PlatformFeeWallet, mint, k.params.TokenProgram)
	if err != nil {
		return err
	}
	if expected != platformAccount {
		return types.ErrInvalidArgument.Wrap("the provided platform fee share account is invalid")
	}
	expected, err = solkey.AssociatedTokenAddress(k.params.BuyAndBurnWallet, mint, k.params.TokenProgram)
	if err != nil {
		return err
	}
	if expected != bnbAccount {
		return types.ErrInvalidArgument.Wrap("the provided buy and burn share account is invalid")
	}
	return nil
}

// mintFeeSplit mints a fee to its three recipients: half to the signal
// provider, a quarter to the platform, and the remainder to buy and burn.
func (k *Keeper) mintFeeSplit(ctx context.Context, mint, pool solkey.Key, fee uint64, spAccount, platformAccount, bnbAccount solkey.Key) error {
	spFee := fee / 2
	platformFee := fee / 4
	bnbFee := fee - platformFee - spFee

	if err := k.ledger.MintTo(ctx, mint, spAccount, pool, spFee); err != nil {
		return err
	}
	if err := k.ledger.MintTo(ctx, mint, platformAccount, pool, platformFee); err != nil {
		return err
	}
	if err := k.ledger.MintTo(ctx, mint, bnbAccount, pool, bnbFee); err != nil {
		return err
	}

	k.metrics.RecordFeeShares("signal_provider", spFee)
	k.metrics.RecordFeeShares("platform", platformFee)
	k.metrics.RecordFeeShares("buy_and_burn", bnbFee)
	return nil
}
