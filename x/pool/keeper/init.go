package keeper

import (
	"context"

	"github.com/openalpha/signalpool/x/pool/types"
)

// Init allocates a pool record slot sized for the requested market whitelist
// and asset slots, and sets up the pool's share mint with the pool as its
// only authority. The record stays uninitialized until Create.
func (k *Keeper) Init(ctx context.Context, msg *types.MsgInit) (err error) {
	defer func() { k.observe(types.TypeMsgInit, err) }()

	if err = msg.ValidateBasic(); err != nil {
		return err
	}
	if msg.TokenProgram != k.params.TokenProgram {
		return types.ErrIncorrectProgram.Wrap("incorrect token program provided")
	}

	poolKey, err := k.PoolKey(msg.PoolSeed)
	if err != nil {
		return err
	}
	if poolKey != msg.Pool {
		return types.ErrInvalidArgument.Wrap("provided pool account is invalid")
	}
	mintKey, err := k.MintKey(msg.PoolSeed)
	if err != nil {
		return err
	}
	if mintKey != msg.Mint {
		return types.ErrInvalidArgument.Wrap("provided mint account is invalid")
	}

	size := types.RecordSize(msg.NumberOfMarkets, msg.MaxNumberOfAssets)
	if err = k.store.Allocate(ctx, poolKey, k.params.ProgramID, size, msg.Payer); err != nil {
		return err
	}
	if err = k.ledger.InitializeMint(ctx, mintKey, poolKey, k.params.ShareDecimals); err != nil {
		return err
	}

	k.logger.Info("allocated pool record",
		"pool", poolKey,
		"markets", msg.NumberOfMarkets,
		"asset_slots", msg.MaxNumberOfAssets,
		"size", size,
	)
	return nil
}
