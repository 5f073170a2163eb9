package keeper

import (
	"context"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/x/pool/types"
)

// CancelOrder cancels a resting order on behalf of the pool. Only the
// signal provider may cancel; the pending order count is only released later
// by settling the drained order-tracking slot.
func (k *Keeper) CancelOrder(ctx context.Context, signers types.SignerSet, msg *types.MsgCancelOrder) (err error) {
	defer func() { k.observe(types.TypeMsgCancelOrder, err) }()

	if err = msg.ValidateBasic(); err != nil {
		return err
	}
	if err = k.checkPoolKey(msg.Pool, msg.PoolSeed); err != nil {
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
	if msg.SignalProvider != header.SignalProvider {
		return types.ErrMissingSignature.Wrap("a wrong signal provider account was provided")
	}
	if !signers.Signed(msg.SignalProvider) {
		return types.ErrMissingSignature.Wrap("the signal provider's signature is required")
	}

	cancel := serum.CancelParams{
		Market:     msg.Market,
		OpenOrders: msg.OpenOrders,
		Owner:      msg.Pool,
		Side:       msg.Side,
		OrderID:    msg.OrderID,
	}
	if err = k.market.CancelOrder(ctx, msg.Pool, cancel); err != nil {
		return err
	}

	k.logger.Info("order cancelled",
		"pool", msg.Pool,
		"market", msg.Market,
		"side", msg.Side,
		"order_id", msg.OrderID,
	)
	return nil
}
