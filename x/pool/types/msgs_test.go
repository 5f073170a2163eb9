package types

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/pkg/solkey"
)

func TestMsgValidateBasic(t *testing.T) {
	one := []solkey.Key{testKey(1)}

	tests := []struct {
		name    string
		msg     interface{ ValidateBasic() error }
		wantErr bool
	}{
		{"init ok", &MsgInit{MaxNumberOfAssets: 4}, false},
		{"init no asset slots", &MsgInit{}, true},
		{"create ok", &MsgCreate{
			PoolAssetAccounts:   one,
			SourceAssetAccounts: one,
			DepositAmounts:      []uint64{100},
			FeeCollectionPeriod: MinFeeCollectionPeriod,
		}, false},
		{"create misaligned accounts", &MsgCreate{
			PoolAssetAccounts:   one,
			DepositAmounts:      []uint64{100, 200},
			FeeCollectionPeriod: MinFeeCollectionPeriod,
		}, true},
		{"create short fee period", &MsgCreate{
			PoolAssetAccounts:   one,
			SourceAssetAccounts: one,
			DepositAmounts:      []uint64{100},
			FeeCollectionPeriod: MinFeeCollectionPeriod - 1,
		}, true},
		{"deposit ok", &MsgDeposit{ShareAmount: 1, PoolAssetAccounts: one, SourceAssetAccounts: one}, false},
		{"deposit zero shares", &MsgDeposit{PoolAssetAccounts: one, SourceAssetAccounts: one}, true},
		{"order ok", &MsgCreateOrder{Side: serum.SideBid, LimitPrice: 1, RatioOfPoolToTrade: 1 << 15}, false},
		{"order bad side", &MsgCreateOrder{Side: serum.Side(9), LimitPrice: 1, RatioOfPoolToTrade: 1}, true},
		{"order zero ratio", &MsgCreateOrder{Side: serum.SideAsk, LimitPrice: 1}, true},
		{"settle ok", &MsgSettle{}, false},
		{"settle negative index", &MsgSettle{BaseIndex: -1}, true},
		{"cancel ok", &MsgCancelOrder{Side: serum.SideAsk, OrderID: math.NewInt(42)}, false},
		{"cancel nil order id", &MsgCancelOrder{Side: serum.SideAsk}, true},
		{"redeem ok", &MsgRedeem{ShareAmount: 1, PoolAssetAccounts: one, TargetAssetAccounts: one}, false},
		{"redeem zero shares", &MsgRedeem{PoolAssetAccounts: one, TargetAssetAccounts: one}, true},
		{"collect fees ok", &MsgCollectFees{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.ValidateBasic()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBasic: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
