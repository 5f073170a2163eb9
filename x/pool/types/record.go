package types

import (
	"github.com/openalpha/signalpool/pkg/solkey"
)

// PoolAsset is one asset slot of the record: the mint identity of an
// underlying asset the pool holds. A zero mint marks an unoccupied slot.
type PoolAsset struct {
	Mint solkey.Key
}

// Initialized reports whether the slot has been claimed by an asset type.
// Once claimed, a slot's mint is immutable for the life of the pool cycle.
func (a PoolAsset) Initialized() bool {
	return !a.Mint.IsZero()
}

// AssetOffset returns the byte offset of the asset section within a record
// whose whitelist holds numMarkets entries.
func AssetOffset(numMarkets uint16) int {
	return HeaderLen + MarketEntryLen*int(numMarkets)
}

// PackMarkets writes the whitelist into dst, which must hold all entries.
func PackMarkets(dst []byte, markets []solkey.Key) error {
	if len(dst) < MarketEntryLen*len(markets) {
		return ErrInvalidRecord.Wrap("market section too small for whitelist")
	}
	for i, m := range markets {
		copy(dst[MarketEntryLen*i:], m[:])
	}
	return nil
}

// MarketAt reads the whitelisted market identity at index from the market
// section of a record.
func MarketAt(marketData []byte, index uint16) (solkey.Key, error) {
	var k solkey.Key
	offset := MarketEntryLen * int(index)
	if offset+MarketEntryLen > len(marketData) {
		return k, ErrInvalidArgument.Wrapf("market index %d out of range", index)
	}
	copy(k[:], marketData[offset:offset+MarketEntryLen])
	return k, nil
}

// AssetAt reads the asset slot at index from the asset section of a record.
// A zero slot decodes to an uninitialized PoolAsset, never an error.
func AssetAt(assetData []byte, index int) (PoolAsset, error) {
	var a PoolAsset
	offset := AssetLen * index
	if index < 0 || offset+AssetLen > len(assetData) {
		return a, ErrInvalidArgument.Wrapf("asset index %d out of range", index)
	}
	copy(a.Mint[:], assetData[offset:offset+AssetLen])
	return a, nil
}

// WriteAssetAt writes the asset slot at index into the asset section.
func WriteAssetAt(assetData []byte, index int, a PoolAsset) error {
	offset := AssetLen * index
	if index < 0 || offset+AssetLen > len(assetData) {
		return ErrInvalidArgument.Wrapf("asset index %d out of range", index)
	}
	copy(assetData[offset:offset+AssetLen], a.Mint[:])
	return nil
}

// ClearAssetAt zeroes the asset slot at index, releasing it.
func ClearAssetAt(assetData []byte, index int) error {
	return WriteAssetAt(assetData, index, PoolAsset{})
}

// UnpackAssets decodes the occupied asset slots of the asset section in slot
// order, skipping unoccupied ones.
func UnpackAssets(assetData []byte) []PoolAsset {
	n := len(assetData) / AssetLen
	assets := make([]PoolAsset, 0, n)
	for i := 0; i < n; i++ {
		a, _ := AssetAt(assetData, i)
		if a.Initialized() {
			assets = append(assets, a)
		}
	}
	return assets
}
