// Package types holds the pool record's binary layout, its lifecycle status
// machine, and the request/parameter types of the pool program.
//
// A pool record is one contiguous fixed-size buffer:
//
//	[0, 117)              header
//	[117, 117+32·m)       market whitelist, m = NumberOfMarkets
//	[117+32·m, end)       asset slots, 32 bytes each, zero mint = unoccupied
//
// All integers are little-endian; there is no padding.
package types

import (
	"encoding/binary"

	"github.com/openalpha/signalpool/pkg/solkey"
)

// ModuleName identifies this module in error codes, logs, and metrics.
const ModuleName = "pool"

const (
	// HeaderLen is the exact encoded size of a PoolHeader.
	HeaderLen = 117
	// MarketEntryLen is the encoded size of one whitelisted market identity.
	MarketEntryLen = solkey.KeyLength
	// AssetLen is the encoded size of one asset slot.
	AssetLen = solkey.KeyLength

	// MinFeeCollectionPeriod is the create-time floor on the fee period:
	// one week in seconds. It is not re-validated on later operations.
	MinFeeCollectionPeriod = 604800

	// InitialShareSupply is minted to the creator when a pool is created.
	InitialShareSupply = 1_000_000

	// MintBumpSeed disambiguates the share mint from the pool record in
	// address derivation.
	MintBumpSeed = 1
)

// Header field offsets.
const (
	marketProgramOffset = 0
	seedOffset          = 32
	signalProviderOff   = 64
	statusOffset        = 96
	numMarketsOffset    = 97
	feeRatioOffset      = 99
	lastFeeOffset       = 101
	feePeriodOffset     = 109
)

// PoolHeader is the fixed 117-byte head of a pool record.
type PoolHeader struct {
	// MarketProgram is the external order-book program this pool trades on.
	MarketProgram solkey.Key
	// Seed anchors every derived address owned by the pool.
	Seed [32]byte
	// SignalProvider may lock the pool, place and cancel orders, and earns
	// half of all fees.
	SignalProvider solkey.Key
	Status         PoolStatus
	// NumberOfMarkets sizes the whitelist section; immutable after create.
	NumberOfMarkets uint16
	// FeeRatio is the per-period fee fraction in 1/65536 units.
	FeeRatio uint16
	// LastFeeCollection is the unix timestamp the fee schedule is anchored
	// to; it advances by whole periods only.
	LastFeeCollection   uint64
	FeeCollectionPeriod uint64
}

// RecordSize returns the full record size for a pool tracking numMarkets
// whitelisted markets and up to maxAssets asset slots.
func RecordSize(numMarkets uint16, maxAssets uint32) int {
	return HeaderLen + MarketEntryLen*int(numMarkets) + AssetLen*int(maxAssets)
}

// PackHeader encodes h into dst, which must be exactly HeaderLen bytes.
func PackHeader(h PoolHeader, dst []byte) error {
	if len(dst) != HeaderLen {
		return ErrInvalidRecord.Wrapf("header buffer is %d bytes, want %d", len(dst), HeaderLen)
	}
	copy(dst[marketProgramOffset:], h.MarketProgram[:])
	copy(dst[seedOffset:], h.Seed[:])
	copy(dst[signalProviderOff:], h.SignalProvider[:])
	dst[statusOffset] = encodeStatus(h.Status)
	binary.LittleEndian.PutUint16(dst[numMarketsOffset:], h.NumberOfMarkets)
	binary.LittleEndian.PutUint16(dst[feeRatioOffset:], h.FeeRatio)
	binary.LittleEndian.PutUint64(dst[lastFeeOffset:], h.LastFeeCollection)
	binary.LittleEndian.PutUint64(dst[feePeriodOffset:], h.FeeCollectionPeriod)
	return nil
}

// UnpackHeaderUnchecked decodes a header without requiring the record to
// hold a live pool. src must be exactly HeaderLen bytes.
func UnpackHeaderUnchecked(src []byte) (PoolHeader, error) {
	var h PoolHeader
	if len(src) != HeaderLen {
		return h, ErrInvalidRecord.Wrapf("header buffer is %d bytes, want %d", len(src), HeaderLen)
	}
	copy(h.MarketProgram[:], src[marketProgramOffset:seedOffset])
	copy(h.Seed[:], src[seedOffset:signalProviderOff])
	copy(h.SignalProvider[:], src[signalProviderOff:statusOffset])
	status, err := decodeStatus(src[statusOffset])
	if err != nil {
		return h, err
	}
	h.Status = status
	h.NumberOfMarkets = binary.LittleEndian.Uint16(src[numMarketsOffset:])
	h.FeeRatio = binary.LittleEndian.Uint16(src[feeRatioOffset:])
	h.LastFeeCollection = binary.LittleEndian.Uint64(src[lastFeeOffset:])
	h.FeeCollectionPeriod = binary.LittleEndian.Uint64(src[feePeriodOffset:])
	return h, nil
}

// UnpackHeader decodes a header and requires it to hold a live pool.
func UnpackHeader(src []byte) (PoolHeader, error) {
	h, err := UnpackHeaderUnchecked(src)
	if err != nil {
		return h, err
	}
	if !h.Status.Initialized() {
		return h, ErrUninitializedPool
	}
	return h, nil
}
