package serum

import (
	"errors"

	"github.com/openalpha/signalpool/pkg/solkey"
)

// Market account offsets for the two currency mints.
const (
	baseMintOffset  = 53
	quoteMintOffset = 85

	marketMinLen = quoteMintOffset + solkey.KeyLength
)

var ErrMarketTooShort = errors.New("serum: market account data too short")

// MarketState is a read-only view over a raw market account.
type MarketState struct {
	data []byte
}

// ParseMarketState validates the buffer length and returns a view over it.
func ParseMarketState(data []byte) (MarketState, error) {
	if len(data) < marketMinLen {
		return MarketState{}, ErrMarketTooShort
	}
	return MarketState{data: data}, nil
}

// BaseMint is the mint of the market's base currency.
func (m MarketState) BaseMint() solkey.Key {
	var k solkey.Key
	copy(k[:], m.data[baseMintOffset:baseMintOffset+solkey.KeyLength])
	return k
}

// QuoteMint is the mint of the market's price currency.
func (m MarketState) QuoteMint() solkey.Key {
	var k solkey.Key
	copy(k[:], m.data[quoteMintOffset:quoteMintOffset+solkey.KeyLength])
	return k
}
