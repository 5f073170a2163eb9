package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/openalpha/signalpool/pkg/solkey"
)

func testKey(fill byte) solkey.Key {
	var k solkey.Key
	for i := range k {
		k[i] = fill
	}
	return k
}

func TestHeaderRoundTrip(t *testing.T) {
	header := PoolHeader{
		MarketProgram:       testKey(0xaa),
		Seed:                [32]byte{1, 2, 3},
		SignalProvider:      testKey(0xbb),
		Status:              PendingOrder(39),
		NumberOfMarkets:     234,
		FeeRatio:            15,
		LastFeeCollection:   1_000_000_000,
		FeeCollectionPeriod: 10_000,
	}

	buf := make([]byte, HeaderLen)
	if err := PackHeader(header, buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := UnpackHeader(buf)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got != header {
		t.Errorf("round trip: got %+v, want %+v", got, header)
	}
}

func TestHeaderRoundTripAllStatuses(t *testing.T) {
	statuses := []PoolStatus{Unlocked(), Locked()}
	for n := uint8(1); n <= MaxPendingOrders; n++ {
		statuses = append(statuses, PendingOrder(n), LockedPendingOrder(n))
	}
	buf := make([]byte, HeaderLen)
	for _, status := range statuses {
		header := PoolHeader{Status: status, NumberOfMarkets: 1}
		if err := PackHeader(header, buf); err != nil {
			t.Fatalf("pack %v: %v", status, err)
		}
		got, err := UnpackHeader(buf)
		if err != nil {
			t.Fatalf("unpack %v: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("status round trip: got %v, want %v", got.Status, status)
		}
	}
}

func TestUnpackHeaderRejectsUninitialized(t *testing.T) {
	buf := make([]byte, HeaderLen)
	if err := PackHeader(PoolHeader{Status: Uninitialized()}, buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if _, err := UnpackHeader(buf); !errors.Is(err, ErrUninitializedPool) {
		t.Errorf("unpack: got %v, want uninitialized pool", err)
	}
	// The unchecked variant still decodes it.
	h, err := UnpackHeaderUnchecked(buf)
	if err != nil {
		t.Fatalf("unpack unchecked: %v", err)
	}
	if h.Status != Uninitialized() {
		t.Errorf("unchecked status: got %v", h.Status)
	}
}

func TestHeaderBufferSize(t *testing.T) {
	if err := PackHeader(PoolHeader{}, make([]byte, HeaderLen-1)); err == nil {
		t.Error("pack into short buffer: want error")
	}
	if _, err := UnpackHeaderUnchecked(make([]byte, HeaderLen+1)); err == nil {
		t.Error("unpack long buffer: want error")
	}
}

func TestRecordSize(t *testing.T) {
	tests := []struct {
		markets uint16
		assets  uint32
		want    int
	}{
		{0, 0, 117},
		{1, 1, 117 + 32 + 32},
		{3, 10, 117 + 96 + 320},
	}
	for _, tt := range tests {
		if got := RecordSize(tt.markets, tt.assets); got != tt.want {
			t.Errorf("RecordSize(%d, %d) = %d, want %d", tt.markets, tt.assets, got, tt.want)
		}
	}
}

func TestMarketPacking(t *testing.T) {
	markets := []solkey.Key{testKey(1), testKey(2), testKey(3)}
	buf := make([]byte, MarketEntryLen*len(markets))
	if err := PackMarkets(buf, markets); err != nil {
		t.Fatalf("pack markets: %v", err)
	}
	for i, want := range markets {
		got, err := MarketAt(buf, uint16(i))
		if err != nil {
			t.Fatalf("market %d: %v", i, err)
		}
		if got != want {
			t.Errorf("market %d: got %v, want %v", i, got, want)
		}
	}
	if _, err := MarketAt(buf, uint16(len(markets))); err == nil {
		t.Error("market out of range: want error")
	}
	if err := PackMarkets(make([]byte, MarketEntryLen), markets); err == nil {
		t.Error("pack into short section: want error")
	}
}

func TestAssetSlots(t *testing.T) {
	buf := make([]byte, AssetLen*4)
	for i, mint := range []solkey.Key{testKey(1), testKey(2)} {
		if err := WriteAssetAt(buf, i, PoolAsset{Mint: mint}); err != nil {
			t.Fatalf("write asset %d: %v", i, err)
		}
	}

	// Only the two occupied slots decode.
	assets := UnpackAssets(buf)
	if len(assets) != 2 {
		t.Fatalf("unpack: got %d assets, want 2", len(assets))
	}
	if assets[0].Mint != testKey(1) || assets[1].Mint != testKey(2) {
		t.Errorf("unpack: got mints %v, %v", assets[0].Mint, assets[1].Mint)
	}

	if err := ClearAssetAt(buf, 0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	a, err := AssetAt(buf, 0)
	if err != nil {
		t.Fatalf("read cleared slot: %v", err)
	}
	if a.Initialized() {
		t.Error("cleared slot still initialized")
	}
	if !bytes.Equal(buf[:AssetLen], make([]byte, AssetLen)) {
		t.Error("cleared slot not zeroed")
	}

	if _, err := AssetAt(buf, 4); err == nil {
		t.Error("asset out of range: want error")
	}
	if err := WriteAssetAt(buf, -1, PoolAsset{}); err == nil {
		t.Error("negative asset index: want error")
	}
}
