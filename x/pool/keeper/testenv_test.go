package keeper

import (
	"context"
	"encoding/binary"
	"testing"

	"cosmossdk.io/log"

	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// fakeLedger is an in-memory token ledger.
type fakeLedger struct {
	accounts map[solkey.Key]*TokenAccount
	supply   map[solkey.Key]uint64
	mintAuth map[solkey.Key]solkey.Key
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: make(map[solkey.Key]*TokenAccount),
		supply:   make(map[solkey.Key]uint64),
		mintAuth: make(map[solkey.Key]solkey.Key),
	}
}

func (l *fakeLedger) addAccount(key, mint, owner solkey.Key, amount uint64) {
	l.accounts[key] = &TokenAccount{Mint: mint, Owner: owner, Amount: amount}
}

func (l *fakeLedger) Account(ctx context.Context, key solkey.Key) (TokenAccount, error) {
	a, ok := l.accounts[key]
	if !ok {
		return TokenAccount{}, types.ErrInvalidArgument.Wrap("unknown token account")
	}
	return *a, nil
}

func (l *fakeLedger) MintSupply(ctx context.Context, mint solkey.Key) (uint64, error) {
	if _, ok := l.mintAuth[mint]; !ok {
		return 0, types.ErrInvalidArgument.Wrap("unknown mint")
	}
	return l.supply[mint], nil
}

func (l *fakeLedger) InitializeMint(ctx context.Context, mint, authority solkey.Key, decimals uint8) error {
	if _, ok := l.mintAuth[mint]; ok {
		return types.ErrInvalidArgument.Wrap("mint already initialized")
	}
	l.mintAuth[mint] = authority
	return nil
}

func (l *fakeLedger) Transfer(ctx context.Context, source, destination, owner solkey.Key, amount uint64) error {
	src, ok := l.accounts[source]
	if !ok {
		return types.ErrInvalidArgument.Wrap("unknown source account")
	}
	dst, ok := l.accounts[destination]
	if !ok {
		return types.ErrInvalidArgument.Wrap("unknown destination account")
	}
	if src.Owner != owner {
		return types.ErrMissingSignature.Wrap("owner mismatch")
	}
	if src.Mint != dst.Mint {
		return types.ErrInvalidArgument.Wrap("mint mismatch")
	}
	if src.Amount < amount {
		return types.ErrInsufficientFunds.Wrap("insufficient balance")
	}
	src.Amount -= amount
	dst.Amount += amount
	return nil
}

func (l *fakeLedger) MintTo(ctx context.Context, mint, destination, authority solkey.Key, amount uint64) error {
	auth, ok := l.mintAuth[mint]
	if !ok {
		return types.ErrInvalidArgument.Wrap("unknown mint")
	}
	if auth != authority {
		return types.ErrMissingSignature.Wrap("mint authority mismatch")
	}
	dst, ok := l.accounts[destination]
	if !ok || dst.Mint != mint {
		return types.ErrInvalidArgument.Wrap("invalid destination account")
	}
	dst.Amount += amount
	l.supply[mint] += amount
	return nil
}

func (l *fakeLedger) Burn(ctx context.Context, account, mint, owner solkey.Key, amount uint64) error {
	a, ok := l.accounts[account]
	if !ok || a.Mint != mint {
		return types.ErrInvalidArgument.Wrap("invalid token account")
	}
	if a.Owner != owner {
		return types.ErrMissingSignature.Wrap("owner mismatch")
	}
	if a.Amount < amount {
		return types.ErrInsufficientFunds.Wrap("insufficient balance")
	}
	a.Amount -= amount
	l.supply[mint] -= amount
	return nil
}

// fakeStore is an in-memory account database.
type fakeStore struct {
	owners map[solkey.Key]solkey.Key
	data   map[solkey.Key][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		owners: make(map[solkey.Key]solkey.Key),
		data:   make(map[solkey.Key][]byte),
	}
}

func (s *fakeStore) put(key, owner solkey.Key, data []byte) {
	s.owners[key] = owner
	s.data[key] = append([]byte(nil), data...)
}

func (s *fakeStore) Owner(ctx context.Context, key solkey.Key) (solkey.Key, error) {
	owner, ok := s.owners[key]
	if !ok {
		return solkey.Key{}, types.ErrInvalidArgument.Wrap("unknown account")
	}
	return owner, nil
}

func (s *fakeStore) Data(ctx context.Context, key solkey.Key) ([]byte, error) {
	data, ok := s.data[key]
	if !ok {
		return nil, types.ErrInvalidArgument.Wrap("unknown account")
	}
	return append([]byte(nil), data...), nil
}

func (s *fakeStore) SetData(ctx context.Context, key solkey.Key, data []byte) error {
	if _, ok := s.data[key]; !ok {
		return types.ErrInvalidArgument.Wrap("unknown account")
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Allocate(ctx context.Context, key, owner solkey.Key, size int, payer solkey.Key) error {
	if _, ok := s.data[key]; ok {
		return types.ErrPoolAlreadyExists.Wrap("account already allocated")
	}
	s.owners[key] = owner
	s.data[key] = make([]byte, size)
	return nil
}

// fakeMarket records calls into the order-book program.
type fakeMarket struct {
	newOrders []serum.NewOrderParams
	settles   []serum.SettleParams
	cancels   []serum.CancelParams
	failWith  error
}

func (m *fakeMarket) NewOrder(ctx context.Context, owner solkey.Key, params serum.NewOrderParams) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.newOrders = append(m.newOrders, params)
	return nil
}

func (m *fakeMarket) SettleFunds(ctx context.Context, owner solkey.Key, params serum.SettleParams) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.settles = append(m.settles, params)
	return nil
}

func (m *fakeMarket) CancelOrder(ctx context.Context, owner solkey.Key, params serum.CancelParams) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.cancels = append(m.cancels, params)
	return nil
}

type fakeClock struct {
	now uint64
}

func (c *fakeClock) Now(ctx context.Context) uint64 { return c.now }

func key(fill byte) solkey.Key {
	var k solkey.Key
	for i := range k {
		k[i] = fill
	}
	return k
}

// testEnv wires a keeper to in-memory collaborators.
type testEnv struct {
	t      *testing.T
	ctx    context.Context
	k      *Keeper
	params types.Params
	ledger *fakeLedger
	store  *fakeStore
	market *fakeMarket
	clock  *fakeClock

	seed [32]byte
	pool solkey.Key
	mint solkey.Key

	creator        solkey.Key
	signalProvider solkey.Key
	payer          solkey.Key
	creatorShare   solkey.Key
	marketProgram  solkey.Key

	poolAssets   []solkey.Key
	sourceAssets []solkey.Key
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	params := types.NewParams(key(0xA0), key(0xA1), key(0xA2), key(0xA3))
	ledger := newFakeLedger()
	store := newFakeStore()
	market := &fakeMarket{}
	clock := &fakeClock{now: 1_700_000_000}
	k, err := NewKeeper(params, ledger, market, store, clock, log.NewNopLogger())
	if err != nil {
		t.Fatalf("new keeper: %v", err)
	}
	e := &testEnv{
		t:              t,
		ctx:            context.Background(),
		k:              k,
		params:         params,
		ledger:         ledger,
		store:          store,
		market:         market,
		clock:          clock,
		creator:        key(0xB0),
		signalProvider: key(0xB1),
		payer:          key(0xB2),
		creatorShare:   key(0xC0),
		marketProgram:  key(0xB3),
	}
	e.seed, e.pool, e.mint = findSeed(t, k)
	return e
}

// findSeed grinds for a seed whose pool and mint identities both derive.
func findSeed(t *testing.T, k *Keeper) ([32]byte, solkey.Key, solkey.Key) {
	t.Helper()
	var seed [32]byte
	seed[31] = 0x5e
	for i := 0; i < 4096; i++ {
		binary.LittleEndian.PutUint16(seed[:], uint16(i))
		pool, err := k.PoolKey(seed)
		if err != nil {
			continue
		}
		mint, err := k.MintKey(seed)
		if err != nil {
			continue
		}
		return seed, pool, mint
	}
	t.Fatal("no viable pool seed found")
	return seed, solkey.Key{}, solkey.Key{}
}

func (e *testEnv) poolATA(mint solkey.Key) solkey.Key {
	e.t.Helper()
	ata, err := solkey.AssociatedTokenAddress(e.pool, mint, e.params.TokenProgram)
	if err != nil {
		e.t.Fatalf("derive associated account: %v", err)
	}
	return ata
}

func (e *testEnv) shareATA(wallet solkey.Key) solkey.Key {
	e.t.Helper()
	ata, err := solkey.AssociatedTokenAddress(wallet, e.mint, e.params.TokenProgram)
	if err != nil {
		e.t.Fatalf("derive associated account: %v", err)
	}
	return ata
}

// feeShareAccounts ensures the three fee recipient share accounts exist and
// returns them in signal provider, platform, buy-and-burn order.
func (e *testEnv) feeShareAccounts() (solkey.Key, solkey.Key, solkey.Key) {
	sp := e.shareATA(e.signalProvider)
	platform := e.shareATA(e.params.PlatformFeeWallet)
	bnb := e.shareATA(e.params.BuyAndBurnWallet)
	for owner, account := range map[solkey.Key]solkey.Key{
		e.signalProvider:           sp,
		e.params.PlatformFeeWallet: platform,
		e.params.BuyAndBurnWallet:  bnb,
	} {
		if _, ok := e.ledger.accounts[account]; !ok {
			e.ledger.addAccount(account, e.mint, owner, 0)
		}
	}
	return sp, platform, bnb
}

// setupPool allocates a record and creates a live pool with the given seed
// deposits and whitelisted markets.
func (e *testEnv) setupPool(deposits []uint64, assetMints, markets []solkey.Key, feeRatio uint16, period uint64) {
	e.t.Helper()

	init := &types.MsgInit{
		TokenProgram:      e.params.TokenProgram,
		Pool:              e.pool,
		Mint:              e.mint,
		Payer:             e.payer,
		PoolSeed:          e.seed,
		MaxNumberOfAssets: 8,
		NumberOfMarkets:   uint16(len(markets)),
	}
	if err := e.k.Init(e.ctx, init); err != nil {
		e.t.Fatalf("init: %v", err)
	}

	e.poolAssets = make([]solkey.Key, len(deposits))
	e.sourceAssets = make([]solkey.Key, len(deposits))
	for i := range deposits {
		ata := e.poolATA(assetMints[i])
		e.ledger.addAccount(ata, assetMints[i], e.pool, 0)
		e.poolAssets[i] = ata

		source := key(0xD0 + byte(i))
		e.ledger.addAccount(source, assetMints[i], e.creator, deposits[i])
		e.sourceAssets[i] = source
	}
	e.ledger.addAccount(e.creatorShare, e.mint, e.creator, 0)

	create := &types.MsgCreate{
		TokenProgram:        e.params.TokenProgram,
		MarketProgram:       e.marketProgram,
		SignalProvider:      e.signalProvider,
		Mint:                e.mint,
		TargetShareAccount:  e.creatorShare,
		Pool:                e.pool,
		PoolAssetAccounts:   e.poolAssets,
		SourceOwner:         e.creator,
		SourceAssetAccounts: e.sourceAssets,
		PoolSeed:            e.seed,
		DepositAmounts:      deposits,
		Markets:             markets,
		FeeCollectionPeriod: period,
		FeeRatio:            feeRatio,
	}
	if err := e.k.Create(e.ctx, types.NewSignerSet(e.creator), create); err != nil {
		e.t.Fatalf("create: %v", err)
	}
}

// header decodes the pool record header as persisted.
func (e *testEnv) header() types.PoolHeader {
	e.t.Helper()
	data, err := e.store.Data(e.ctx, e.pool)
	if err != nil {
		e.t.Fatalf("read record: %v", err)
	}
	h, err := types.UnpackHeaderUnchecked(data[:types.HeaderLen])
	if err != nil {
		e.t.Fatalf("unpack header: %v", err)
	}
	return h
}

// setStatus rewrites the persisted record's status byte.
func (e *testEnv) setStatus(status types.PoolStatus) {
	e.t.Helper()
	data := e.store.data[e.pool]
	h, err := types.UnpackHeaderUnchecked(data[:types.HeaderLen])
	if err != nil {
		e.t.Fatalf("unpack header: %v", err)
	}
	h.Status = status
	if err := types.PackHeader(h, data[:types.HeaderLen]); err != nil {
		e.t.Fatalf("pack header: %v", err)
	}
}

func (e *testEnv) balance(account solkey.Key) uint64 {
	e.t.Helper()
	a, err := e.ledger.Account(e.ctx, account)
	if err != nil {
		e.t.Fatalf("balance of %v: %v", account, err)
	}
	return a.Amount
}

// openOrdersData builds an order-tracking account image with the given free
// and total quantities.
func openOrdersData(freeBase, totalBase, freeQuote, totalQuote uint64) []byte {
	data := make([]byte, 128)
	binary.LittleEndian.PutUint64(data[77:], freeBase)
	binary.LittleEndian.PutUint64(data[85:], totalBase)
	binary.LittleEndian.PutUint64(data[93:], freeQuote)
	binary.LittleEndian.PutUint64(data[101:], totalQuote)
	return data
}

// marketData builds a market account image naming its base and quote mints.
func marketData(baseMint, quoteMint solkey.Key) []byte {
	data := make([]byte, 160)
	copy(data[53:], baseMint[:])
	copy(data[85:], quoteMint[:])
	return data
}
