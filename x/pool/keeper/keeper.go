// Package keeper implements the pool program's seven operations on top of
// the host's account database and the external token ledger and order-book
// programs.
package keeper

import (
	"context"

	"cosmossdk.io/log"

	"github.com/openalpha/signalpool/metrics"
	"github.com/openalpha/signalpool/pkg/serum"
	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/types"
)

// TokenAccount is the ledger's view of one fungible token account.
type TokenAccount struct {
	Mint   solkey.Key
	Owner  solkey.Key
	Amount uint64
	// Delegate and CloseAuthority are set only when the account carries the
	// corresponding authority.
	Delegate       *solkey.Key
	CloseAuthority *solkey.Key
}

// TokenLedger defines the expected interface of the external fungible-token
// program.
type TokenLedger interface {
	Account(ctx context.Context, key solkey.Key) (TokenAccount, error)
	MintSupply(ctx context.Context, mint solkey.Key) (uint64, error)
	InitializeMint(ctx context.Context, mint, authority solkey.Key, decimals uint8) error
	Transfer(ctx context.Context, source, destination, owner solkey.Key, amount uint64) error
	MintTo(ctx context.Context, mint, destination, authority solkey.Key, amount uint64) error
	Burn(ctx context.Context, account, mint, owner solkey.Key, amount uint64) error
}

// MarketClient defines the expected interface of the external order-book
// program. The owner argument is the pool identity the program signs for.
type MarketClient interface {
	NewOrder(ctx context.Context, owner solkey.Key, params serum.NewOrderParams) error
	SettleFunds(ctx context.Context, owner solkey.Key, params serum.SettleParams) error
	CancelOrder(ctx context.Context, owner solkey.Key, params serum.CancelParams) error
}

// StateStore defines the expected interface of the host's account database.
// Data returns a private copy; mutations land only through SetData.
type StateStore interface {
	Owner(ctx context.Context, key solkey.Key) (solkey.Key, error)
	Data(ctx context.Context, key solkey.Key) ([]byte, error)
	SetData(ctx context.Context, key solkey.Key, data []byte) error
	Allocate(ctx context.Context, key, owner solkey.Key, size int, payer solkey.Key) error
}

// Clock reports the host's notion of current unix time.
type Clock interface {
	Now(ctx context.Context) uint64
}

// Keeper runs the pool operations
type Keeper struct {
	params  types.Params
	ledger  TokenLedger
	market  MarketClient
	store   StateStore
	clock   Clock
	logger  log.Logger
	metrics *metrics.Collector
}

// NewKeeper creates a new pool keeper
func NewKeeper(
	params types.Params,
	ledger TokenLedger,
	market MarketClient,
	store StateStore,
	clock Clock,
	logger log.Logger,
) (*Keeper, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Keeper{
		params:  params,
		ledger:  ledger,
		market:  market,
		store:   store,
		clock:   clock,
		logger:  logger.With("module", "x/"+types.ModuleName),
		metrics: metrics.GetCollector(),
	}, nil
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// Params returns the deployment parameters
func (k *Keeper) Params() types.Params {
	return k.params
}

// PoolKey derives the pool record identity for a seed.
func (k *Keeper) PoolKey(seed [32]byte) (solkey.Key, error) {
	return solkey.CreateProgramAddress([][]byte{seed[:]}, k.params.ProgramID)
}

// MintKey derives the share mint identity for a seed.
func (k *Keeper) MintKey(seed [32]byte) (solkey.Key, error) {
	return solkey.CreateProgramAddress([][]byte{seed[:], {types.MintBumpSeed}}, k.params.ProgramID)
}

// checkPoolKey verifies that the given pool identity derives from the seed.
func (k *Keeper) checkPoolKey(pool solkey.Key, seed [32]byte) error {
	expected, err := k.PoolKey(seed)
	if err != nil {
		return err
	}
	if expected != pool {
		return types.ErrInvalidArgument.Wrap("provided pool account does not match the provided pool seed")
	}
	return nil
}

// checkMintKey verifies that the given mint identity derives from the seed.
func (k *Keeper) checkMintKey(mint solkey.Key, seed [32]byte) error {
	expected, err := k.MintKey(seed)
	if err != nil {
		return err
	}
	if expected != mint {
		return types.ErrInvalidArgument.Wrap("provided mint account is invalid")
	}
	return nil
}

// loadRecord fetches a pool record owned by this program. The returned bytes
// are the caller's to mutate; nothing persists until persistRecord.
func (k *Keeper) loadRecord(ctx context.Context, pool solkey.Key) ([]byte, error) {
	owner, err := k.store.Owner(ctx, pool)
	if err != nil {
		return nil, err
	}
	if owner != k.params.ProgramID {
		return nil, types.ErrInvalidArgument.Wrap("program should own pool account")
	}
	return k.store.Data(ctx, pool)
}

// persistRecord writes the record back. Every operation calls this exactly
// once, after all external calls have succeeded.
func (k *Keeper) persistRecord(ctx context.Context, pool solkey.Key, data []byte) error {
	return k.store.SetData(ctx, pool, data)
}

// observe records an operation's outcome for the metrics collector and logs
// failures.
func (k *Keeper) observe(op string, err error) {
	if err != nil {
		k.metrics.RecordOperation(op, "error")
		k.logger.Error("operation failed", "operation", op, "error", err)
		return
	}
	k.metrics.RecordOperation(op, "ok")
}
