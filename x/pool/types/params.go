package types

import (
	"github.com/openalpha/signalpool/pkg/solkey"
)

// Params carries the deployment-level identities the program validates
// against. They are injected rather than embedded so tests and alternate
// deployments can substitute their own.
type Params struct {
	// ProgramID is this program's own identity; every pool record slot must
	// be owned by it, and all derived addresses are anchored to it.
	ProgramID solkey.Key
	// TokenProgram is the external fungible-token ledger service.
	TokenProgram solkey.Key
	// PlatformFeeWallet receives a quarter of every fee.
	PlatformFeeWallet solkey.Key
	// BuyAndBurnWallet receives the fee remainder after the signal provider
	// and platform cuts.
	BuyAndBurnWallet solkey.Key
	// ShareDecimals is the decimal count of every pool share mint.
	ShareDecimals uint8
}

// NewParams builds Params with the default share decimal count.
func NewParams(programID, tokenProgram, platformFee, buyAndBurn solkey.Key) Params {
	return Params{
		ProgramID:         programID,
		TokenProgram:      tokenProgram,
		PlatformFeeWallet: platformFee,
		BuyAndBurnWallet:  buyAndBurn,
		ShareDecimals:     6,
	}
}

// Validate rejects zero identities.
func (p Params) Validate() error {
	if p.ProgramID.IsZero() {
		return ErrInvalidArgument.Wrap("program identity must be set")
	}
	if p.TokenProgram.IsZero() {
		return ErrInvalidArgument.Wrap("token ledger identity must be set")
	}
	if p.PlatformFeeWallet.IsZero() {
		return ErrInvalidArgument.Wrap("platform fee wallet must be set")
	}
	if p.BuyAndBurnWallet.IsZero() {
		return ErrInvalidArgument.Wrap("buy-and-burn wallet must be set")
	}
	return nil
}

// SignerSet carries the invocation's verified signers, as established by the
// host runtime. The program checks membership; it never verifies signatures
// itself.
type SignerSet map[solkey.Key]struct{}

// NewSignerSet builds a SignerSet from keys.
func NewSignerSet(keys ...solkey.Key) SignerSet {
	s := make(SignerSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Signed reports whether key signed the invocation.
func (s SignerSet) Signed(key solkey.Key) bool {
	_, ok := s[key]
	return ok
}
