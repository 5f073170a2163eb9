// Package solkey implements the 32-byte account identities used by the pool
// program and the deterministic address derivation contract of the host
// runtime.
package solkey

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// KeyLength is the byte length of every on-chain identity.
const KeyLength = 32

// maxSeedLength bounds a single derivation seed.
const maxSeedLength = 32

// Key is a raw 32-byte account, mint, or program identity.
type Key [KeyLength]byte

var (
	ErrInvalidKeyLength = errors.New("solkey: key must be 32 bytes")
	ErrSeedTooLong      = errors.New("solkey: derivation seed exceeds 32 bytes")
	// ErrInvalidDerivation is returned when the derived bytes form a valid
	// curve point and therefore cannot serve as a program address.
	ErrInvalidDerivation = errors.New("solkey: derived address is on the curve")
	ErrNoViableBump      = errors.New("solkey: no viable bump seed found")
)

// FromBytes copies b into a Key.
func FromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeyLength {
		return k, ErrInvalidKeyLength
	}
	copy(k[:], b)
	return k, nil
}

// FromString decodes a base58-encoded key.
func FromString(s string) (Key, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Key{}, fmt.Errorf("solkey: decode %q: %w", s, err)
	}
	return FromBytes(raw)
}

// MustFromString is FromString for compile-time constants; it panics on error.
func MustFromString(s string) Key {
	k, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Bytes returns a copy of the raw key bytes.
func (k Key) Bytes() []byte {
	out := make([]byte, KeyLength)
	copy(out, k[:])
	return out
}

// String renders the key in base58.
func (k Key) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether the key is the all-zero identity, which marks an
// unoccupied slot everywhere in the pool record.
func (k Key) IsZero() bool {
	return k == Key{}
}

// pdaMarker terminates the derivation preimage, per the host runtime contract.
var pdaMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress derives the deterministic address for seeds under
// program. The derived bytes must not decode to a curve point; addresses that
// do are rejected so that no private key can ever exist for them. Callers
// that control their seeds search for a viable bump with FindProgramAddress.
func CreateProgramAddress(seeds [][]byte, program Key) (Key, error) {
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return Key{}, ErrSeedTooLong
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write(pdaMarker)

	var out Key
	copy(out[:], h.Sum(nil))
	if isOnCurve(out[:]) {
		return Key{}, ErrInvalidDerivation
	}
	return out, nil
}

// FindProgramAddress searches bump seeds 255 down to 0 for the first viable
// derived address and returns it with the bump that produced it.
func FindProgramAddress(seeds [][]byte, program Key) (Key, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		full := make([][]byte, 0, len(seeds)+1)
		full = append(full, seeds...)
		full = append(full, []byte{byte(bump)})
		addr, err := CreateProgramAddress(full, program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidDerivation) {
			return Key{}, 0, err
		}
	}
	return Key{}, 0, ErrNoViableBump
}

// AssociatedTokenAddress derives the canonical token account holding mint
// balances for wallet under the given token ledger program.
func AssociatedTokenAddress(wallet, mint, tokenProgram Key) (Key, error) {
	addr, _, err := FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		tokenProgram,
	)
	return addr, err
}

func isOnCurve(point []byte) bool {
	if len(point) != KeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
