// Package serum provides narrow read-only views over the external order-book
// program's account layouts, plus the parameter types for calls into it. The
// byte offsets here are a contract with that program's storage format; any
// layout drift is a one-place change in this package.
package serum

import (
	"encoding/binary"
	"errors"
)

// Open-orders account offsets. Base-currency quantities sit below the
// price-currency quantities, free below total within each pair.
const (
	freeBaseOffset   = 77
	totalBaseOffset  = 85
	freeQuoteOffset  = 93
	totalQuoteOffset = 101

	openOrdersMinLen = totalQuoteOffset + 8
)

var ErrOpenOrdersTooShort = errors.New("serum: open-orders account data too short")

// OpenOrders is a read-only view over a raw open-orders account.
type OpenOrders struct {
	data []byte
}

// ParseOpenOrders validates the buffer length and returns a view over it.
// The buffer is not copied.
func ParseOpenOrders(data []byte) (OpenOrders, error) {
	if len(data) < openOrdersMinLen {
		return OpenOrders{}, ErrOpenOrdersTooShort
	}
	return OpenOrders{data: data}, nil
}

// FreeBase is the settled, withdrawable base-currency quantity.
func (o OpenOrders) FreeBase() uint64 {
	return binary.LittleEndian.Uint64(o.data[freeBaseOffset:])
}

// TotalBase is the full base-currency quantity tracked by the account,
// settled or not.
func (o OpenOrders) TotalBase() uint64 {
	return binary.LittleEndian.Uint64(o.data[totalBaseOffset:])
}

// FreeQuote is the settled, withdrawable price-currency quantity.
func (o OpenOrders) FreeQuote() uint64 {
	return binary.LittleEndian.Uint64(o.data[freeQuoteOffset:])
}

// TotalQuote is the full price-currency quantity tracked by the account.
func (o OpenOrders) TotalQuote() uint64 {
	return binary.LittleEndian.Uint64(o.data[totalQuoteOffset:])
}

// Idle reports whether the account tracks no quantity on either leg, i.e. a
// fresh order placed through it opens a new pending slot.
func (o OpenOrders) Idle() bool {
	return o.TotalBase() == 0 && o.TotalQuote() == 0
}

// FullyDrained reports whether every tracked quantity is free on both legs,
// meaning the account's orders can be settled out entirely.
func (o OpenOrders) FullyDrained() bool {
	return o.FreeBase() == o.TotalBase() && o.FreeQuote() == o.TotalQuote()
}

// NothingFree reports whether there is no settled quantity to withdraw on
// either leg.
func (o OpenOrders) NothingFree() bool {
	return o.FreeBase() == 0 && o.FreeQuote() == 0
}
