package types

import "fmt"

// PoolMode is the lifecycle mode of a pool record.
type PoolMode uint8

const (
	ModeUninitialized PoolMode = iota
	ModeUnlocked
	ModeLocked
	ModePendingOrder
	ModeLockedPendingOrder
)

// MaxPendingOrders bounds concurrently unsettled orders per pool. The count
// is stored in the low six bits of the status byte as count-1.
const MaxPendingOrders = 64

// Status byte layout: top two bits select the mode, low six bits carry the
// pending count minus one. The raw zero byte is reserved for Uninitialized.
const (
	statusPendingFlag  = 1 << 6
	statusLockedFlag   = 2 << 6
	statusPendingMask  = 0x3f
	statusUnlockedByte = statusPendingMask
)

// PoolStatus is the tagged lifecycle state of a pool. PendingCount is
// meaningful only in the two Pending modes, where it stays within
// 1..MaxPendingOrders.
type PoolStatus struct {
	Mode         PoolMode
	PendingCount uint8
}

func Uninitialized() PoolStatus { return PoolStatus{Mode: ModeUninitialized} }
func Unlocked() PoolStatus      { return PoolStatus{Mode: ModeUnlocked} }
func Locked() PoolStatus        { return PoolStatus{Mode: ModeLocked} }

// PendingOrder returns an unlocked status with n unsettled orders.
func PendingOrder(n uint8) PoolStatus {
	return PoolStatus{Mode: ModePendingOrder, PendingCount: n}
}

// LockedPendingOrder returns a locked status with n unsettled orders.
func LockedPendingOrder(n uint8) PoolStatus {
	return PoolStatus{Mode: ModeLockedPendingOrder, PendingCount: n}
}

// Initialized reports whether the record holds a live pool.
func (s PoolStatus) Initialized() bool {
	return s.Mode != ModeUninitialized
}

// IsPending reports whether any order is unsettled.
func (s PoolStatus) IsPending() bool {
	return s.Mode == ModePendingOrder || s.Mode == ModeLockedPendingOrder
}

// IsLocked reports whether the signal provider has suspended deposits and
// redemptions.
func (s PoolStatus) IsLocked() bool {
	return s.Mode == ModeLocked || s.Mode == ModeLockedPendingOrder
}

func (s PoolStatus) String() string {
	switch s.Mode {
	case ModeUninitialized:
		return "uninitialized"
	case ModeUnlocked:
		return "unlocked"
	case ModeLocked:
		return "locked"
	case ModePendingOrder:
		return fmt.Sprintf("pending_order(%d)", s.PendingCount)
	case ModeLockedPendingOrder:
		return fmt.Sprintf("locked_pending_order(%d)", s.PendingCount)
	default:
		return "invalid"
	}
}

// BeginOrder transitions the status for a newly placed order. openedNewSlot
// reports whether the order-tracking slot showed zero outstanding quantity on
// both legs; reusing a slot that is already counted does not increment the
// pending count. The count saturates at MaxPendingOrders with an overflow
// error, and an uninitialized record never accepts a trade.
func (s *PoolStatus) BeginOrder(openedNewSlot bool) error {
	switch s.Mode {
	case ModeUninitialized:
		return ErrUninitializedPool
	case ModeUnlocked:
		*s = PendingOrder(1)
	case ModeLocked:
		*s = LockedPendingOrder(1)
	case ModePendingOrder, ModeLockedPendingOrder:
		if !openedNewSlot {
			// The slot is already counted in the pending orders.
			return nil
		}
		if s.PendingCount == MaxPendingOrders {
			return ErrOverflow.Wrap("maximum number of active orders reached; settle or cancel a pending order")
		}
		s.PendingCount++
	default:
		return ErrInvalidRecord.Wrapf("invalid pool mode %d", s.Mode)
	}
	return nil
}

// CompleteOrder transitions the status when a settlement fully drains an
// order-tracking slot, restoring Unlocked or Locked at count zero.
func (s *PoolStatus) CompleteOrder() error {
	switch s.Mode {
	case ModePendingOrder:
		if s.PendingCount == 1 {
			*s = Unlocked()
		} else {
			s.PendingCount--
		}
	case ModeLockedPendingOrder:
		if s.PendingCount == 1 {
			*s = Locked()
		} else {
			s.PendingCount--
		}
	default:
		return ErrInvalidRecord.Wrap("the pool has no pending orders")
	}
	return nil
}

// encodeStatus packs the status into its single-byte representation.
func encodeStatus(s PoolStatus) byte {
	switch s.Mode {
	case ModeUninitialized:
		return 0
	case ModeUnlocked:
		return statusUnlockedByte
	case ModeLocked:
		return statusLockedFlag
	case ModePendingOrder:
		return statusPendingFlag | (statusPendingMask & (s.PendingCount - 1))
	case ModeLockedPendingOrder:
		return statusLockedFlag | statusPendingFlag | (statusPendingMask & (s.PendingCount - 1))
	default:
		return 0
	}
}

// decodeStatus unpacks a status byte. Only the raw zero byte maps to
// Uninitialized; any other value selects a mode from its top two bits.
func decodeStatus(b byte) (PoolStatus, error) {
	if b == 0 {
		return Uninitialized(), nil
	}
	count := (b & statusPendingMask) + 1
	switch b >> 6 {
	case 0:
		return Unlocked(), nil
	case 1:
		return PendingOrder(count), nil
	case 2:
		return Locked(), nil
	case 3:
		return LockedPendingOrder(count), nil
	default:
		return PoolStatus{}, ErrInvalidArgument.Wrapf("invalid status byte %#x", b)
	}
}
