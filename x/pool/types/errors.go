package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrInvalidInstruction = errors.Register(ModuleName, 1, "invalid instruction")
	ErrOverflow           = errors.Register(ModuleName, 2, "arithmetic operation overflow")
	ErrLockedOperation    = errors.Register(ModuleName, 3, "operation is locked in the current pool state")
	ErrInsufficientFunds  = errors.Register(ModuleName, 4, "insufficient share token balance")
	ErrOperationTooSmall  = errors.Register(ModuleName, 5, "operation too small")

	ErrInvalidRecord     = errors.Register(ModuleName, 6, "pool record data is malformed")
	ErrInvalidArgument   = errors.Register(ModuleName, 7, "invalid argument")
	ErrMissingSignature  = errors.Register(ModuleName, 8, "required signature is missing")
	ErrUninitializedPool = errors.Register(ModuleName, 9, "pool record is uninitialized")
	ErrPoolAlreadyExists = errors.Register(ModuleName, 10, "cannot overwrite an existing pool")
	ErrIncorrectProgram  = errors.Register(ModuleName, 11, "incorrect collaborator program identity")
)
