package cash

import "github.com/iov-one/custody/errors"

// Error codes 1020-1029 are reserved for the cash extension.
var (
	// ErrInsufficientFunds is returned when a transfer asks for more than
	// the source account holds.
	ErrInsufficientFunds = errors.Register(1020, "insufficient funds")
)
