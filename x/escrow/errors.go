package escrow

import "github.com/iov-one/custody/errors"

// Error codes 1010-1019 are reserved for the escrow extension.
var (
	// ErrAccountMismatch is returned when the ledger accounts supplied
	// with an operation do not match the ones bound to the escrow record.
	ErrAccountMismatch = errors.Register(1010, "account does not match escrow record")

	// ErrExceedsEscrow is returned when a partial settlement asks for more
	// than the outstanding escrowed amount.
	ErrExceedsEscrow = errors.Register(1011, "amount exceeds outstanding escrow")
)
