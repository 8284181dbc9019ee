package custody

// Handler is a core engine that can process a few specific messages.
// This could represent "initialize an escrow", or "settle for the seller".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of an operation.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute an operation.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or atomicity, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// CheckResult captures the result of a successful Check.
type CheckResult struct {
	// Log contains a short human readable summary.
	Log string
}

// DeliverResult captures any output of a successful Deliver.
type DeliverResult struct {
	// Data is the binary payload produced by the operation, typically the
	// key of a created entity.
	Data []byte
	// Log contains a short human readable summary.
	Log string
}
