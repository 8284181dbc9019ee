package cash

import (
	"math"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// CoinMover is the interface that other extensions depend on to move funds.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. It either fully succeeds or fails without any
	// modification.
	MoveCoins(db custody.KVStore, src, dest custody.Address, amount uint64) error
}

// Controller is the full ledger surface consumed by the engine.
type Controller interface {
	CoinMover

	// Balance returns the funds held by the account. A missing account
	// holds nothing.
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error)

	// CreateAccount registers a new, empty account. It fails with
	// ErrDuplicate when the account already exists.
	CreateAccount(db custody.KVStore, owner custody.Address) error

	// CloseAccount deallocates an emptied account. Closing an account that
	// still holds funds fails with ErrState.
	CloseAccount(db custody.KVStore, addr custody.Address) error

	// IssueCoins mints the given amount on the destination account,
	// creating it if needed. Used by callers that provision balances,
	// never by the escrow state machine.
	IssueCoins(db custody.KVStore, dest custody.Address, amount uint64) error
}

// BaseController implements Controller on top of the wallet bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient funds, it fails.
func (c BaseController) MoveCoins(db custody.KVStore, src, dest custody.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}

	var sender Wallet
	switch err := c.bucket.One(db, src, &sender); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(ErrInsufficientFunds, "source %s does not exist", src)
	case err != nil:
		return errors.Wrap(err, "cannot load source")
	}
	if sender.Balance < amount {
		return errors.Wrapf(ErrInsufficientFunds, "balance %d, needed %d", sender.Balance, amount)
	}

	recipient, err := c.getOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot load destination")
	}
	if recipient.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}

	sender.Balance -= amount
	recipient.Balance += amount

	if err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "cannot store source")
	}
	return errors.Wrap(c.bucket.Put(db, dest, recipient), "cannot store destination")
}

// Balance returns the amount the account holds. Missing accounts hold zero.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case errors.ErrNotFound.Is(err):
		return 0, nil
	case err != nil:
		return 0, errors.Wrap(err, "cannot load wallet")
	}
	return w.Balance, nil
}

// CreateAccount registers a new empty wallet.
func (c BaseController) CreateAccount(db custody.KVStore, owner custody.Address) error {
	if err := c.bucket.Has(db, owner); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "account %s", owner)
	}
	return c.bucket.Put(db, owner, &Wallet{})
}

// CloseAccount removes an emptied wallet from the ledger.
func (c BaseController) CloseAccount(db custody.KVStore, addr custody.Address) error {
	var w Wallet
	if err := c.bucket.One(db, addr, &w); err != nil {
		return errors.Wrap(err, "cannot load wallet")
	}
	if w.Balance != 0 {
		return errors.Wrapf(errors.ErrState, "account still holds %d", w.Balance)
	}
	return c.bucket.Delete(db, addr)
}

// IssueCoins attempts to add the given amount of funds to
// the destination account. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db custody.KVStore, dest custody.Address, amount uint64) error {
	recipient, err := c.getOrCreate(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	recipient.Balance += amount
	return c.bucket.Put(db, dest, recipient)
}

func (c BaseController) getOrCreate(db custody.KVStore, addr custody.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case errors.ErrNotFound.Is(err):
		// fresh wallet
	case err != nil:
		return nil, err
	}
	return &w, nil
}
