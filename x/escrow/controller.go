package escrow

import (
	"math"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/cash"
)

// deposit moves amount from src into the order's vault and grows the
// outstanding amount on the record by the same value. Record and vault
// stay in sync or nothing is written.
func deposit(db custody.KVStore, bucket orm.ModelBucket, control cash.CoinMover,
	esc *Escrow, src custody.Address, amount uint64) error {

	if esc.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "escrow amount")
	}
	if err := control.MoveCoins(db, src, esc.Vault(), amount); err != nil {
		return errors.Wrap(err, "cannot fund vault")
	}
	esc.Amount += amount
	return bucket.Put(db, orderKey(esc.OrderCode), esc)
}

// withdraw pays amount out of the vault to dest and shrinks the outstanding
// amount on the record. The record stays open, possibly at zero.
func withdraw(db custody.KVStore, bucket orm.ModelBucket, control cash.CoinMover,
	esc *Escrow, dest custody.Address, amount uint64) error {

	if amount > esc.Amount {
		return errors.Wrapf(ErrExceedsEscrow, "outstanding %d, asked %d", esc.Amount, amount)
	}
	if err := control.MoveCoins(db, esc.Vault(), dest, amount); err != nil {
		return errors.Wrap(err, "cannot pay out of vault")
	}
	esc.Amount -= amount
	return bucket.Put(db, orderKey(esc.OrderCode), esc)
}

// settle pays the whole outstanding amount to dest, closes the emptied
// vault and deletes the record. The order code is free afterwards.
func settle(db custody.KVStore, bucket orm.ModelBucket, control cash.Controller,
	esc *Escrow, dest custody.Address) error {

	if esc.Amount > 0 {
		if err := control.MoveCoins(db, esc.Vault(), dest, esc.Amount); err != nil {
			return errors.Wrap(err, "cannot pay out of vault")
		}
	}
	if err := control.CloseAccount(db, esc.Vault()); err != nil {
		return errors.Wrap(err, "cannot close vault")
	}
	return bucket.Delete(db, orderKey(esc.OrderCode))
}
