package cash

import (
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet is the balance of a single ledger account.
type Wallet struct {
	Balance uint64
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(w)
}

func (w *Wallet) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, w)
}

// Validate ensures the wallet is valid. Any balance is.
func (w *Wallet) Validate() error {
	return nil
}

// Copy makes a new wallet with the same balance
func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{Balance: w.Balance}
}

// NewBucket initializes the wallet bucket with the default name
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
