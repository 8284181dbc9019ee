package escrow

import (
	"encoding/binary"
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the open escrow records
const BucketName = "esc"

// Status tracks how far along its lifecycle an open order is.
// A settled order has no status; its record is deleted.
type Status int32

const (
	StatusCreated   Status = 0
	StatusShipped   Status = 1
	StatusDelivered Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("invalid(%d)", int32(s))
	}
}

// Validate returns an error if the status is not a member of the closed set.
func (s Status) Validate() error {
	switch s {
	case StatusCreated, StatusShipped, StatusDelivered:
		return nil
	default:
		return errors.Wrapf(errors.ErrState, "status %d", int32(s))
	}
}

// Escrow is the per-order record. One exists for every open order and none
// for a settled one.
type Escrow struct {
	// OrderCode identifies the order. It is the bucket key and the vault
	// derivation input, and never changes.
	OrderCode uint64

	// Parties, by the address of their signing condition. Immutable.
	Buyer  custody.Address
	Seller custody.Address
	Judge  custody.Address

	// Bound ledger accounts. The buyer deposits from and is refunded to
	// BuyerAccount, the seller collects on SellerAccount. Immutable.
	BuyerAccount  custody.Address
	SellerAccount custody.Address

	// Amount is the outstanding escrowed value. It equals the vault
	// balance at every point while the record exists.
	Amount uint64

	Status Status

	// DeliveryTime is set once, when the order is initialized.
	DeliveryTime custody.UnixTime

	// TrialDay is stored for the parties but never read by a transition.
	TrialDay uint32
}

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(e)
}

func (e *Escrow) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, e)
}

// Validate ensures the escrow record is valid
func (e *Escrow) Validate() error {
	if err := e.Buyer.Validate(); err != nil {
		return errors.Wrap(err, "buyer")
	}
	if err := e.Seller.Validate(); err != nil {
		return errors.Wrap(err, "seller")
	}
	if err := e.Judge.Validate(); err != nil {
		return errors.Wrap(err, "judge")
	}
	if err := e.BuyerAccount.Validate(); err != nil {
		return errors.Wrap(err, "buyer account")
	}
	if err := e.SellerAccount.Validate(); err != nil {
		return errors.Wrap(err, "seller account")
	}
	if err := e.Status.Validate(); err != nil {
		return err
	}
	if err := e.DeliveryTime.Validate(); err != nil {
		return errors.Wrap(err, "delivery time")
	}
	return nil
}

// Copy makes a deep copy of the record
func (e *Escrow) Copy() orm.CloneableData {
	cpy := *e
	cpy.Buyer = append(custody.Address(nil), e.Buyer...)
	cpy.Seller = append(custody.Address(nil), e.Seller...)
	cpy.Judge = append(custody.Address(nil), e.Judge...)
	cpy.BuyerAccount = append(custody.Address(nil), e.BuyerAccount...)
	cpy.SellerAccount = append(custody.Address(nil), e.SellerAccount...)
	return &cpy
}

// Vault returns the address of this order's custodial holding account.
func (e *Escrow) Vault() custody.Address {
	return VaultAddress(e.OrderCode)
}

// orderKey encodes the order code as the fixed-width bucket key.
func orderKey(orderCode uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, orderCode)
	return bz
}

// VaultCondition derives the capability controlling an order's vault. It is
// a pure function of the order code. No private key corresponds to it, so
// only this package can authorize transfers out of the vault.
func VaultCondition(orderCode uint64) custody.Condition {
	return custody.NewCondition("escrow", "vault", orderKey(orderCode))
}

// VaultAddress derives the address of an order's custodial holding account.
// Any caller can recompute it from the order code alone.
func VaultAddress(orderCode uint64) custody.Address {
	return VaultCondition(orderCode).Address()
}

// NewBucket initializes the escrow record bucket with the default name
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{})
}
