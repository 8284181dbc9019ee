package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	pathInitializeMsg       = "escrow/initialize"
	pathShippingMsg         = "escrow/shipping"
	pathDeliveredMsg        = "escrow/delivered"
	pathExchangeMsg         = "escrow/exchange"
	pathCancelMsg           = "escrow/cancel"
	pathCancelPartialMsg    = "escrow/cancel_partial"
	pathRefundMsg           = "escrow/refund"
	pathRefundPartialMsg    = "escrow/refund_partial"
	pathAdjudgeMsg          = "escrow/adjudge"
	pathAdjudgePartialMsg   = "escrow/adjudge_partial"
	pathAdjudgeForBuyerMsg  = "escrow/adjudge_for_buyer"
	pathAdjudgeForSellerMsg = "escrow/adjudge_for_seller"
	pathChargeMoreMsg       = "escrow/charge_more"
	pathUpdateTrialDayMsg   = "escrow/update_trial_day"
)

var (
	_ custody.Msg = (*InitializeMsg)(nil)
	_ custody.Msg = (*ShippingMsg)(nil)
	_ custody.Msg = (*DeliveredMsg)(nil)
	_ custody.Msg = (*ExchangeMsg)(nil)
	_ custody.Msg = (*CancelMsg)(nil)
	_ custody.Msg = (*CancelPartialMsg)(nil)
	_ custody.Msg = (*RefundMsg)(nil)
	_ custody.Msg = (*RefundPartialMsg)(nil)
	_ custody.Msg = (*AdjudgeMsg)(nil)
	_ custody.Msg = (*AdjudgePartialMsg)(nil)
	_ custody.Msg = (*AdjudgeForBuyerMsg)(nil)
	_ custody.Msg = (*AdjudgeForSellerMsg)(nil)
	_ custody.Msg = (*ChargeMoreMsg)(nil)
	_ custody.Msg = (*UpdateTrialDayMsg)(nil)
)

// InitializeMsg opens a new order. The buyer signs it and deposits Amount
// from BuyerAccount into the freshly derived vault.
type InitializeMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	Judge         custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	Amount        uint64
	TrialDay      uint32
}

func (InitializeMsg) Path() string { return pathInitializeMsg }

func (m *InitializeMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero deposit")
	}
	return validateAddresses(m.Buyer, m.Seller, m.Judge, m.BuyerAccount, m.SellerAccount)
}

func (m *InitializeMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *InitializeMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// ShippingMsg is the seller declaring the order shipped.
type ShippingMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (ShippingMsg) Path() string { return pathShippingMsg }

func (m *ShippingMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *ShippingMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *ShippingMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// DeliveredMsg is the buyer confirming delivery.
type DeliveredMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (DeliveredMsg) Path() string { return pathDeliveredMsg }

func (m *DeliveredMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *DeliveredMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *DeliveredMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// ExchangeMsg is the seller collecting the full outstanding amount of a
// delivered order. It settles and closes the order.
type ExchangeMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (ExchangeMsg) Path() string { return pathExchangeMsg }

func (m *ExchangeMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *ExchangeMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *ExchangeMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// CancelMsg is the buyer reclaiming the full outstanding amount before
// shipment. It settles and closes the order.
type CancelMsg struct {
	OrderCode    uint64
	Buyer        custody.Address
	BuyerAccount custody.Address
}

func (CancelMsg) Path() string { return pathCancelMsg }

func (m *CancelMsg) Validate() error {
	return validateAddresses(m.Buyer, m.BuyerAccount)
}

func (m *CancelMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *CancelMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// CancelPartialMsg is the buyer reclaiming part of the deposit before
// shipment. The order stays open.
type CancelPartialMsg struct {
	OrderCode    uint64
	Buyer        custody.Address
	BuyerAccount custody.Address
	Amount       uint64
}

func (CancelPartialMsg) Path() string { return pathCancelPartialMsg }

func (m *CancelPartialMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return validateAddresses(m.Buyer, m.BuyerAccount)
}

func (m *CancelPartialMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *CancelPartialMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// RefundMsg is the seller agreeing to a full return after shipment. It only
// resets the status so that the buyer can reclaim through the ordinary
// cancel path. No funds move.
type RefundMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (RefundMsg) Path() string { return pathRefundMsg }

func (m *RefundMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *RefundMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *RefundMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// RefundPartialMsg is the seller returning part of the deposit to the buyer
// after shipment. Funds move immediately and the order stays shipped.
type RefundPartialMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	Amount        uint64
}

func (RefundPartialMsg) Path() string { return pathRefundPartialMsg }

func (m *RefundPartialMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *RefundPartialMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *RefundPartialMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// AdjudgeMsg is the judge ruling on a shipped order by flipping its status.
// The ruling is either a return to created (the buyer may then cancel) or a
// jump to delivered (the seller may then exchange). No funds move.
type AdjudgeMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	Decision      Status
}

func (AdjudgeMsg) Path() string { return pathAdjudgeMsg }

func (m *AdjudgeMsg) Validate() error {
	if m.Decision != StatusCreated && m.Decision != StatusDelivered {
		return errors.Wrapf(errors.ErrInput, "decision %s", m.Decision)
	}
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *AdjudgeMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *AdjudgeMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// AdjudgePartialMsg is the judge awarding part of the deposit to the seller
// on a shipped order. The order stays shipped.
type AdjudgePartialMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	Amount        uint64
}

func (AdjudgePartialMsg) Path() string { return pathAdjudgePartialMsg }

func (m *AdjudgePartialMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *AdjudgePartialMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *AdjudgePartialMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// AdjudgeForBuyerMsg is the judge settling a shipped order fully in the
// buyer's favor. It closes the order.
type AdjudgeForBuyerMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (AdjudgeForBuyerMsg) Path() string { return pathAdjudgeForBuyerMsg }

func (m *AdjudgeForBuyerMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *AdjudgeForBuyerMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *AdjudgeForBuyerMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// AdjudgeForSellerMsg is the judge settling a shipped order fully in the
// seller's favor. It closes the order.
type AdjudgeForSellerMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
}

func (AdjudgeForSellerMsg) Path() string { return pathAdjudgeForSellerMsg }

func (m *AdjudgeForSellerMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *AdjudgeForSellerMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *AdjudgeForSellerMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// ChargeMoreMsg is the buyer topping up the escrowed amount of an open,
// not yet delivered order.
type ChargeMoreMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	Amount        uint64
}

func (ChargeMoreMsg) Path() string { return pathChargeMoreMsg }

func (m *ChargeMoreMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *ChargeMoreMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *ChargeMoreMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// UpdateTrialDayMsg is the judge rewriting the stored trial day of an open
// order. No transition reads the value; it is kept for the parties.
type UpdateTrialDayMsg struct {
	OrderCode     uint64
	Buyer         custody.Address
	Seller        custody.Address
	BuyerAccount  custody.Address
	SellerAccount custody.Address
	TrialDay      uint32
}

func (UpdateTrialDayMsg) Path() string { return pathUpdateTrialDayMsg }

func (m *UpdateTrialDayMsg) Validate() error {
	return validateAddresses(m.Buyer, m.Seller, m.BuyerAccount, m.SellerAccount)
}

func (m *UpdateTrialDayMsg) Marshal() ([]byte, error) { return cdc.MarshalBinaryBare(m) }
func (m *UpdateTrialDayMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

// validateAddresses returns an error if any address doesn't validate
func validateAddresses(addrs ...custody.Address) error {
	for _, a := range addrs {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
