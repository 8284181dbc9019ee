package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, control cash.Controller) {
	bucket := NewBucket()

	r.Handle(pathInitializeMsg, InitializeHandler{auth, bucket, control})
	r.Handle(pathShippingMsg, ShippingHandler{auth, bucket})
	r.Handle(pathDeliveredMsg, DeliveredHandler{auth, bucket})
	r.Handle(pathExchangeMsg, ExchangeHandler{auth, bucket, control})
	r.Handle(pathCancelMsg, CancelHandler{auth, bucket, control})
	r.Handle(pathCancelPartialMsg, CancelPartialHandler{auth, bucket, control})
	r.Handle(pathRefundMsg, RefundHandler{auth, bucket})
	r.Handle(pathRefundPartialMsg, RefundPartialHandler{auth, bucket, control})
	r.Handle(pathAdjudgeMsg, AdjudgeHandler{auth, bucket})
	r.Handle(pathAdjudgePartialMsg, AdjudgePartialHandler{auth, bucket, control})
	r.Handle(pathAdjudgeForBuyerMsg, AdjudgeForBuyerHandler{auth, bucket, control})
	r.Handle(pathAdjudgeForSellerMsg, AdjudgeForSellerHandler{auth, bucket, control})
	r.Handle(pathChargeMoreMsg, ChargeMoreHandler{auth, bucket, control})
	r.Handle(pathUpdateTrialDayMsg, UpdateTrialDayHandler{auth, bucket})
}

// loadEscrow fetches the record for the order code, or fails with ErrNotFound.
func loadEscrow(bucket orm.ModelBucket, db custody.ReadOnlyKVStore, orderCode uint64) (*Escrow, error) {
	var esc Escrow
	if err := bucket.One(db, orderKey(orderCode), &esc); err != nil {
		return nil, errors.Wrapf(err, "order %d", orderCode)
	}
	return &esc, nil
}

// requireSigner ensures the given address authorized the transaction.
func requireSigner(ctx custody.Context, auth x.Authenticator, addr custody.Address) error {
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s must sign", addr)
	}
	return nil
}

// requireStatus ensures the record is in one of the given states.
func requireStatus(esc *Escrow, any ...Status) error {
	for _, s := range any {
		if esc.Status == s {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrState, "order is %s", esc.Status)
}

// matchRecord compares the supplied bindings against the record. Nil entries
// are skipped so that operations carrying fewer bindings can reuse it.
func matchRecord(esc *Escrow, buyer, seller, buyerAccount, sellerAccount custody.Address) error {
	if buyer != nil && !esc.Buyer.Equals(buyer) {
		return errors.Wrap(ErrAccountMismatch, "buyer")
	}
	if seller != nil && !esc.Seller.Equals(seller) {
		return errors.Wrap(ErrAccountMismatch, "seller")
	}
	if buyerAccount != nil && !esc.BuyerAccount.Equals(buyerAccount) {
		return errors.Wrap(ErrAccountMismatch, "buyer account")
	}
	if sellerAccount != nil && !esc.SellerAccount.Equals(sellerAccount) {
		return errors.Wrap(ErrAccountMismatch, "seller account")
	}
	return nil
}

// InitializeHandler opens an order and funds its vault.
type InitializeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver creates the record and the vault, then deposits the opening
// amount from the buyer's account.
func (h InitializeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	now, err := custody.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	esc := &Escrow{
		OrderCode:     msg.OrderCode,
		Buyer:         msg.Buyer,
		Seller:        msg.Seller,
		Judge:         msg.Judge,
		BuyerAccount:  msg.BuyerAccount,
		SellerAccount: msg.SellerAccount,
		Status:        StatusCreated,
		DeliveryTime:  custody.AsUnixTime(now),
		TrialDay:      msg.TrialDay,
	}
	if err := h.bank.CreateAccount(db, esc.Vault()); err != nil {
		return nil, errors.Wrap(err, "cannot create vault")
	}
	if err := deposit(db, h.bucket, h.bank, esc, msg.BuyerAccount, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: orderKey(msg.OrderCode)}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h InitializeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*InitializeMsg, error) {
	var msg InitializeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := requireSigner(ctx, h.auth, msg.Buyer); err != nil {
		return nil, err
	}
	if err := h.bucket.Has(db, orderKey(msg.OrderCode)); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "order %d", msg.OrderCode)
	}
	return &msg, nil
}

// ShippingHandler marks a created order as shipped. Seller only.
type ShippingHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ custody.Handler = ShippingHandler{}

func (h ShippingHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ShippingHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	esc.Status = StatusShipped
	if err := h.bucket.Put(db, orderKey(esc.OrderCode), esc); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h ShippingHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg ShippingMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Seller); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusCreated)
}

// DeliveredHandler marks a shipped order as delivered. Buyer only.
type DeliveredHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ custody.Handler = DeliveredHandler{}

func (h DeliveredHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h DeliveredHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	esc.Status = StatusDelivered
	if err := h.bucket.Put(db, orderKey(esc.OrderCode), esc); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h DeliveredHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg DeliveredMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Buyer); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusShipped)
}

// ExchangeHandler settles a delivered order to the seller and closes it.
type ExchangeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = ExchangeHandler{}

func (h ExchangeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ExchangeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := settle(db, h.bucket, h.bank, esc, esc.SellerAccount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h ExchangeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg ExchangeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Seller); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusDelivered)
}

// CancelHandler returns the full outstanding amount to the buyer before
// shipment and closes the order.
type CancelHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h CancelHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := settle(db, h.bucket, h.bank, esc, esc.BuyerAccount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h CancelHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg CancelMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Buyer); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, nil, msg.BuyerAccount, nil); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusCreated)
}

// CancelPartialHandler returns part of the deposit to the buyer before
// shipment. The order stays open, possibly with nothing left in it.
type CancelPartialHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = CancelPartialHandler{}

func (h CancelPartialHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h CancelPartialHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := withdraw(db, h.bucket, h.bank, esc, esc.BuyerAccount, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h CancelPartialHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CancelPartialMsg, *Escrow, error) {
	var msg CancelPartialMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Buyer); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, nil, msg.BuyerAccount, nil); err != nil {
		return nil, nil, err
	}
	return &msg, esc, requireStatus(esc, StatusCreated)
}

// RefundHandler is the seller granting a full return after shipment. It
// only resets the status; the buyer reclaims through the cancel path.
type RefundHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ custody.Handler = RefundHandler{}

func (h RefundHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h RefundHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	esc.Status = StatusCreated
	if err := h.bucket.Put(db, orderKey(esc.OrderCode), esc); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h RefundHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg RefundMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Seller); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusShipped)
}

// RefundPartialHandler is the seller returning part of the deposit to the
// buyer after shipment. Funds move now; the order stays shipped.
type RefundPartialHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = RefundPartialHandler{}

func (h RefundPartialHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h RefundPartialHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := withdraw(db, h.bucket, h.bank, esc, esc.BuyerAccount, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h RefundPartialHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*RefundPartialMsg, *Escrow, error) {
	var msg RefundPartialMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Seller); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, nil, err
	}
	return &msg, esc, requireStatus(esc, StatusShipped)
}

// AdjudgeHandler lets the judge flip a shipped order's status either way.
// The ruling moves no funds on its own.
type AdjudgeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ custody.Handler = AdjudgeHandler{}

func (h AdjudgeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h AdjudgeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	esc.Status = msg.Decision
	if err := h.bucket.Put(db, orderKey(esc.OrderCode), esc); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h AdjudgeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*AdjudgeMsg, *Escrow, error) {
	var msg AdjudgeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Judge); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, nil, err
	}
	return &msg, esc, requireStatus(esc, StatusShipped)
}

// AdjudgePartialHandler lets the judge award part of the deposit to the
// seller. The order stays shipped.
type AdjudgePartialHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = AdjudgePartialHandler{}

func (h AdjudgePartialHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h AdjudgePartialHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := withdraw(db, h.bucket, h.bank, esc, esc.SellerAccount, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h AdjudgePartialHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*AdjudgePartialMsg, *Escrow, error) {
	var msg AdjudgePartialMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Judge); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, nil, err
	}
	return &msg, esc, requireStatus(esc, StatusShipped)
}

// AdjudgeForBuyerHandler settles a shipped order fully to the buyer and
// closes it. Judge only.
type AdjudgeForBuyerHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = AdjudgeForBuyerHandler{}

func (h AdjudgeForBuyerHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h AdjudgeForBuyerHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := settle(db, h.bucket, h.bank, esc, esc.BuyerAccount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h AdjudgeForBuyerHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg AdjudgeForBuyerMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Judge); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusShipped)
}

// AdjudgeForSellerHandler settles a shipped order fully to the seller and
// closes it. Judge only.
type AdjudgeForSellerHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = AdjudgeForSellerHandler{}

func (h AdjudgeForSellerHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h AdjudgeForSellerHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := settle(db, h.bucket, h.bank, esc, esc.SellerAccount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h AdjudgeForSellerHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Escrow, error) {
	var msg AdjudgeForSellerMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Judge); err != nil {
		return nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, err
	}
	return esc, requireStatus(esc, StatusShipped)
}

// ChargeMoreHandler lets the buyer top up an order that was not yet
// delivered.
type ChargeMoreHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ custody.Handler = ChargeMoreHandler{}

func (h ChargeMoreHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ChargeMoreHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := deposit(db, h.bucket, h.bank, esc, esc.BuyerAccount, msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h ChargeMoreHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ChargeMoreMsg, *Escrow, error) {
	var msg ChargeMoreMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Buyer); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, nil, err
	}
	return &msg, esc, requireStatus(esc, StatusCreated, StatusShipped)
}

// UpdateTrialDayHandler lets the judge rewrite the stored trial day.
type UpdateTrialDayHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ custody.Handler = UpdateTrialDayHandler{}

func (h UpdateTrialDayHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h UpdateTrialDayHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	esc.TrialDay = msg.TrialDay
	if err := h.bucket.Put(db, orderKey(esc.OrderCode), esc); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h UpdateTrialDayHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*UpdateTrialDayMsg, *Escrow, error) {
	var msg UpdateTrialDayMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	esc, err := loadEscrow(h.bucket, db, msg.OrderCode)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSigner(ctx, h.auth, esc.Judge); err != nil {
		return nil, nil, err
	}
	if err := matchRecord(esc, msg.Buyer, msg.Seller, msg.BuyerAccount, msg.SellerAccount); err != nil {
		return nil, nil, err
	}
	return &msg, esc, nil
}
