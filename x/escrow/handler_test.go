package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
)

const (
	testOrder   uint64 = 99
	testDeposit uint64 = 1000
)

type testEnv struct {
	db     custody.KVStore
	router *app.Router
	auth   *custodytest.CtxAuth
	bank   cash.Controller
	bucket orm.ModelBucket

	buyer  custody.Condition
	seller custody.Condition
	judge  custody.Condition

	buyerAccount  custody.Address
	sellerAccount custody.Address
}

// newTestEnv wires the full extension against a memory store and funds the
// buyer's account.
func newTestEnv(t testing.TB, funds uint64) *testEnv {
	t.Helper()

	e := &testEnv{
		db:     store.MemStore(),
		router: app.NewRouter(),
		auth:   &custodytest.CtxAuth{Key: "auth"},
		bucket: NewBucket(),

		buyer:  custodytest.NewCondition(),
		seller: custodytest.NewCondition(),
		judge:  custodytest.NewCondition(),

		buyerAccount:  custodytest.NewCondition().Address(),
		sellerAccount: custodytest.NewCondition().Address(),
	}
	e.bank = cash.NewController(cash.NewBucket())
	RegisterRoutes(e.router, e.auth, e.bank)

	if err := e.bank.IssueCoins(e.db, e.buyerAccount, funds); err != nil {
		t.Fatalf("cannot fund buyer: %+v", err)
	}
	return e
}

// deliver routes the message as if signed by the given conditions.
func (e *testEnv) deliver(signers []custody.Condition, msg custody.Msg) error {
	ctx := custody.WithBlockTime(context.Background(), time.Now())
	ctx = e.auth.SetConditions(ctx, signers...)
	h := e.router.Handler(msg.Path())
	_, err := h.Deliver(ctx, e.db, &custodytest.Tx{Msg: msg})
	return err
}

func (e *testEnv) balance(t testing.TB, addr custody.Address) uint64 {
	t.Helper()
	funds, err := e.bank.Balance(e.db, addr)
	if err != nil {
		t.Fatalf("cannot query balance: %+v", err)
	}
	return funds
}

func (e *testEnv) record(t testing.TB) *Escrow {
	t.Helper()
	var esc Escrow
	if err := e.bucket.One(e.db, orderKey(testOrder), &esc); err != nil {
		t.Fatalf("cannot load record: %+v", err)
	}
	return &esc
}

func (e *testEnv) initialize(t testing.TB, amount uint64) {
	t.Helper()
	err := e.deliver(signed(e.buyer), &InitializeMsg{
		OrderCode:     testOrder,
		Buyer:         e.buyer.Address(),
		Seller:        e.seller.Address(),
		Judge:         e.judge.Address(),
		BuyerAccount:  e.buyerAccount,
		SellerAccount: e.sellerAccount,
		Amount:        amount,
	})
	if err != nil {
		t.Fatalf("cannot initialize: %+v", err)
	}
}

func (e *testEnv) parties() (buyer, seller, buyerAccount, sellerAccount custody.Address) {
	return e.buyer.Address(), e.seller.Address(), e.buyerAccount, e.sellerAccount
}

func signed(conds ...custody.Condition) []custody.Condition {
	return conds
}

func TestInitialize(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)

	esc := e.record(t)
	assert.Equal(t, StatusCreated, esc.Status)
	assert.Equal(t, testDeposit, esc.Amount)
	if esc.DeliveryTime.IsZero() {
		t.Fatal("delivery time not set")
	}
	assert.Equal(t, testDeposit, e.balance(t, VaultAddress(testOrder)))
	assert.Equal(t, uint64(0), e.balance(t, e.buyerAccount))
}

func TestInitializeRequiresBuyerSignature(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()
	err := e.deliver(signed(e.seller), &InitializeMsg{
		OrderCode:     testOrder,
		Buyer:         buyer,
		Seller:        seller,
		Judge:         e.judge.Address(),
		BuyerAccount:  buyerAccount,
		SellerAccount: sellerAccount,
		Amount:        testDeposit,
	})
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestInitializeRejectsTakenOrderCode(t *testing.T) {
	e := newTestEnv(t, 2*testDeposit)
	e.initialize(t, testDeposit)

	buyer, seller, buyerAccount, sellerAccount := e.parties()
	err := e.deliver(signed(e.buyer), &InitializeMsg{
		OrderCode:     testOrder,
		Buyer:         buyer,
		Seller:        seller,
		Judge:         e.judge.Address(),
		BuyerAccount:  buyerAccount,
		SellerAccount: sellerAccount,
		Amount:        testDeposit,
	})
	assert.IsErr(t, errors.ErrDuplicate, err)
}

func TestInitializeInsufficientFunds(t *testing.T) {
	e := newTestEnv(t, testDeposit/2)
	buyer, seller, buyerAccount, sellerAccount := e.parties()
	err := e.deliver(signed(e.buyer), &InitializeMsg{
		OrderCode:     testOrder,
		Buyer:         buyer,
		Seller:        seller,
		Judge:         e.judge.Address(),
		BuyerAccount:  buyerAccount,
		SellerAccount: sellerAccount,
		Amount:        testDeposit,
	})
	assert.IsErr(t, cash.ErrInsufficientFunds, err)
}

func TestHappyPathToExchange(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, StatusShipped, e.record(t).Status)

	err = e.deliver(signed(e.buyer), &DeliveredMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, StatusDelivered, e.record(t).Status)

	err = e.deliver(signed(e.seller), &ExchangeMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	assert.Equal(t, testDeposit, e.balance(t, e.sellerAccount))
	assert.Equal(t, uint64(0), e.balance(t, VaultAddress(testOrder)))
	assert.IsErr(t, errors.ErrNotFound, e.bucket.One(e.db, orderKey(testOrder), &Escrow{}))
}

func TestCancelPartialThenCancel(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, _, buyerAccount, _ := e.parties()

	err := e.deliver(signed(e.buyer), &CancelPartialMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: buyerAccount,
		Amount: 500,
	})
	assert.Nil(t, err)

	esc := e.record(t)
	assert.Equal(t, StatusCreated, esc.Status)
	assert.Equal(t, uint64(500), esc.Amount)
	assert.Equal(t, uint64(500), e.balance(t, e.buyerAccount))
	assert.Equal(t, uint64(500), e.balance(t, VaultAddress(testOrder)))

	err = e.deliver(signed(e.buyer), &CancelMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: buyerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, testDeposit, e.balance(t, e.buyerAccount))
	assert.IsErr(t, errors.ErrNotFound, e.bucket.One(e.db, orderKey(testOrder), &Escrow{}))
}

func TestRefundPartialThenExchange(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	err = e.deliver(signed(e.seller), &RefundPartialMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: 500,
	})
	assert.Nil(t, err)

	esc := e.record(t)
	assert.Equal(t, StatusShipped, esc.Status)
	assert.Equal(t, uint64(500), esc.Amount)
	assert.Equal(t, uint64(500), e.balance(t, e.buyerAccount))

	err = e.deliver(signed(e.buyer), &DeliveredMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	err = e.deliver(signed(e.seller), &ExchangeMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), e.balance(t, e.sellerAccount))
}

func TestAdjudgePartialThenRefundThenCancel(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	err = e.deliver(signed(e.judge), &AdjudgePartialMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: 500,
	})
	assert.Nil(t, err)

	esc := e.record(t)
	assert.Equal(t, StatusShipped, esc.Status)
	assert.Equal(t, uint64(500), esc.Amount)
	assert.Equal(t, uint64(500), e.balance(t, e.sellerAccount))

	// Status-only reset, no funds move.
	err = e.deliver(signed(e.seller), &RefundMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	esc = e.record(t)
	assert.Equal(t, StatusCreated, esc.Status)
	assert.Equal(t, uint64(500), esc.Amount)
	assert.Equal(t, uint64(0), e.balance(t, e.buyerAccount))

	err = e.deliver(signed(e.buyer), &CancelMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: buyerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), e.balance(t, e.buyerAccount))
	assert.IsErr(t, errors.ErrNotFound, e.bucket.One(e.db, orderKey(testOrder), &Escrow{}))
}

func TestAdjudgeForSeller(t *testing.T) {
	e := newTestEnv(t, 500)
	e.initialize(t, 500)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	err = e.deliver(signed(e.judge), &AdjudgeForSellerMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), e.balance(t, e.sellerAccount))

	// The closed order is gone for every further operation.
	err = e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestAdjudgeForBuyer(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	err = e.deliver(signed(e.judge), &AdjudgeForBuyerMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	assert.Equal(t, testDeposit, e.balance(t, e.buyerAccount))
	assert.IsErr(t, errors.ErrNotFound, e.bucket.One(e.db, orderKey(testOrder), &Escrow{}))
}

func TestAdjudgeRuling(t *testing.T) {
	cases := map[string]struct {
		decision   Status
		wantStatus Status
	}{
		"ruling for the buyer reopens the order":    {StatusCreated, StatusCreated},
		"ruling for the seller forces the delivery": {StatusDelivered, StatusDelivered},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newTestEnv(t, testDeposit)
			e.initialize(t, testDeposit)
			buyer, seller, buyerAccount, sellerAccount := e.parties()

			err := e.deliver(signed(e.seller), &ShippingMsg{
				OrderCode: testOrder,
				Buyer:     buyer, Seller: seller,
				BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
			})
			assert.Nil(t, err)

			err = e.deliver(signed(e.judge), &AdjudgeMsg{
				OrderCode: testOrder,
				Buyer:     buyer, Seller: seller,
				BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
				Decision: tc.decision,
			})
			assert.Nil(t, err)

			esc := e.record(t)
			assert.Equal(t, tc.wantStatus, esc.Status)
			assert.Equal(t, testDeposit, esc.Amount)
			assert.Equal(t, testDeposit, e.balance(t, VaultAddress(testOrder)))
		})
	}
}

func TestChargeMore(t *testing.T) {
	e := newTestEnv(t, 2*testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.buyer), &ChargeMoreMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: 300,
	})
	assert.Nil(t, err)

	esc := e.record(t)
	assert.Equal(t, testDeposit+300, esc.Amount)
	assert.Equal(t, testDeposit+300, e.balance(t, VaultAddress(testOrder)))

	// Still possible after shipping.
	err = e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	err = e.deliver(signed(e.buyer), &ChargeMoreMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: 200,
	})
	assert.Nil(t, err)
	assert.Equal(t, testDeposit+500, e.record(t).Amount)

	// But not once delivered.
	err = e.deliver(signed(e.buyer), &DeliveredMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	err = e.deliver(signed(e.buyer), &ChargeMoreMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: 100,
	})
	assert.IsErr(t, errors.ErrState, err)
}

func TestPartialCannotExceedOutstanding(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, _, buyerAccount, _ := e.parties()

	err := e.deliver(signed(e.buyer), &CancelPartialMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: buyerAccount,
		Amount: testDeposit + 1,
	})
	assert.IsErr(t, ErrExceedsEscrow, err)

	// A failed operation leaves no trace.
	esc := e.record(t)
	assert.Equal(t, testDeposit, esc.Amount)
	assert.Equal(t, testDeposit, e.balance(t, VaultAddress(testOrder)))
}

func TestUpdateTrialDay(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	msg := &UpdateTrialDayMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		TrialDay: 14,
	}
	assert.IsErr(t, errors.ErrUnauthorized, e.deliver(signed(e.buyer), msg))
	assert.Nil(t, e.deliver(signed(e.judge), msg))
	assert.Equal(t, uint32(14), e.record(t).TrialDay)
}

func TestOperationAuthorization(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	cases := map[string]struct {
		signer custody.Condition
		msg    custody.Msg
	}{
		"only the seller ships": {
			signer: e.buyer,
			msg: &ShippingMsg{
				OrderCode: testOrder,
				Buyer:     buyer, Seller: seller,
				BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
			},
		},
		"only the buyer cancels": {
			signer: e.seller,
			msg: &CancelMsg{
				OrderCode: testOrder,
				Buyer:     buyer, BuyerAccount: buyerAccount,
			},
		},
		"only the buyer tops up": {
			signer: e.judge,
			msg: &ChargeMoreMsg{
				OrderCode: testOrder,
				Buyer:     buyer, Seller: seller,
				BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
				Amount: 1,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, errors.ErrUnauthorized, e.deliver(signed(tc.signer), tc.msg))
		})
	}
}

func TestOperationRejectsForeignAccounts(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, _, sellerAccount := e.parties()
	intruder := custodytest.NewCondition().Address()

	err := e.deliver(signed(e.buyer), &CancelMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: intruder,
	})
	assert.IsErr(t, ErrAccountMismatch, err)

	err = e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     intruder, Seller: seller,
		BuyerAccount: e.buyerAccount, SellerAccount: sellerAccount,
	})
	assert.IsErr(t, ErrAccountMismatch, err)
}

func TestOperationStatusGates(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	e.initialize(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	// Exchange needs a delivered order.
	err := e.deliver(signed(e.seller), &ExchangeMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.IsErr(t, errors.ErrState, err)

	// Cancel is blocked once shipped.
	err = e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	err = e.deliver(signed(e.buyer), &CancelMsg{
		OrderCode: testOrder,
		Buyer:     buyer, BuyerAccount: buyerAccount,
	})
	assert.IsErr(t, errors.ErrState, err)
}

func TestSettleThroughEngine(t *testing.T) {
	db := store.MemStore()
	router := app.NewRouter()
	auth := &custodytest.CtxAuth{Key: "auth"}
	bank := cash.NewController(cash.NewBucket())
	RegisterRoutes(router, auth, bank)
	engine := app.NewEngine(db, router)

	buyer := custodytest.NewCondition()
	seller := custodytest.NewCondition()
	judge := custodytest.NewCondition()
	buyerAccount := custodytest.NewCondition().Address()
	sellerAccount := custodytest.NewCondition().Address()

	if err := bank.IssueCoins(db, buyerAccount, testDeposit); err != nil {
		t.Fatalf("cannot fund buyer: %+v", err)
	}

	submit := func(signer custody.Condition, msg custody.Msg) error {
		ctx := auth.SetConditions(context.Background(), signer)
		_, err := engine.Deliver(ctx, &custodytest.Tx{Msg: msg})
		return err
	}

	err := submit(buyer, &InitializeMsg{
		OrderCode: testOrder,
		Buyer:     buyer.Address(), Seller: seller.Address(), Judge: judge.Address(),
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
		Amount: testDeposit,
	})
	assert.Nil(t, err)
	err = submit(seller, &ShippingMsg{
		OrderCode: testOrder,
		Buyer:     buyer.Address(), Seller: seller.Address(),
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)
	err = submit(buyer, &DeliveredMsg{
		OrderCode: testOrder,
		Buyer:     buyer.Address(), Seller: seller.Address(),
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	// The full settlement drains the vault wallet to zero before closing
	// it. All of it must commit through the engine in one unit.
	err = submit(seller, &ExchangeMsg{
		OrderCode: testOrder,
		Buyer:     buyer.Address(), Seller: seller.Address(),
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.Nil(t, err)

	funds, err := bank.Balance(db, sellerAccount)
	assert.Nil(t, err)
	assert.Equal(t, testDeposit, funds)
	funds, err = bank.Balance(db, VaultAddress(testOrder))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), funds)
	assert.IsErr(t, errors.ErrNotFound, NewBucket().One(db, orderKey(testOrder), &Escrow{}))
}

func TestUnknownOrder(t *testing.T) {
	e := newTestEnv(t, testDeposit)
	buyer, seller, buyerAccount, sellerAccount := e.parties()

	err := e.deliver(signed(e.seller), &ShippingMsg{
		OrderCode: 12345,
		Buyer:     buyer, Seller: seller,
		BuyerAccount: buyerAccount, SellerAccount: sellerAccount,
	})
	assert.IsErr(t, errors.ErrNotFound, err)
}
