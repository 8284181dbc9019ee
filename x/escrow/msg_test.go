package escrow

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestInitializeMsgValidate(t *testing.T) {
	good := InitializeMsg{
		OrderCode:     1,
		Buyer:         custodytest.NewCondition().Address(),
		Seller:        custodytest.NewCondition().Address(),
		Judge:         custodytest.NewCondition().Address(),
		BuyerAccount:  custodytest.NewCondition().Address(),
		SellerAccount: custodytest.NewCondition().Address(),
		Amount:        100,
	}
	assert.Nil(t, good.Validate())

	empty := good
	empty.Amount = 0
	assert.IsErr(t, errors.ErrAmount, empty.Validate())

	short := good
	short.Seller = custody.Address{1, 2}
	assert.IsErr(t, errors.ErrInput, short.Validate())
}

func TestAdjudgeMsgValidateDecision(t *testing.T) {
	msg := AdjudgeMsg{
		Buyer:         custodytest.NewCondition().Address(),
		Seller:        custodytest.NewCondition().Address(),
		BuyerAccount:  custodytest.NewCondition().Address(),
		SellerAccount: custodytest.NewCondition().Address(),
	}

	msg.Decision = StatusCreated
	assert.Nil(t, msg.Validate())
	msg.Decision = StatusDelivered
	assert.Nil(t, msg.Validate())

	// The judge cannot rule an order into the shipped limbo.
	msg.Decision = StatusShipped
	assert.IsErr(t, errors.ErrInput, msg.Validate())
}

func TestPartialMsgsRejectZeroAmount(t *testing.T) {
	buyer := custodytest.NewCondition().Address()
	seller := custodytest.NewCondition().Address()
	buyerAccount := custodytest.NewCondition().Address()
	sellerAccount := custodytest.NewCondition().Address()

	msgs := []custody.Msg{
		&CancelPartialMsg{Buyer: buyer, BuyerAccount: buyerAccount},
		&RefundPartialMsg{Buyer: buyer, Seller: seller, BuyerAccount: buyerAccount, SellerAccount: sellerAccount},
		&AdjudgePartialMsg{Buyer: buyer, Seller: seller, BuyerAccount: buyerAccount, SellerAccount: sellerAccount},
		&ChargeMoreMsg{Buyer: buyer, Seller: seller, BuyerAccount: buyerAccount, SellerAccount: sellerAccount},
	}
	for _, msg := range msgs {
		assert.IsErr(t, errors.ErrAmount, msg.Validate())
	}
}
