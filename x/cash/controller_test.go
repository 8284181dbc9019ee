package cash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestMoveCoins(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	src := custodytest.NewCondition().Address()
	dest := custodytest.NewCondition().Address()

	require.NoError(t, ctrl.IssueCoins(db, src, 100))

	require.NoError(t, ctrl.MoveCoins(db, src, dest, 60))
	assertBalance(t, ctrl, db, src, 40)
	assertBalance(t, ctrl, db, dest, 60)

	// Destination is created on demand, source is not.
	err := ctrl.MoveCoins(db, custodytest.NewCondition().Address(), dest, 1)
	assert.True(t, ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)

	err = ctrl.MoveCoins(db, src, dest, 41)
	assert.True(t, ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)
	assertBalance(t, ctrl, db, src, 40)

	err = ctrl.MoveCoins(db, src, dest, 0)
	assert.True(t, errors.ErrAmount.Is(err), "unexpected error: %+v", err)
}

func TestMoveCoinsOverflow(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	src := custodytest.NewCondition().Address()
	dest := custodytest.NewCondition().Address()

	require.NoError(t, ctrl.IssueCoins(db, src, 10))
	require.NoError(t, ctrl.IssueCoins(db, dest, math.MaxUint64))

	err := ctrl.MoveCoins(db, src, dest, 10)
	assert.True(t, errors.ErrOverflow.Is(err), "unexpected error: %+v", err)
	assertBalance(t, ctrl, db, src, 10)
}

func TestBalanceOfMissingAccount(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())

	funds, err := ctrl.Balance(db, custodytest.NewCondition().Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), funds)
}

func TestAccountLifecycle(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	addr := custodytest.NewCondition().Address()

	require.NoError(t, ctrl.CreateAccount(db, addr))
	err := ctrl.CreateAccount(db, addr)
	assert.True(t, errors.ErrDuplicate.Is(err), "unexpected error: %+v", err)

	require.NoError(t, ctrl.IssueCoins(db, addr, 5))
	err = ctrl.CloseAccount(db, addr)
	assert.True(t, errors.ErrState.Is(err), "a funded account must not close")

	dest := custodytest.NewCondition().Address()
	require.NoError(t, ctrl.MoveCoins(db, addr, dest, 5))
	require.NoError(t, ctrl.CloseAccount(db, addr))

	err = ctrl.CloseAccount(db, addr)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)
}

func assertBalance(t *testing.T, ctrl Controller, db custody.KVStore, addr custody.Address, want uint64) {
	t.Helper()
	funds, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, want, funds)
}
