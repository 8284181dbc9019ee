package orm

import (
	"testing"

	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

var testCdc = amino.NewCodec()

type counter struct {
	Count int64
}

var _ Model = (*counter)(nil)

func (c *counter) Marshal() ([]byte, error) {
	return testCdc.MarshalBinaryBare(c)
}

func (c *counter) Unmarshal(bz []byte) error {
	return testCdc.UnmarshalBinaryBare(bz, c)
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	return &counter{Count: c.Count}
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	err := b.One(db, []byte("unknown"), &counter{})
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("unknown")))

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Count: 1}))
	assert.Nil(t, b.Has(db, []byte("c1")))

	var c counter
	assert.Nil(t, b.One(db, []byte("c1"), &c))
	assert.Equal(t, int64(1), c.Count)

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Count: 2}))
	assert.Nil(t, b.One(db, []byte("c1"), &c))
	assert.Equal(t, int64(2), c.Count)

	assert.Nil(t, b.Delete(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("c1"), &c))
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("c1")))
}

func TestModelBucketKeepsZeroValueModel(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	// A zero counter serializes to zero bytes. It must still be stored,
	// found and loaded; an emptied wallet depends on it.
	zero := &counter{}
	if raw, err := zero.Marshal(); err != nil || len(raw) != 0 {
		t.Fatalf("precondition: want an empty encoding, got %X (%v)", raw, err)
	}

	assert.Nil(t, b.Put(db, []byte("c1"), zero))
	assert.Nil(t, b.Has(db, []byte("c1")))

	var c counter
	assert.Nil(t, b.One(db, []byte("c1"), &c))
	assert.Equal(t, int64(0), c.Count)

	assert.Nil(t, b.Delete(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
}

func TestModelBucketRefusesInvalidModel(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Count: -1}); err == nil {
		t.Fatal("an invalid model must not be stored")
	}
}

func TestBucketName(t *testing.T) {
	assert.Panics(t, func() { NewModelBucket("Bad Name", &counter{}) })
}
