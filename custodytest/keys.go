package custodytest

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

func NewCondition() custody.Condition {
	return NewKey().PublicKey().Condition()
}
