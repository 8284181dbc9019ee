package crypto

import "github.com/iov-one/custody"

// PubKey is a public key that can verify signatures and present itself as an
// authorization condition.
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() custody.Condition
}

// Signer is the functionality we use from a private key: creating signatures
// and revealing the matching public key.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}
