package signer

// Signer signs requests handed to the transaction executor
type Signer interface {
	// SignCleartext wraps data in an OpenPGP cleartext signature
	SignCleartext(data []byte) ([]byte, error)

	// SignDetached creates an armored detached signature
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)
}
