package boundary

import "fmt"

// PhantomID is an opaque identity blob. The hashing and salting scheme
// belongs to the external identity component; no algorithm is assumed
// here.
type PhantomID struct {
	Version uint8
	Hash    [64]byte
	Salt    [16]byte
}

// VerificationKey pairs a truncated hash with its issue time.
type VerificationKey struct {
	Hash      [32]byte
	Timestamp uint64
}

// Identity is the opaque zero-trust identity boundary.
type Identity interface {
	Generate(token Token) (PhantomID, error)
	Verify(id PhantomID, key VerificationKey, token Token) (bool, error)
}

// UnimplementedIdentity fails loudly on every call.
type UnimplementedIdentity struct{}

// Generate always fails with ErrNotWired.
func (UnimplementedIdentity) Generate(Token) (PhantomID, error) {
	return PhantomID{}, fmt.Errorf("identity generate: %w", ErrNotWired)
}

// Verify always fails with ErrNotWired.
func (UnimplementedIdentity) Verify(PhantomID, VerificationKey, Token) (bool, error) {
	return false, fmt.Errorf("identity verify: %w", ErrNotWired)
}
