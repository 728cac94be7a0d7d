package boundary

import (
	"fmt"

	"github.com/banshee-data/tomograph/internal/tomo"
)

// BalancedTree is the opaque ordered-container boundary for token
// storage. The balancing algorithm is external; this engine only creates,
// fills and queries the container. A real implementation should arena-
// allocate nodes and traverse iteratively rather than recursing over
// owned links.
type BalancedTree interface {
	Insert(token Token, channel tomo.Channel) error
	VerifyBalanced() (bool, error)
	Rebalance() error
}

// UnimplementedTree fails loudly on every call.
type UnimplementedTree struct{}

// Insert always fails with ErrNotWired.
func (UnimplementedTree) Insert(Token, tomo.Channel) error {
	return fmt.Errorf("tree insert: %w", ErrNotWired)
}

// VerifyBalanced always fails with ErrNotWired.
func (UnimplementedTree) VerifyBalanced() (bool, error) {
	return false, fmt.Errorf("tree verify: %w", ErrNotWired)
}

// Rebalance always fails with ErrNotWired.
func (UnimplementedTree) Rebalance() error {
	return fmt.Errorf("tree rebalance: %w", ErrNotWired)
}
