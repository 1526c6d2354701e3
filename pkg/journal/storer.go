package journal

import "context"

// Storer persists and retrieves journal nodes.
// Put is idempotent: nodes are keyed by their content hash.
type Storer interface {
	// Put stores a node. If the node already exists (by hash), this is a no-op.
	Put(ctx context.Context, node *Node) error

	// Get retrieves a node by its hash. Returns ErrNotFound if the node doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	// Has checks if a node exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns all nodes in insertion order.
	List(ctx context.Context) ([]*Node, error)

	// Leaves returns all nodes that no other node points to.
	Leaves(ctx context.Context) ([]*Node, error)

	// Ancestry returns the path from a node back to the first record (node first).
	Ancestry(ctx context.Context, hash string) ([]*Node, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "node not found"
	}

	return "node not found: " + e.Hash
}
