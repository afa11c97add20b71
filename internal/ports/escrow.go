package ports

import "context"

// EscrowKey identifies a downstream execution record.
type EscrowKey struct {
	Account  string
	Sequence uint32
	Testnet  bool
}

// EscrowClient drives the downstream escrow execution service. All three
// operations are idempotent per the downstream contract; Add on an existing
// record is not an error.
type EscrowClient interface {
	Exists(ctx context.Context, key EscrowKey) (bool, error)
	Add(ctx context.Context, key EscrowKey) error
	Delete(ctx context.Context, key EscrowKey) error
}
