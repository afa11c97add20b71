package ports

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// LedgerProvider is one read-only source of settled transactions: a stateful
// node connection or a stateless REST lookup. Lookups return
// domain.ErrNotFound when the ledger definitively has no such transaction;
// any other error means the source was unavailable and the next provider in
// the chain should be tried.
type LedgerProvider interface {
	Name() string
	LookupTransaction(ctx context.Context, hash string) (domain.LedgerTransaction, error)
}
