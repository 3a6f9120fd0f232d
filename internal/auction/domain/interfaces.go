package domain

import (
	"context"

	"github.com/google/uuid"
)

// Tx is an opaque handle for one atomic unit of work. Repositories that
// take a Tx must be called with a handle produced by the matching
// TxManager implementation.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager begins transactions for the ledger's atomic settle/withdraw
// operations.
type TxManager interface {
	BeginTx(ctx context.Context) (Tx, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	// GetByIDForUpdate loads the listing under a per-listing lock, so two
	// concurrent bids on the same listing serialize and the second one
	// validates against the first one's committed price.
	GetByIDForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*Listing, error)
	Create(ctx context.Context, l *Listing) error
	// Save persists the aggregate fields with an optimistic version check
	// and fails with ErrConcurrencyConflict on a stale version.
	Save(ctx context.Context, tx Tx, l *Listing) error
	ListOpen(ctx context.Context) ([]*Listing, error)
}

type BidRepository interface {
	Insert(ctx context.Context, tx Tx, b *Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bid, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*Bid, error)
	// DemoteWinning clears the winning flag on every active bid of the
	// listing except the given bid id.
	DemoteWinning(ctx context.Context, tx Tx, listingID, except uuid.UUID) error
	SaveWithdrawal(ctx context.Context, tx Tx, b *Bid) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Bid, error)
}
