package domain

import (
	"time"

	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// BidType tags how a bid was produced.
type BidType string

const (
	BidTypeRegular BidType = "regular"
	BidTypeAuto    BidType = "auto"
	BidTypeBuyNow  BidType = "buy-now"
)

// Bid is a single monetary offer against a listing. Bids are append-only:
// withdrawal flips IsActive off but the record is kept for audit.
type Bid struct {
	ID        uuid.UUID
	ListingID uuid.UUID
	BidderID  uuid.UUID

	Amount money.Amount
	// PreviousBid is the listing's current bid immediately before this bid
	// was accepted. Stored for audit and increment display, never re-derived.
	PreviousBid money.Amount
	BidType     BidType

	IsWinning bool
	IsActive  bool

	WithdrawnAt      *time.Time
	WithdrawalReason string

	CreatedAt time.Time
}

// NewAcceptedBid builds the bid record for an acceptance. New bids always
// enter as the active winner; the previous winner is demoted by the ledger
// in the same atomic unit.
func NewAcceptedBid(listing *Listing, bidderID uuid.UUID, acc Acceptance, now time.Time) *Bid {
	return &Bid{
		ID:          uuid.New(),
		ListingID:   listing.ID,
		BidderID:    bidderID,
		Amount:      acc.Amount,
		PreviousBid: listing.CurrentBid,
		BidType:     acc.Type,
		IsWinning:   true,
		IsActive:    true,
		CreatedAt:   now,
	}
}

// MarkWithdrawn deactivates the bid. Guards live in the withdraw
// operation; this only records the state change.
func (b *Bid) MarkWithdrawn(now time.Time, reason string) {
	withdrawnAt := now
	b.IsActive = false
	b.WithdrawnAt = &withdrawnAt
	b.WithdrawalReason = reason
}
