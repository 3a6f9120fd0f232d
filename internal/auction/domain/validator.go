package domain

import (
	"time"

	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

// Acceptance is the accepted half of the validator's decision: the
// classified bid type and the amount the ledger must settle at.
type Acceptance struct {
	Type   BidType
	Amount money.Amount
	// ClosesListing instructs the ledger to transition the listing to sold.
	ClosesListing bool
}

// ValidateBid decides whether a proposed bid is acceptable against the
// given listing snapshot. It is a pure decision function: no side effects,
// checks applied in order, first failing check wins. A nil error means the
// bid was accepted as described by the returned Acceptance.
//
// Buy-now bids are clamped to exactly the buy-now price even when the
// submitted amount is higher.
func ValidateBid(l *Listing, bidderID uuid.UUID, amount money.Amount, now time.Time) (Acceptance, error) {
	if l == nil {
		return Acceptance{}, ErrListingNotFound
	}
	if !IsBiddable(l, now) {
		return Acceptance{}, ErrNotBiddable
	}
	if bidderID == l.SellerID {
		return Acceptance{}, ErrSelfBid
	}

	minimum := l.MinimumBid()
	if amount < minimum {
		return Acceptance{}, &BidTooLowError{Minimum: minimum}
	}

	if l.BuyNowPrice != nil && amount >= *l.BuyNowPrice {
		return Acceptance{
			Type:          BidTypeBuyNow,
			Amount:        *l.BuyNowPrice,
			ClosesListing: true,
		}, nil
	}

	return Acceptance{Type: BidTypeRegular, Amount: amount}, nil
}
