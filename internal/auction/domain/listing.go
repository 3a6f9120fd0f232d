package domain

import (
	"time"

	"github.com/bidcraft/engine/internal/shared/logger"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ListingStatus is the lifecycle state of a listing. Only terminal and
// explicit states are ever persisted; time-derived states come from
// EffectiveStatus.
type ListingStatus string

const (
	StatusDraft     ListingStatus = "draft"
	StatusScheduled ListingStatus = "scheduled"
	StatusActive    ListingStatus = "active"
	StatusEnded     ListingStatus = "ended"
	StatusSold      ListingStatus = "sold"
	StatusCancelled ListingStatus = "cancelled"
)

// Listing is the auction aggregate. The aggregate fields (CurrentBid,
// HighestBidder, TotalBids and the sold fields) are mutated only by the
// place-bid settlement and the explicit close operations; everything else
// is immutable once any bid exists.
type Listing struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	Title       string
	Description string

	StartingBid  money.Amount
	CurrentBid   money.Amount
	BidIncrement money.Amount
	ReservePrice *money.Amount
	BuyNowPrice  *money.Amount

	AuctionStart time.Time
	AuctionEnd   time.Time
	Status       ListingStatus

	TotalBids     int
	HighestBidder *uuid.UUID
	FinalPrice    *money.Amount
	SoldTo        *uuid.UUID
	SoldAt        *time.Time

	// Version is the optimistic concurrency token checked on every save.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewListing creates a draft listing, enforcing the pricing and timing
// invariants of the data model.
func NewListing(sellerID uuid.UUID, title, description string,
	startingBid, bidIncrement money.Amount,
	reservePrice, buyNowPrice *money.Amount,
	auctionStart, auctionEnd time.Time) (*Listing, error) {

	if startingBid < money.MinUnit {
		return nil, ErrInvalidPricing
	}
	if bidIncrement < money.MinUnit {
		return nil, ErrInvalidPricing
	}
	// Reserve below the starting bid could never be reported unmet, and a
	// buy-now at or under the starting bid would clamp the first accepted
	// bid below the opening price.
	if reservePrice != nil && *reservePrice < startingBid {
		return nil, ErrInvalidPricing
	}
	if buyNowPrice != nil && *buyNowPrice <= startingBid {
		return nil, ErrInvalidPricing
	}
	if auctionStart.IsZero() || auctionEnd.IsZero() || !auctionEnd.After(auctionStart) {
		return nil, ErrInvalidAuctionWindow
	}

	return &Listing{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Title:        title,
		Description:  description,
		StartingBid:  startingBid,
		CurrentBid:   startingBid,
		BidIncrement: bidIncrement,
		ReservePrice: reservePrice,
		BuyNowPrice:  buyNowPrice,
		AuctionStart: auctionStart,
		AuctionEnd:   auctionEnd,
		Status:       StatusDraft,
		Version:      1,
	}, nil
}

// MinimumBid is the lowest amount the next bid may carry.
func (l *Listing) MinimumBid() money.Amount {
	return l.CurrentBid + l.BidIncrement
}

// ReserveMet reports whether the current bid covers the reserve price.
// Listings without a reserve always meet it.
func (l *Listing) ReserveMet() bool {
	if l.ReservePrice == nil {
		return true
	}
	return l.TotalBids > 0 && l.CurrentBid >= *l.ReservePrice
}

// RecordBid applies an accepted bid to the aggregate fields. TotalBids is
// a historical counter: withdrawals never decrement it.
func (l *Listing) RecordBid(bidderID uuid.UUID, amount money.Amount, now time.Time) {
	bidder := bidderID
	l.CurrentBid = amount
	l.HighestBidder = &bidder
	l.TotalBids++
	l.UpdatedAt = now
}

// MarkSold transitions the listing into its terminal sold state.
func (l *Listing) MarkSold(buyerID uuid.UUID, price money.Amount, now time.Time) {
	buyer := buyerID
	soldAt := now
	finalPrice := price
	l.Status = StatusSold
	l.SoldTo = &buyer
	l.SoldAt = &soldAt
	l.FinalPrice = &finalPrice
	l.UpdatedAt = now
	log.Info("listing sold",
		zap.String("listingID", l.ID.String()),
		zap.String("buyerID", buyerID.String()),
		zap.String("finalPrice", price.String()),
	)
}

// Cancel moves the listing into its terminal cancelled state. Only
// allowed while no bid has ever been accepted and the listing has not
// already closed.
func (l *Listing) Cancel(now time.Time) error {
	switch EffectiveStatus(l, now) {
	case StatusSold, StatusCancelled, StatusEnded:
		return ErrAuctionClosed
	}
	if l.TotalBids > 0 {
		return ErrCannotCancel
	}
	l.Status = StatusCancelled
	l.UpdatedAt = now
	log.Info("listing cancelled", zap.String("listingID", l.ID.String()))
	return nil
}
