package domain

import (
	"errors"
	"fmt"

	"github.com/bidcraft/engine/internal/shared/money"
)

// Every rejection here is an expected business outcome, returned as a
// typed value so the transport layer can map it to reason codes.
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBidNotFound     = errors.New("bid not found")

	ErrNotBiddable   = errors.New("listing is not open for bidding")
	ErrSelfBid       = errors.New("seller cannot bid on their own listing")
	ErrInvalidAmount = errors.New("bid amount must be at least 0.01")

	ErrNotOwner              = errors.New("bid belongs to another user")
	ErrCannotWithdrawWinning = errors.New("the winning bid cannot be withdrawn")
	ErrAuctionClosed         = errors.New("auction already ended or sold")
	ErrBidAlreadyWithdrawn   = errors.New("bid already withdrawn")

	ErrCannotCancel = errors.New("listing with bids cannot be cancelled")

	ErrInvalidPricing       = errors.New("listing pricing configuration is invalid")
	ErrInvalidAuctionWindow = errors.New("auction end must be after auction start")

	// ErrConcurrencyConflict means the atomic commit detected a concurrent
	// update of the same listing; the caller may re-fetch and retry.
	ErrConcurrencyConflict = errors.New("listing was modified concurrently")
)

// BidTooLowError carries the computed minimum so the caller can surface it.
type BidTooLowError struct {
	Minimum money.Amount
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low, minimum is %s", e.Minimum)
}
