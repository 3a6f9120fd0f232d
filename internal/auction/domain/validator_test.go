package domain

import (
	"errors"
	"testing"
	"testing/quick"
	"time"

	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
)

func activeListing(t *testing.T, now time.Time) *Listing {
	t.Helper()
	return testListing(t, now.Add(-time.Hour), now.Add(time.Hour))
}

func TestValidateBidMinimumEnforcement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeListing(t, now) // startingBid 10.00, increment 1.00
	bidder := uuid.New()

	// 10.50 is above the current bid but below currentBid + increment.
	_, err := ValidateBid(l, bidder, money.FromCents(1050), now)
	var tooLow *BidTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("10.50: got=%v want BidTooLowError", err)
	}
	if tooLow.Minimum != money.FromCents(1100) {
		t.Fatalf("minimum got=%s want=11.00", tooLow.Minimum)
	}

	acc, err := ValidateBid(l, bidder, money.FromCents(1100), now)
	if err != nil {
		t.Fatalf("11.00: %v", err)
	}
	if acc.Type != BidTypeRegular || acc.Amount != money.FromCents(1100) || acc.ClosesListing {
		t.Fatalf("11.00: unexpected acceptance %+v", acc)
	}
}

func TestValidateBidBuyNowClamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeListing(t, now)
	buyNow := money.FromCents(5000)
	l.BuyNowPrice = &buyNow
	l.CurrentBid = money.FromCents(1100)

	// Submitted 60.00, accepted at exactly the buy-now price of 50.00.
	acc, err := ValidateBid(l, uuid.New(), money.FromCents(6000), now)
	if err != nil {
		t.Fatalf("60.00: %v", err)
	}
	if acc.Type != BidTypeBuyNow {
		t.Fatalf("type got=%s want=%s", acc.Type, BidTypeBuyNow)
	}
	if acc.Amount != buyNow {
		t.Fatalf("amount got=%s want=%s", acc.Amount, buyNow)
	}
	if !acc.ClosesListing {
		t.Fatal("buy-now acceptance must close the listing")
	}

	// Exactly the buy-now price also closes.
	acc, err = ValidateBid(l, uuid.New(), buyNow, now)
	if err != nil || acc.Type != BidTypeBuyNow {
		t.Fatalf("50.00: acc=%+v err=%v", acc, err)
	}

	// Below buy-now stays a regular bid.
	acc, err = ValidateBid(l, uuid.New(), money.FromCents(1200), now)
	if err != nil || acc.Type != BidTypeRegular {
		t.Fatalf("12.00: acc=%+v err=%v", acc, err)
	}
}

// The minimum check runs before buy-now classification. When the buy-now
// price sits inside the increment gap, an amount reaching buy-now but not
// the minimum is rejected, never accepted as a discount purchase.
func TestValidateBidMinimumBeforeBuyNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeListing(t, now) // currentBid 10.00, increment 1.00
	buyNow := money.FromCents(1050)
	l.BuyNowPrice = &buyNow

	// 10.75 meets the buy-now price but not the 11.00 minimum.
	_, err := ValidateBid(l, uuid.New(), money.FromCents(1075), now)
	var tooLow *BidTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("10.75: got=%v want BidTooLowError", err)
	}
	if tooLow.Minimum != money.FromCents(1100) {
		t.Fatalf("minimum got=%s want=11.00", tooLow.Minimum)
	}

	// Reaching the minimum still classifies as buy-now and clamps down.
	acc, err := ValidateBid(l, uuid.New(), money.FromCents(1100), now)
	if err != nil {
		t.Fatalf("11.00: %v", err)
	}
	if acc.Type != BidTypeBuyNow || acc.Amount != buyNow || !acc.ClosesListing {
		t.Fatalf("11.00: unexpected acceptance %+v", acc)
	}
}

func TestValidateBidSelfBid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeListing(t, now)

	_, err := ValidateBid(l, l.SellerID, money.FromCents(100000), now)
	if err != ErrSelfBid {
		t.Fatalf("got=%v want=%v", err, ErrSelfBid)
	}
}

func TestValidateBidNotBiddable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Ended window with a stale stored active status.
	l := testListing(t, now.Add(-2*time.Hour), now.Add(-time.Hour))
	l.Status = StatusActive
	if _, err := ValidateBid(l, uuid.New(), money.FromCents(100000), now); err != ErrNotBiddable {
		t.Fatalf("ended: got=%v want=%v", err, ErrNotBiddable)
	}

	// Not yet started.
	l = testListing(t, now.Add(time.Hour), now.Add(2*time.Hour))
	if _, err := ValidateBid(l, uuid.New(), money.FromCents(100000), now); err != ErrNotBiddable {
		t.Fatalf("not started: got=%v want=%v", err, ErrNotBiddable)
	}

	// Terminal state.
	l = activeListing(t, now)
	l.Status = StatusSold
	if _, err := ValidateBid(l, uuid.New(), money.FromCents(100000), now); err != ErrNotBiddable {
		t.Fatalf("sold: got=%v want=%v", err, ErrNotBiddable)
	}

	if _, err := ValidateBid(nil, uuid.New(), money.FromCents(1100), now); err != ErrListingNotFound {
		t.Fatalf("nil listing: got=%v want=%v", err, ErrListingNotFound)
	}
}

// Property: any amount below currentBid + bidIncrement is rejected as too
// low, and any amount at or above it (below buy-now) is accepted as regular.
func TestProperty_MinimumBidBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bidder := uuid.New()

	property := func(currentCents, incrementCents, offset int64) bool {
		// Constrain inputs to sensible price ranges.
		current := 1 + abs64(currentCents)%1_000_000
		increment := 1 + abs64(incrementCents)%10_000
		delta := abs64(offset) % increment

		l := testListing(t, now.Add(-time.Hour), now.Add(time.Hour))
		l.CurrentBid = money.FromCents(current)
		l.BidIncrement = money.FromCents(increment)

		minimum := money.FromCents(current + increment)

		// Just below the minimum must be rejected.
		_, err := ValidateBid(l, bidder, minimum-money.Amount(1+delta), now)
		var tooLow *BidTooLowError
		if !errors.As(err, &tooLow) || tooLow.Minimum != minimum {
			return false
		}

		// At or above the minimum must be accepted at face value.
		acc, err := ValidateBid(l, bidder, minimum+money.Amount(delta), now)
		if err != nil || acc.Type != BidTypeRegular || acc.Amount != minimum+money.Amount(delta) {
			return false
		}
		return true
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

func abs64(n int64) int64 {
	if n < 0 {
		if n == -1<<63 {
			return 1<<63 - 1
		}
		return -n
	}
	return n
}
