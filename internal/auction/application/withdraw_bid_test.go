package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
)

func TestWithdrawBid_DeactivatesOutbidBid(t *testing.T) {
	f := newFixture(t)
	l := f.openListing(t, nil)

	outbid := f.mustBid(t, l.ID, f.alice, 1100)
	f.mustBid(t, l.ID, f.bob, 1200)

	before := f.storedListing(t, l.ID)

	withdrawn, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   outbid.Bid.ID,
		ActorID: f.alice,
		Reason:  "changed my mind",
	})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if withdrawn.IsActive {
		t.Fatal("withdrawn bid must be inactive")
	}
	if withdrawn.WithdrawnAt == nil || !withdrawn.WithdrawnAt.Equal(f.now) {
		t.Fatalf("withdrawnAt got=%v want=%v", withdrawn.WithdrawnAt, f.now)
	}
	if withdrawn.WithdrawalReason != "changed my mind" {
		t.Fatalf("reason got=%q", withdrawn.WithdrawalReason)
	}

	// Withdrawal is bid-local: listing aggregates and the current
	// winner are untouched, and the bid history count stays.
	after := f.storedListing(t, l.ID)
	if after.CurrentBid != before.CurrentBid {
		t.Fatalf("currentBid changed: %s -> %s", before.CurrentBid, after.CurrentBid)
	}
	if after.TotalBids != before.TotalBids {
		t.Fatalf("totalBids changed: %d -> %d", before.TotalBids, after.TotalBids)
	}
	if *after.HighestBidder != f.bob {
		t.Fatalf("highestBidder changed: %s", *after.HighestBidder)
	}
	if got := len(f.winningBids(t, l.ID)); got != 1 {
		t.Fatalf("winning bids got=%d want=1", got)
	}
}

func TestWithdrawBid_WinningBidRejected(t *testing.T) {
	f := newFixture(t)
	l := f.openListing(t, nil)
	winning := f.mustBid(t, l.ID, f.alice, 1100)

	_, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   winning.Bid.ID,
		ActorID: f.alice,
	})
	if !errors.Is(err, domain.ErrCannotWithdrawWinning) {
		t.Fatalf("err got=%v want=ErrCannotWithdrawWinning", err)
	}
}

func TestWithdrawBid_NotOwnerRejected(t *testing.T) {
	f := newFixture(t)
	l := f.openListing(t, nil)
	aliceBid := f.mustBid(t, l.ID, f.alice, 1100)
	f.mustBid(t, l.ID, f.bob, 1200)

	_, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   aliceBid.Bid.ID,
		ActorID: f.bob,
	})
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("err got=%v want=ErrNotOwner", err)
	}
}

func TestWithdrawBid_ClosedAuctionRejected(t *testing.T) {
	f := newFixture(t)
	l := f.openListing(t, nil)
	aliceBid := f.mustBid(t, l.ID, f.alice, 1100)
	f.mustBid(t, l.ID, f.bob, 1200)

	f.now = f.now.Add(3 * time.Hour) // past auction end

	_, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   aliceBid.Bid.ID,
		ActorID: f.alice,
	})
	if !errors.Is(err, domain.ErrAuctionClosed) {
		t.Fatalf("err got=%v want=ErrAuctionClosed", err)
	}
}

func TestWithdrawBid_AlreadyWithdrawnRejected(t *testing.T) {
	f := newFixture(t)
	l := f.openListing(t, nil)
	aliceBid := f.mustBid(t, l.ID, f.alice, 1100)
	f.mustBid(t, l.ID, f.bob, 1200)

	if _, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   aliceBid.Bid.ID,
		ActorID: f.alice,
	}); err != nil {
		t.Fatalf("first withdraw: %v", err)
	}

	_, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   aliceBid.Bid.ID,
		ActorID: f.alice,
	})
	if !errors.Is(err, domain.ErrBidAlreadyWithdrawn) {
		t.Fatalf("err got=%v want=ErrBidAlreadyWithdrawn", err)
	}
}

func TestWithdrawBid_AllowedOnCancelledListing(t *testing.T) {
	f := newFixture(t)
	buyNow := money.FromCents(5000)
	l := f.openListing(t, &buyNow)
	aliceBid := f.mustBid(t, l.ID, f.alice, 1100)
	f.mustBid(t, l.ID, f.bob, 1200)

	// Force-cancel the listing past the bid guard; withdrawal is only
	// blocked on ended and sold listings.
	stored := f.storedListing(t, l.ID)
	stored.Status = domain.StatusCancelled
	tx, err := f.store.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := f.listings.Save(context.Background(), tx, stored); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := f.withdraw.Execute(context.Background(), WithdrawBidInput{
		BidID:   aliceBid.Bid.ID,
		ActorID: f.alice,
	}); err != nil {
		t.Fatalf("withdraw on cancelled listing: %v", err)
	}
}
