package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/logger"
	"github.com/bidcraft/engine/internal/shared/money"
	userdomain "github.com/bidcraft/engine/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// PlaceBidInput carries the data a caller supplies for one bid attempt.
type PlaceBidInput struct {
	ListingID uuid.UUID
	BidderID  uuid.UUID
	Amount    money.Amount
}

// PlaceBidResult is the accepted-bid record plus the updated listing
// snapshot, as seen immediately after commit.
type PlaceBidResult struct {
	Bid     *domain.Bid
	Listing *domain.Listing
}

// PlaceBidUseCase validates a proposed bid against the freshest listing
// snapshot and settles it atomically: demote the previous winner, insert
// the bid, update the listing aggregates, and on buy-now close the listing.
type PlaceBidUseCase struct {
	listings  domain.ListingRepository
	bids      domain.BidRepository
	users     userdomain.UserRepository
	tx        domain.TxManager
	publisher domain.EventPublisher
	now       func() time.Time
}

func NewPlaceBidUseCase(listings domain.ListingRepository, bids domain.BidRepository,
	users userdomain.UserRepository, tx domain.TxManager,
	publisher domain.EventPublisher) *PlaceBidUseCase {

	return &PlaceBidUseCase{
		listings:  listings,
		bids:      bids,
		users:     users,
		tx:        tx,
		publisher: publisher,
		now:       time.Now,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, in PlaceBidInput) (*PlaceBidResult, error) {
	if in.Amount < money.MinUnit {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := uc.users.GetByID(ctx, in.BidderID); err != nil {
		return nil, fmt.Errorf("place bid: bidder %s: %w", in.BidderID, err)
	}

	now := uc.now()

	tx, err := uc.tx.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction committed.
	defer func() { _ = tx.Rollback(ctx) }()

	// Load the listing under its per-listing lock. Validation must run
	// against this snapshot, not anything fetched earlier, or two
	// concurrent bids can both pass against the same stale price.
	listing, err := uc.listings.GetByIDForUpdate(ctx, tx, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("place bid: listing %s: %w", in.ListingID, err)
	}

	acc, err := domain.ValidateBid(listing, in.BidderID, in.Amount, now)
	if err != nil {
		log.Info("bid rejected",
			zap.String("listingID", in.ListingID.String()),
			zap.String("bidderID", in.BidderID.String()),
			zap.String("amount", in.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	previousLeader := listing.HighestBidder

	bid := domain.NewAcceptedBid(listing, in.BidderID, acc, now)

	// Demote the previous winner before inserting the new one; this also
	// covers a bidder raising their own leading bid.
	if err := uc.bids.DemoteWinning(ctx, tx, listing.ID, bid.ID); err != nil {
		return nil, fmt.Errorf("place bid: demote winning bid: %w", err)
	}
	if err := uc.bids.Insert(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("place bid: insert bid: %w", err)
	}

	listing.RecordBid(in.BidderID, acc.Amount, now)

	if acc.ClosesListing {
		listing.MarkSold(in.BidderID, acc.Amount, now)
		// Re-assert the single-winner invariant on the way into sold.
		if err := uc.bids.DemoteWinning(ctx, tx, listing.ID, bid.ID); err != nil {
			return nil, fmt.Errorf("place bid: demote after buy-now: %w", err)
		}
	}

	if err := uc.listings.Save(ctx, tx, listing); err != nil {
		return nil, fmt.Errorf("place bid: save listing %s: %w", listing.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("place bid: failed to commit transaction: %w", err)
	}

	log.Info("bid accepted",
		zap.String("listingID", listing.ID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.String("bidderID", in.BidderID.String()),
		zap.String("amount", bid.Amount.String()),
		zap.String("bidType", string(bid.BidType)),
	)

	uc.publish(ctx, domain.BidAccepted{
		ListingID:        listing.ID,
		BidID:            bid.ID,
		BidderID:         in.BidderID,
		Amount:           bid.Amount,
		BidType:          bid.BidType,
		PreviousLeaderID: previousLeader,
		PlacedAt:         now,
		NewStatus:        domain.EffectiveStatus(listing, now),
	})
	if acc.ClosesListing {
		uc.publish(ctx, domain.ListingClosed{
			ListingID:  listing.ID,
			Reason:     domain.StatusSold,
			FinalPrice: listing.FinalPrice,
			ClosedAt:   now,
		})
	}

	return &PlaceBidResult{Bid: bid, Listing: listing}, nil
}

// publish delivers an event to the outbound collaborator; delivery
// failures are logged, never surfaced to the bidder.
func (uc *PlaceBidUseCase) publish(ctx context.Context, event domain.Event) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("failed to publish event",
			zap.String("event", event.EventName()),
			zap.String("listingID", event.Listing().String()),
			zap.Error(err),
		)
	}
}
