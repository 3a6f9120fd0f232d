package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CancelListingInput struct {
	ListingID uuid.UUID
	ActorID   uuid.UUID
	// AsAdmin lets a moderator cancel listings they do not own.
	AsAdmin bool
}

// CancelListingUseCase closes a listing that never received a bid.
type CancelListingUseCase struct {
	listings  domain.ListingRepository
	tx        domain.TxManager
	publisher domain.EventPublisher
	now       func() time.Time
}

func NewCancelListingUseCase(listings domain.ListingRepository, tx domain.TxManager,
	publisher domain.EventPublisher) *CancelListingUseCase {

	return &CancelListingUseCase{
		listings:  listings,
		tx:        tx,
		publisher: publisher,
		now:       time.Now,
	}
}

func (uc *CancelListingUseCase) Execute(ctx context.Context, in CancelListingInput) error {
	now := uc.now()

	tx, err := uc.tx.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("cancel listing: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := uc.listings.GetByIDForUpdate(ctx, tx, in.ListingID)
	if err != nil {
		return fmt.Errorf("cancel listing %s: %w", in.ListingID, err)
	}

	if !in.AsAdmin && listing.SellerID != in.ActorID {
		return domain.ErrNotOwner
	}
	if err := listing.Cancel(now); err != nil {
		return err
	}
	if err := uc.listings.Save(ctx, tx, listing); err != nil {
		return fmt.Errorf("cancel listing %s: save: %w", in.ListingID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cancel listing: failed to commit transaction: %w", err)
	}

	log.Info("listing cancelled",
		zap.String("listingID", listing.ID.String()),
		zap.Bool("asAdmin", in.AsAdmin),
	)

	if uc.publisher != nil {
		event := domain.ListingClosed{
			ListingID: listing.ID,
			Reason:    domain.StatusCancelled,
			ClosedAt:  now,
		}
		if err := uc.publisher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("failed to publish event",
				zap.String("event", event.EventName()),
				zap.String("listingID", listing.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}
