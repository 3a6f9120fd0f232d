package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
	userdomain "github.com/bidcraft/engine/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateListingInput struct {
	SellerID     uuid.UUID
	Title        string
	Description  string
	StartingBid  money.Amount
	BidIncrement money.Amount
	ReservePrice *money.Amount
	BuyNowPrice  *money.Amount
	AuctionStart time.Time
	AuctionEnd   time.Time
}

// CreateListingUseCase registers a new draft listing for a seller.
type CreateListingUseCase struct {
	listings domain.ListingRepository
	users    userdomain.UserRepository
}

func NewCreateListingUseCase(listings domain.ListingRepository,
	users userdomain.UserRepository) *CreateListingUseCase {

	return &CreateListingUseCase{listings: listings, users: users}
}

func (uc *CreateListingUseCase) Execute(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	if _, err := uc.users.GetByID(ctx, in.SellerID); err != nil {
		return nil, fmt.Errorf("create listing: seller %s: %w", in.SellerID, err)
	}

	listing, err := domain.NewListing(in.SellerID, in.Title, in.Description,
		in.StartingBid, in.BidIncrement, in.ReservePrice, in.BuyNowPrice,
		in.AuctionStart, in.AuctionEnd)
	if err != nil {
		return nil, err
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	log.Info("listing created",
		zap.String("listingID", listing.ID.String()),
		zap.String("sellerID", in.SellerID.String()),
		zap.String("startingBid", in.StartingBid.String()),
	)

	return listing, nil
}
