package application

import (
	"context"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionService is the application-layer interface of the bidding
// engine, consumed by the HTTP and WebSocket transports.
type AuctionService interface {
	PlaceBid(ctx context.Context, in PlaceBidInput) (*PlaceBidResult, error)
	WithdrawBid(ctx context.Context, in WithdrawBidInput) (*domain.Bid, error)
	CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error)
	CancelListing(ctx context.Context, in CancelListingInput) error
	GetListingState(ctx context.Context, listingID uuid.UUID) (*ListingStateDTO, error)
	ListBids(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error)
}

type auctionService struct {
	placeBidUC      *PlaceBidUseCase
	withdrawBidUC   *WithdrawBidUseCase
	createListingUC *CreateListingUseCase
	cancelListingUC *CancelListingUseCase
	listingStateUC  *GetListingStateUseCase
	listBidsUC      *ListBidsUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase, withdrawBidUC *WithdrawBidUseCase,
	createListingUC *CreateListingUseCase, cancelListingUC *CancelListingUseCase,
	listingStateUC *GetListingStateUseCase, listBidsUC *ListBidsUseCase) AuctionService {

	return &auctionService{
		placeBidUC:      placeBidUC,
		withdrawBidUC:   withdrawBidUC,
		createListingUC: createListingUC,
		cancelListingUC: cancelListingUC,
		listingStateUC:  listingStateUC,
		listBidsUC:      listBidsUC,
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, in PlaceBidInput) (*PlaceBidResult, error) {
	return s.placeBidUC.Execute(ctx, in)
}

func (s *auctionService) WithdrawBid(ctx context.Context, in WithdrawBidInput) (*domain.Bid, error) {
	return s.withdrawBidUC.Execute(ctx, in)
}

func (s *auctionService) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	return s.createListingUC.Execute(ctx, in)
}

func (s *auctionService) CancelListing(ctx context.Context, in CancelListingInput) error {
	return s.cancelListingUC.Execute(ctx, in)
}

func (s *auctionService) GetListingState(ctx context.Context, listingID uuid.UUID) (*ListingStateDTO, error) {
	return s.listingStateUC.Execute(ctx, listingID)
}

func (s *auctionService) ListBids(ctx context.Context, listingID uuid.UUID) ([]BidDTO, error) {
	return s.listBidsUC.Execute(ctx, listingID)
}
