package http

import (
	"errors"
	"time"

	"github.com/bidcraft/engine/internal/auction/application"
	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
	userdomain "github.com/bidcraft/engine/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the auction service over REST. It is deliberately
// thin: decode, call the service, map the typed rejection to a status
// and reason code.
type Handler struct {
	service application.AuctionService
}

func NewHandler(service application.AuctionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/listings", h.createListing)
	api.Get("/listings/:id", h.getListing)
	api.Get("/listings/:id/bids", h.listBids)
	api.Post("/listings/:id/bids", h.placeBid)
	api.Post("/listings/:id/cancel", h.cancelListing)
	api.Post("/bids/:id/withdraw", h.withdrawBid)
}

type createListingRequest struct {
	SellerID     uuid.UUID     `json:"seller_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	StartingBid  money.Amount  `json:"starting_bid"`
	BidIncrement money.Amount  `json:"bid_increment"`
	ReservePrice *money.Amount `json:"reserve_price"`
	BuyNowPrice  *money.Amount `json:"buy_now_price"`
	AuctionStart time.Time     `json:"auction_start"`
	AuctionEnd   time.Time     `json:"auction_end"`
}

func (h *Handler) createListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", err)
	}
	listing, err := h.service.CreateListing(c.Context(), application.CreateListingInput{
		SellerID:     req.SellerID,
		Title:        req.Title,
		Description:  req.Description,
		StartingBid:  req.StartingBid,
		BidIncrement: req.BidIncrement,
		ReservePrice: req.ReservePrice,
		BuyNowPrice:  req.BuyNowPrice,
		AuctionStart: req.AuctionStart,
		AuctionEnd:   req.AuctionEnd,
	})
	if err != nil {
		return writeError(c, err)
	}
	state, err := h.service.GetListingState(c.Context(), listing.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (h *Handler) getListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_listing_id", err)
	}
	state, err := h.service.GetListingState(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *Handler) listBids(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_listing_id", err)
	}
	bids, err := h.service.ListBids(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"bids": bids})
}

type placeBidRequest struct {
	BidderID uuid.UUID    `json:"bidder_id"`
	Amount   money.Amount `json:"amount"`
}

func (h *Handler) placeBid(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_listing_id", err)
	}
	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", err)
	}
	result, err := h.service.PlaceBid(c.Context(), application.PlaceBidInput{
		ListingID: listingID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}
	state, err := h.service.GetListingState(c.Context(), listingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bid_id":   result.Bid.ID,
		"amount":   result.Bid.Amount,
		"bid_type": result.Bid.BidType,
		"listing":  state,
	})
}

type cancelListingRequest struct {
	ActorID uuid.UUID `json:"actor_id"`
	AsAdmin bool      `json:"as_admin"`
}

func (h *Handler) cancelListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_listing_id", err)
	}
	var req cancelListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", err)
	}
	err = h.service.CancelListing(c.Context(), application.CancelListingInput{
		ListingID: listingID,
		ActorID:   req.ActorID,
		AsAdmin:   req.AsAdmin,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type withdrawBidRequest struct {
	ActorID uuid.UUID `json:"actor_id"`
	Reason  string    `json:"reason"`
}

func (h *Handler) withdrawBid(c *fiber.Ctx) error {
	bidID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_bid_id", err)
	}
	var req withdrawBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", err)
	}
	bid, err := h.service.WithdrawBid(c.Context(), application.WithdrawBidInput{
		BidID:   bidID,
		ActorID: req.ActorID,
		Reason:  req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"bid_id":       bid.ID,
		"is_active":    bid.IsActive,
		"withdrawn_at": bid.WithdrawnAt,
	})
}

func badRequest(c *fiber.Ctx, code string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   code,
		"message": err.Error(),
	})
}

// writeError translates the domain error taxonomy into HTTP responses.
// Bid-too-low rejections carry the computed minimum for the UI.
func writeError(c *fiber.Ctx, err error) error {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":       "bid_too_low",
			"message":     err.Error(),
			"minimum_bid": tooLow.Minimum,
		})
	}

	var status int
	var code string
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		status, code = fiber.StatusNotFound, "listing_not_found"
	case errors.Is(err, domain.ErrBidNotFound):
		status, code = fiber.StatusNotFound, "bid_not_found"
	case errors.Is(err, userdomain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "user_not_found"
	case errors.Is(err, domain.ErrNotBiddable):
		status, code = fiber.StatusConflict, "not_biddable"
	case errors.Is(err, domain.ErrSelfBid):
		status, code = fiber.StatusForbidden, "self_bid"
	case errors.Is(err, domain.ErrNotOwner):
		status, code = fiber.StatusForbidden, "not_owner"
	case errors.Is(err, domain.ErrCannotWithdrawWinning):
		status, code = fiber.StatusConflict, "cannot_withdraw_winning"
	case errors.Is(err, domain.ErrAuctionClosed):
		status, code = fiber.StatusConflict, "auction_closed"
	case errors.Is(err, domain.ErrBidAlreadyWithdrawn):
		status, code = fiber.StatusConflict, "bid_already_withdrawn"
	case errors.Is(err, domain.ErrCannotCancel):
		status, code = fiber.StatusConflict, "cannot_cancel"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		status, code = fiber.StatusConflict, "concurrency_conflict"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPricing),
		errors.Is(err, domain.ErrInvalidAuctionWindow):
		status, code = fiber.StatusBadRequest, "invalid_input"
	default:
		status, code = fiber.StatusInternalServerError, "internal"
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": err.Error(),
	})
}
