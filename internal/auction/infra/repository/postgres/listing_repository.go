package postgres

import (
	"context"
	"errors"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/bidcraft/engine/internal/shared/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `
    id, seller_id, title, description,
    starting_bid, current_bid, bid_increment, reserve_price, buy_now_price,
    auction_start, auction_end, status,
    total_bids, highest_bidder, final_price, sold_to, sold_at,
    version, created_at, updated_at`

// ListingRepository implements domain.ListingRepository against PostgreSQL.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate locks the listing row for the rest of the transaction.
// Every concurrent bid on the same listing serializes here.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx domain.Tx, id uuid.UUID) (*domain.Listing, error) {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	return scanListing(ptx.QueryRow(ctx, query, id))
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `
        INSERT INTO listings (
            id, seller_id, title, description,
            starting_bid, current_bid, bid_increment, reserve_price, buy_now_price,
            auction_start, auction_end, status, version
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.SellerID,
		l.Title,
		l.Description,
		l.StartingBid.Cents(),
		l.CurrentBid.Cents(),
		l.BidIncrement.Cents(),
		centsOrNil(l.ReservePrice),
		centsOrNil(l.BuyNowPrice),
		l.AuctionStart,
		l.AuctionEnd,
		l.Status,
		l.Version,
	)
	return err
}

// Save persists the mutable aggregate fields with an optimistic version
// check. A zero row count means another transaction won the race.
func (r *ListingRepository) Save(ctx context.Context, tx domain.Tx, l *domain.Listing) error {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return err
	}
	query := `
        UPDATE listings
        SET
            current_bid = $2,
            total_bids = $3,
            highest_bidder = $4,
            status = $5,
            final_price = $6,
            sold_to = $7,
            sold_at = $8,
            version = version + 1,
            updated_at = NOW()
        WHERE id = $1 AND version = $9
    `
	tag, err := ptx.Exec(ctx, query,
		l.ID,
		l.CurrentBid.Cents(),
		l.TotalBids,
		l.HighestBidder,
		l.Status,
		centsOrNil(l.FinalPrice),
		l.SoldTo,
		l.SoldAt,
		l.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	l.Version++
	return nil
}

func (r *ListingRepository) ListOpen(ctx context.Context) ([]*domain.Listing, error) {
	query := `SELECT` + listingColumns + `
        FROM listings
        WHERE status NOT IN ($1, $2) AND auction_end > NOW()
        ORDER BY auction_end ASC`
	rows, err := r.pool.Query(ctx, query, domain.StatusSold, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	var (
		startingBid, currentBid, bidIncrement int64
		reservePrice, buyNowPrice, finalPrice *int64
	)
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.Description,
		&startingBid,
		&currentBid,
		&bidIncrement,
		&reservePrice,
		&buyNowPrice,
		&l.AuctionStart,
		&l.AuctionEnd,
		&l.Status,
		&l.TotalBids,
		&l.HighestBidder,
		&finalPrice,
		&l.SoldTo,
		&l.SoldAt,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	l.StartingBid = money.FromCents(startingBid)
	l.CurrentBid = money.FromCents(currentBid)
	l.BidIncrement = money.FromCents(bidIncrement)
	l.ReservePrice = amountOrNil(reservePrice)
	l.BuyNowPrice = amountOrNil(buyNowPrice)
	l.FinalPrice = amountOrNil(finalPrice)
	return l, nil
}

func centsOrNil(a *money.Amount) *int64 {
	if a == nil {
		return nil
	}
	v := a.Cents()
	return &v
}

func amountOrNil(n *int64) *money.Amount {
	if n == nil {
		return nil
	}
	v := money.FromCents(*n)
	return &v
}
