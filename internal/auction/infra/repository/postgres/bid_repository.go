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

const bidColumns = `
    id, listing_id, bidder_id, amount, previous_bid, bid_type,
    is_winning, is_active, withdrawn_at, withdrawal_reason, created_at`

// BidRepository implements domain.BidRepository against PostgreSQL.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Insert(ctx context.Context, tx domain.Tx, b *domain.Bid) error {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO bids (id, listing_id, bidder_id, amount, previous_bid, bid_type,
                          is_winning, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err = ptx.Exec(ctx, query,
		b.ID,
		b.ListingID,
		b.BidderID,
		b.Amount.Cents(),
		b.PreviousBid.Cents(),
		b.BidType,
		b.IsWinning,
		b.IsActive,
		b.CreatedAt,
	)
	return err
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	query := `SELECT` + bidColumns + ` FROM bids WHERE id = $1`
	return scanBid(r.pool.QueryRow(ctx, query, id))
}

func (r *BidRepository) GetByIDForUpdate(ctx context.Context, tx domain.Tx, id uuid.UUID) (*domain.Bid, error) {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT` + bidColumns + ` FROM bids WHERE id = $1 FOR UPDATE`
	return scanBid(ptx.QueryRow(ctx, query, id))
}

// DemoteWinning clears the winning flag on every active bid of the
// listing except the given one.
func (r *BidRepository) DemoteWinning(ctx context.Context, tx domain.Tx, listingID, except uuid.UUID) error {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return err
	}
	query := `
        UPDATE bids
        SET is_winning = FALSE
        WHERE listing_id = $1 AND id <> $2 AND is_winning
    `
	_, err = ptx.Exec(ctx, query, listingID, except)
	return err
}

func (r *BidRepository) SaveWithdrawal(ctx context.Context, tx domain.Tx, b *domain.Bid) error {
	ptx, err := pgxFrom(tx)
	if err != nil {
		return err
	}
	query := `
        UPDATE bids
        SET is_active = $2, withdrawn_at = $3, withdrawal_reason = $4
        WHERE id = $1
    `
	tag, err := ptx.Exec(ctx, query, b.ID, b.IsActive, b.WithdrawnAt, b.WithdrawalReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}

func (r *BidRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	query := `SELECT` + bidColumns + `
        FROM bids
        WHERE listing_id = $1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	b := &domain.Bid{}
	var (
		amount, previousBid int64
		withdrawalReason    *string
	)
	err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.BidderID,
		&amount,
		&previousBid,
		&b.BidType,
		&b.IsWinning,
		&b.IsActive,
		&b.WithdrawnAt,
		&withdrawalReason,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}
	b.Amount = money.FromCents(amount)
	b.PreviousBid = money.FromCents(previousBid)
	if withdrawalReason != nil {
		b.WithdrawalReason = *withdrawalReason
	}
	return b, nil
}
