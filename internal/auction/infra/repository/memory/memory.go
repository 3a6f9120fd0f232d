package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bidcraft/engine/internal/auction/domain"
	userdomain "github.com/bidcraft/engine/internal/user/domain"
	"github.com/google/uuid"
)

var errWrongTx = errors.New("memory: transaction does not belong to this store")

// Store holds the shared in-memory state behind the repository types of
// this package. A store-wide lock held for the lifetime of a transaction
// gives the same per-listing serialization the postgres row lock
// provides, so concurrency tests exercise the real commit ordering.
//
// Writes are applied directly; a rollback after a failed write is not
// undone. That is fine for the engine, which performs no writes before
// validation has passed.
type Store struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
	bids     map[uuid.UUID]*domain.Bid
}

func NewStore() *Store {
	return &Store{
		listings: make(map[uuid.UUID]*domain.Listing),
		bids:     make(map[uuid.UUID]*domain.Bid),
	}
}

type memTx struct {
	store *Store
	done  bool
}

// BeginTx acquires the store lock until Commit or Rollback.
func (s *Store) BeginTx(ctx context.Context) (domain.Tx, error) {
	s.mu.Lock()
	return &memTx{store: s}, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("memory: transaction already closed")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (s *Store) open(tx domain.Tx) error {
	t, ok := tx.(*memTx)
	if !ok || t.store != s {
		return errWrongTx
	}
	if t.done {
		return errors.New("memory: transaction already closed")
	}
	return nil
}

// ListingRepository implements domain.ListingRepository on a Store.
type ListingRepository struct {
	s *Store
}

func NewListingRepository(s *Store) *ListingRepository {
	return &ListingRepository{s: s}
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx domain.Tx, id uuid.UUID) (*domain.Listing, error) {
	if err := r.s.open(tx); err != nil {
		return nil, err
	}
	l, ok := r.s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.listings[l.ID] = cloneListing(l)
	return nil
}

func (r *ListingRepository) Save(ctx context.Context, tx domain.Tx, l *domain.Listing) error {
	if err := r.s.open(tx); err != nil {
		return err
	}
	stored, ok := r.s.listings[l.ID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if stored.Version != l.Version {
		return domain.ErrConcurrencyConflict
	}
	l.Version++
	r.s.listings[l.ID] = cloneListing(l)
	return nil
}

func (r *ListingRepository) ListOpen(ctx context.Context) ([]*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var out []*domain.Listing
	for _, l := range r.s.listings {
		switch domain.EffectiveStatus(l, now) {
		case domain.StatusSold, domain.StatusCancelled, domain.StatusEnded:
			continue
		}
		out = append(out, cloneListing(l))
	}
	return out, nil
}

// BidRepository implements domain.BidRepository on a Store.
type BidRepository struct {
	s *Store
}

func NewBidRepository(s *Store) *BidRepository {
	return &BidRepository{s: s}
}

func (r *BidRepository) Insert(ctx context.Context, tx domain.Tx, b *domain.Bid) error {
	if err := r.s.open(tx); err != nil {
		return err
	}
	r.s.bids[b.ID] = cloneBid(b)
	return nil
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bids[id]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	return cloneBid(b), nil
}

func (r *BidRepository) GetByIDForUpdate(ctx context.Context, tx domain.Tx, id uuid.UUID) (*domain.Bid, error) {
	if err := r.s.open(tx); err != nil {
		return nil, err
	}
	b, ok := r.s.bids[id]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	return cloneBid(b), nil
}

func (r *BidRepository) DemoteWinning(ctx context.Context, tx domain.Tx, listingID, except uuid.UUID) error {
	if err := r.s.open(tx); err != nil {
		return err
	}
	for _, b := range r.s.bids {
		if b.ListingID == listingID && b.ID != except && b.IsWinning {
			b.IsWinning = false
		}
	}
	return nil
}

func (r *BidRepository) SaveWithdrawal(ctx context.Context, tx domain.Tx, b *domain.Bid) error {
	if err := r.s.open(tx); err != nil {
		return err
	}
	stored, ok := r.s.bids[b.ID]
	if !ok {
		return domain.ErrBidNotFound
	}
	stored.IsActive = b.IsActive
	stored.WithdrawnAt = b.WithdrawnAt
	stored.WithdrawalReason = b.WithdrawalReason
	return nil
}

func (r *BidRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Bid
	for _, b := range r.s.bids {
		if b.ListingID == listingID {
			out = append(out, cloneBid(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	if l.ReservePrice != nil {
		v := *l.ReservePrice
		c.ReservePrice = &v
	}
	if l.BuyNowPrice != nil {
		v := *l.BuyNowPrice
		c.BuyNowPrice = &v
	}
	if l.HighestBidder != nil {
		v := *l.HighestBidder
		c.HighestBidder = &v
	}
	if l.FinalPrice != nil {
		v := *l.FinalPrice
		c.FinalPrice = &v
	}
	if l.SoldTo != nil {
		v := *l.SoldTo
		c.SoldTo = &v
	}
	if l.SoldAt != nil {
		v := *l.SoldAt
		c.SoldAt = &v
	}
	return &c
}

func cloneBid(b *domain.Bid) *domain.Bid {
	c := *b
	if b.WithdrawnAt != nil {
		v := *b.WithdrawnAt
		c.WithdrawnAt = &v
	}
	return &c
}

// Users is an in-memory user repository for tests and local development.
type Users struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*userdomain.User
}

func NewUsers(seed ...*userdomain.User) *Users {
	u := &Users{users: make(map[uuid.UUID]*userdomain.User)}
	for _, user := range seed {
		u.users[user.ID] = user
	}
	return u
}

func (u *Users) Add(user *userdomain.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[user.ID] = user
}

func (u *Users) GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return user, nil
}
