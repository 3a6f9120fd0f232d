package domain

import "time"

// EffectiveStatus derives the operative lifecycle state of a listing from
// its stored status and the clock. Stored status is only authoritative for
// terminal states; everything time-derived is recomputed on every call so
// a stale persisted "active" can never keep a finished auction open.
//
// Malformed timing data (zero dates, end not after start, zero clock)
// degrades to ended: the machine fails closed, never open.
func EffectiveStatus(l *Listing, now time.Time) ListingStatus {
	switch l.Status {
	case StatusSold, StatusCancelled:
		return l.Status
	}

	if now.IsZero() || l.AuctionStart.IsZero() || l.AuctionEnd.IsZero() ||
		!l.AuctionEnd.After(l.AuctionStart) {
		return StatusEnded
	}

	switch {
	case !now.Before(l.AuctionEnd):
		return StatusEnded
	case !now.Before(l.AuctionStart):
		return StatusActive
	case l.Status == StatusDraft:
		return StatusDraft
	default:
		return StatusScheduled
	}
}

// IsBiddable is the single gate every bid must pass: the listing is open
// for bidding iff its effective status is active right now.
func IsBiddable(l *Listing, now time.Time) bool {
	return EffectiveStatus(l, now) == StatusActive
}
