package cart

import "context"

// UseCase is the cart sync engine for a single owner. It owns the local
// quantity mirror: every mutation is serialized per listing, applied
// locally only after the remote store acknowledged it, and any failure
// falls back to Reconcile so the mirror is never left in an unverified
// optimistic state.
type UseCase interface {
	Increment(ctx context.Context, listingID string) error
	Decrement(ctx context.Context, listingID string) error

	// Quantity is a pure lookup in the local mirror, 0 for unknown listings.
	Quantity(listingID string) int
	Quantities() map[string]int

	// Reconcile re-fetches the owner's active cart and rebuilds the mirror
	// wholesale from server truth.
	Reconcile(ctx context.Context) error

	// ApplyStockLimit clamps the mirrored quantity when a listing's stock
	// drops below it.
	ApplyStockLimit(listingID string, stock int)

	OwnerID() string
}
