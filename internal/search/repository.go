package search

import (
	"context"

	"github.com/mercantil/storefront/internal/model"
)

// Repository is the remote search capability over the relational store.
// It is the fallback ranking path when the search index is unavailable.
// An empty storeID searches across all stores.
type Repository interface {
	SearchListings(ctx context.Context, term, storeID string, limit int) ([]model.CatalogEntry, error)
	SearchStores(ctx context.Context, term string, limit int) ([]model.Store, error)
}

// RecentStore persists the bounded recent-search list for a session.
// Record front-inserts, deduplicates by exact term, truncates, and
// returns the updated list.
type RecentStore interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Record(ctx context.Context, sessionID, term string) ([]string, error)
}
