package catalog

import (
	"context"

	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/model"
)

type UseCase interface {
	ListListings(ctx context.Context, filters *dto.ListingFilters) ([]model.CatalogEntry, int, error)
	GetListing(ctx context.Context, id string) (*model.CatalogEntry, error)

	// InvalidateListings drops every cached listing page. Called when a
	// stock-change event arrives.
	InvalidateListings(ctx context.Context) error
}
