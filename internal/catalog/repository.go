package catalog

import (
	"context"

	"github.com/mercantil/storefront/internal/catalog/dto"
)

type Repository interface {
	FindListings(ctx context.Context, filters *dto.ListingFilters) ([]dto.ListingRow, int, error)
	FindListingByID(ctx context.Context, id string) (*dto.ListingRow, error)
}
