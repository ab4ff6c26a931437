package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/catalog/normalize"
	"github.com/mercantil/storefront/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) SearchListings(ctx context.Context, term, storeID string, limit int) ([]model.CatalogEntry, error) {
	query := `
        SELECT
            l.id AS listing_id,
            l.product_id AS product_id,
            l.store_id AS store_id,
            l.price AS price,
            l.stock AS stock,
            l.is_active AS is_active,
            p.name AS name,
            p.description AS description,
            p.category AS category,
            p.subcategory AS subcategory,
            p.images AS images,
            s.name AS store_name
        FROM product_listings l
        JOIN products p ON p.id = l.product_id
        JOIN stores s ON s.id = l.store_id
        WHERE l.is_active = TRUE
          AND l.stock > 0
          AND ($2 = '' OR l.store_id::text = $2)
          AND (p.name ILIKE $1 OR p.description ILIKE $1 OR p.category ILIKE $1)
        ORDER BY p.name ASC
        LIMIT $3
    `
	var rows []dto.ListingRow
	if err := r.DB.SelectContext(ctx, &rows, query, "%"+term+"%", storeID, limit); err != nil {
		return nil, pkgerrors.Wrap(err, "search listings")
	}

	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, normalize.Entry(row))
	}
	return entries, nil
}

func (r *PGRepository) SearchStores(ctx context.Context, term string, limit int) ([]model.Store, error) {
	query := `
        SELECT * FROM stores
        WHERE is_active = TRUE
          AND (name ILIKE $1 OR description ILIKE $1)
        ORDER BY name ASC
        LIMIT $2
    `
	var stores []model.Store
	if err := r.DB.SelectContext(ctx, &stores, query, "%"+term+"%", limit); err != nil {
		return nil, pkgerrors.Wrap(err, "search stores")
	}
	return stores, nil
}
