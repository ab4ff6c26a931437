package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/mercantil/storefront/internal/catalog/dto"
)

const listingColumns = `
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
        s.name AS store_name`

const listingJoins = `
    FROM product_listings l
    JOIN products p ON p.id = l.product_id
    JOIN stores s ON s.id = l.store_id`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// FindListings returns active, in-stock listings joined to product and
// store metadata.
func (r *PGRepository) FindListings(ctx context.Context, f *dto.ListingFilters) ([]dto.ListingRow, int, error) {
	conditions := []string{"l.is_active = TRUE", "l.stock > 0", "s.is_active = TRUE"}
	args := map[string]interface{}{}

	if f.StoreID != "" {
		conditions = append(conditions, "l.store_id = :store_id")
		args["store_id"] = f.StoreID
	}
	if f.Category != "" {
		conditions = append(conditions, "p.category = :category")
		args["category"] = f.Category
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	countQuery := "SELECT count(*)" + listingJoins + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count listings")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	orderBy := "p.name ASC"
	if f.SortBy != "" {
		// whitelist sortable fields
		switch f.SortBy {
		case "name":
			orderBy = "p.name"
		case "price":
			orderBy = "l.price"
		case "created_at":
			orderBy = "l.created_at"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("SELECT %s%s%s ORDER BY %s", listingColumns, listingJoins, whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "prepare listings query")
	}
	defer nstmt.Close()

	var listings []dto.ListingRow
	if err := nstmt.SelectContext(ctx, &listings, args); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "select listings")
	}

	return listings, count, nil
}

func (r *PGRepository) FindListingByID(ctx context.Context, id string) (*dto.ListingRow, error) {
	var row dto.ListingRow
	query := fmt.Sprintf("SELECT %s%s WHERE l.id = $1 LIMIT 1", listingColumns, listingJoins)
	err := r.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if pkgerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "get listing")
	}
	return &row, nil
}
