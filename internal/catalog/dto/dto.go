package dto

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ListingFilters struct {
	StoreID   string
	Category  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ListingRow is the flat catalog row: a listing joined to its product
// and store metadata.
type ListingRow struct {
	ListingID   string          `db:"listing_id"`
	ProductID   string          `db:"product_id"`
	StoreID     string          `db:"store_id"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	IsActive    bool            `db:"is_active"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Category    string          `db:"category"`
	Subcategory *string         `db:"subcategory"`
	Images      pq.StringArray  `db:"images"`
	StoreName   string          `db:"store_name"`
}

// SearchDoc is the shape of an indexed listing document. Older index
// generations carry preco_minimo / image_url instead of price / images;
// the normalizer resolves both.
type SearchDoc struct {
	ListingID   string   `json:"listing_id"`
	ProductID   string   `json:"product_id"`
	StoreID     string   `json:"store_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	PrecoMinimo float64  `json:"preco_minimo"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Images      []string `json:"images"`
	ImageURL    string   `json:"image_url"`
}
