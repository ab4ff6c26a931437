package model

import "github.com/shopspring/decimal"

// CatalogEntry is the canonical product shape every display surface
// consumes. Heterogeneous rows (catalog listings, cart items, search
// hits) are mapped into it by catalog/normalize.
type CatalogEntry struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ListingID   string          `json:"listing_id"`
	StoreID     string          `json:"store_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Images      []string        `json:"images"`
}
