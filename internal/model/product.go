package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description"` // Nullable
	Category    string         `db:"category" json:"category"`
	Subcategory *string        `db:"subcategory" json:"subcategory"` // Nullable
	Images      pq.StringArray `db:"images" json:"images"`
}

// ProductListing is a store-specific price/stock offer referencing a
// shared catalog Product.
type ProductListing struct {
	BaseModel
	ProductID string          `db:"product_id" json:"product_id"`
	StoreID   string          `db:"store_id" json:"store_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	IsActive  bool            `db:"is_active" json:"is_active"`
}
