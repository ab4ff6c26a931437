package dto

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ItemRow is a cart item joined to its listing and product, as returned
// by the active-cart fetch.
type ItemRow struct {
	ItemID        string          `db:"item_id"`
	CartID        string          `db:"cart_id"`
	ListingID     string          `db:"listing_id"`
	Quantity      int             `db:"quantity"`
	PriceSnapshot decimal.Decimal `db:"price_snapshot"`
	ProductID     string          `db:"product_id"`
	StoreID       string          `db:"store_id"`
	Name          string          `db:"name"`
	Description   *string         `db:"description"`
	Category      string          `db:"category"`
	Subcategory   *string         `db:"subcategory"`
	Images        pq.StringArray  `db:"images"`
	Price         decimal.Decimal `db:"price"`
	Stock         int             `db:"stock"`
}
