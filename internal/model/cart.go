package model

import "github.com/shopspring/decimal"

type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCompleted CartStatus = "completed"
	CartStatusAbandoned CartStatus = "abandoned"
)

// Cart holds a user's pending listing quantities. At most one active
// cart exists per owner; it is created lazily on the first mutation.
type Cart struct {
	BaseModel
	OwnerID string     `db:"owner_id" json:"owner_id"`
	Status  CartStatus `db:"status" json:"status"`
}

// CartItem is never persisted with quantity zero; the row is deleted
// instead.
type CartItem struct {
	BaseModel
	CartID        string          `db:"cart_id" json:"cart_id"`
	ListingID     string          `db:"listing_id" json:"listing_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	PriceSnapshot decimal.Decimal `db:"price_snapshot" json:"price_snapshot"`
}
