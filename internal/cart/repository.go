package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mercantil/storefront/internal/cart/dto"
	"github.com/mercantil/storefront/internal/model"
)

// Repository is the remote cart capability. GetActiveCart and FindItem
// return nil (no error) when nothing matches; UpdateItem deletes the row
// and returns nil when the new quantity is zero or below.
type Repository interface {
	GetActiveCart(ctx context.Context, ownerID string) (*model.Cart, []dto.ItemRow, error)
	CreateCart(ctx context.Context, ownerID string) (*model.Cart, error)
	FindItem(ctx context.Context, cartID, listingID string) (*model.CartItem, error)
	AddItem(ctx context.Context, cartID, listingID string, quantity int, priceSnapshot decimal.Decimal) (*model.CartItem, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, itemID string) error
}
