package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/mercantil/storefront/internal/cart/dto"
	"github.com/mercantil/storefront/internal/errs"
	"github.com/mercantil/storefront/internal/model"
)

const pqUniqueViolation = "23505"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetActiveCart(ctx context.Context, ownerID string) (*model.Cart, []dto.ItemRow, error) {
	var cart model.Cart
	query := `SELECT * FROM carts WHERE owner_id = $1 AND status = 'active' LIMIT 1`
	err := r.DB.GetContext(ctx, &cart, query, ownerID)
	if err != nil {
		if pkgerrors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(err, "get active cart")
	}

	var items []dto.ItemRow
	itemsQuery := `
        SELECT
            i.id AS item_id,
            i.cart_id AS cart_id,
            i.listing_id AS listing_id,
            i.quantity AS quantity,
            i.price_snapshot AS price_snapshot,
            l.product_id AS product_id,
            l.store_id AS store_id,
            l.price AS price,
            l.stock AS stock,
            p.name AS name,
            p.description AS description,
            p.category AS category,
            p.subcategory AS subcategory,
            p.images AS images
        FROM cart_items i
        JOIN product_listings l ON l.id = i.listing_id
        JOIN products p ON p.id = l.product_id
        WHERE i.cart_id = $1
        ORDER BY i.created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &items, itemsQuery, cart.ID); err != nil {
		return nil, nil, pkgerrors.Wrap(err, "get cart items")
	}

	return &cart, items, nil
}

func (r *PGRepository) CreateCart(ctx context.Context, ownerID string) (*model.Cart, error) {
	now := time.Now()
	cart := &model.Cart{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:   ownerID,
		Status:    model.CartStatusActive,
	}

	query := `
        INSERT INTO carts (id, owner_id, status, created_at, updated_at)
        VALUES (:id, :owner_id, :status, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, cart)
	if err != nil {
		// another session won the one-active-cart race; adopt theirs
		var pqErr *pq.Error
		if pkgerrors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			existing, _, ferr := r.GetActiveCart(ctx, ownerID)
			if ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(err, "create cart")
	}

	return cart, nil
}

func (r *PGRepository) FindItem(ctx context.Context, cartID, listingID string) (*model.CartItem, error) {
	var item model.CartItem
	query := `SELECT * FROM cart_items WHERE cart_id = $1 AND listing_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &item, query, cartID, listingID)
	if err != nil {
		if pkgerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find cart item")
	}
	return &item, nil
}

func (r *PGRepository) AddItem(ctx context.Context, cartID, listingID string, quantity int, priceSnapshot decimal.Decimal) (*model.CartItem, error) {
	now := time.Now()
	item := &model.CartItem{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CartID:        cartID,
		ListingID:     listingID,
		Quantity:      quantity,
		PriceSnapshot: priceSnapshot,
	}

	query := `
        INSERT INTO cart_items (id, cart_id, listing_id, quantity, price_snapshot, created_at, updated_at)
        VALUES (:id, :cart_id, :listing_id, :quantity, :price_snapshot, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, item); err != nil {
		return nil, pkgerrors.Wrap(err, "add cart item")
	}
	return item, nil
}

// UpdateItem sets the item's quantity, deleting the row when the result
// drops to zero or below. A missing target is a conflict: the caller's
// view of the cart is stale.
func (r *PGRepository) UpdateItem(ctx context.Context, itemID string, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		res, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "delete cart item")
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, errs.Conflict("cart_item.update", pkgerrors.New("item already deleted"))
		}
		return nil, nil
	}

	var item model.CartItem
	query := `
        UPDATE cart_items
        SET quantity = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING *
    `
	err := r.DB.GetContext(ctx, &item, query, itemID, quantity)
	if err != nil {
		if pkgerrors.Is(err, sql.ErrNoRows) {
			return nil, errs.Conflict("cart_item.update", pkgerrors.New("item no longer exists"))
		}
		return nil, pkgerrors.Wrap(err, "update cart item")
	}
	return &item, nil
}

func (r *PGRepository) RemoveItem(ctx context.Context, itemID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		return pkgerrors.Wrap(err, "remove cart item")
	}
	return nil
}
