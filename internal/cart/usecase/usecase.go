package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/mercantil/storefront/internal/cart"
	"github.com/mercantil/storefront/internal/cart/dto"
	"github.com/mercantil/storefront/internal/catalog"
	"github.com/mercantil/storefront/internal/errs"
	"github.com/mercantil/storefront/internal/model"
	"github.com/mercantil/storefront/pkg/i18n"
	"github.com/mercantil/storefront/pkg/kmutex"
	"github.com/mercantil/storefront/pkg/logger"
)

type Config struct {
	ReconcileMaxTries int
}

type cartUseCase struct {
	ownerID string
	repo    cart.Repository
	catalog catalog.UseCase
	i18n    *i18n.Translator
	logger  logger.Logger

	// serializes mutations per listing id; mutations on distinct
	// listings proceed concurrently
	keys *kmutex.KMutex

	mu         sync.RWMutex
	quantities map[string]int

	cartMu sync.Mutex
	cartID string

	maxTries int
}

// NewCartUseCase builds the sync engine for one owner. The caller should
// Reconcile once after construction to seed the mirror.
func NewCartUseCase(ownerID string, repo cart.Repository, cat catalog.UseCase, translator *i18n.Translator, log logger.Logger, cfg *Config) cart.UseCase {
	maxTries := 3
	if cfg != nil && cfg.ReconcileMaxTries > 0 {
		maxTries = cfg.ReconcileMaxTries
	}
	return &cartUseCase{
		ownerID:    ownerID,
		repo:       repo,
		catalog:    cat,
		i18n:       translator,
		logger:     log,
		keys:       kmutex.New(),
		quantities: make(map[string]int),
		maxTries:   maxTries,
	}
}

func (uc *cartUseCase) OwnerID() string { return uc.ownerID }

func (uc *cartUseCase) Increment(ctx context.Context, listingID string) error {
	const op = "cart.increment"
	uc.keys.Lock(listingID)
	defer uc.keys.Unlock(listingID)

	entry, err := uc.catalog.GetListing(ctx, listingID)
	if err != nil {
		return uc.fail(ctx, op, "cart.increment_failed", err)
	}
	if entry == nil {
		return errs.NotFound(op, fmt.Errorf("listing %s not found", listingID)).
			WithMessage(uc.translate("cart.item_missing"))
	}

	current := uc.Quantity(listingID)
	if current >= entry.Stock {
		// refused before any remote call; controls should already be disabled
		return errs.Validation(op, fmt.Errorf("quantity %d at stock limit %d", current, entry.Stock)).
			WithMessage(uc.translate("cart.out_of_stock"))
	}

	cartID, err := uc.ensureCart(ctx)
	if err != nil {
		return uc.fail(ctx, op, "cart.increment_failed", err)
	}

	item, err := uc.repo.FindItem(ctx, cartID, listingID)
	if err != nil {
		return uc.fail(ctx, op, "cart.increment_failed", err)
	}

	if item == nil {
		_, err = uc.repo.AddItem(ctx, cartID, listingID, 1, entry.Price)
	} else {
		_, err = uc.repo.UpdateItem(ctx, item.ID, item.Quantity+1)
	}
	if err != nil {
		return uc.fail(ctx, op, "cart.increment_failed", err)
	}

	// mirror update only after the remote store acknowledged
	uc.mu.Lock()
	uc.quantities[listingID]++
	uc.mu.Unlock()
	return nil
}

func (uc *cartUseCase) Decrement(ctx context.Context, listingID string) error {
	const op = "cart.decrement"
	uc.keys.Lock(listingID)
	defer uc.keys.Unlock(listingID)

	if uc.Quantity(listingID) == 0 {
		return nil
	}

	uc.cartMu.Lock()
	cartID := uc.cartID
	uc.cartMu.Unlock()
	if cartID == "" {
		// mirror claims a quantity but no cart is known: stale mirror
		uc.logger.Warn("decrement without known cart, reconciling", zap.String("owner_id", uc.ownerID))
		return uc.reconcileQuiet(ctx)
	}

	item, err := uc.repo.FindItem(ctx, cartID, listingID)
	if err != nil {
		return uc.fail(ctx, op, "cart.decrement_failed", err)
	}
	if item == nil {
		// cache and truth already diverged; repair instead of mutating
		uc.logger.Warn("cart item missing remotely, reconciling",
			zap.String("owner_id", uc.ownerID),
			zap.String("listing_id", listingID),
		)
		return uc.reconcileQuiet(ctx)
	}

	// the repository deletes the row when the quantity reaches zero
	if _, err := uc.repo.UpdateItem(ctx, item.ID, item.Quantity-1); err != nil {
		return uc.fail(ctx, op, "cart.decrement_failed", err)
	}

	uc.mu.Lock()
	if q := uc.quantities[listingID] - 1; q > 0 {
		uc.quantities[listingID] = q
	} else {
		delete(uc.quantities, listingID)
	}
	uc.mu.Unlock()
	return nil
}

func (uc *cartUseCase) Quantity(listingID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.quantities[listingID]
}

func (uc *cartUseCase) Quantities() map[string]int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make(map[string]int, len(uc.quantities))
	for k, v := range uc.quantities {
		out[k] = v
	}
	return out
}

// Reconcile rebuilds the mirror wholesale from server truth, retrying
// transient fetch failures.
func (uc *cartUseCase) Reconcile(ctx context.Context) error {
	const op = "cart.reconcile"

	type remoteState struct {
		cart  *model.Cart
		items []dto.ItemRow
	}

	fetch := func() (remoteState, error) {
		c, items, err := uc.repo.GetActiveCart(ctx, uc.ownerID)
		if err != nil {
			return remoteState{}, err
		}
		return remoteState{cart: c, items: items}, nil
	}

	st, err := backoff.Retry(ctx, fetch,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(uc.maxTries)),
	)
	if err != nil {
		return errs.Network(op, err).WithMessage(uc.translate("cart.reconcile_failed"))
	}

	quantities := make(map[string]int, len(st.items))
	for _, item := range st.items {
		if item.Quantity > 0 {
			quantities[item.ListingID] = item.Quantity
		}
	}

	uc.cartMu.Lock()
	if st.cart != nil {
		uc.cartID = st.cart.ID
	} else {
		uc.cartID = ""
	}
	uc.cartMu.Unlock()

	uc.mu.Lock()
	uc.quantities = quantities
	uc.mu.Unlock()
	return nil
}

func (uc *cartUseCase) ApplyStockLimit(listingID string, stock int) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	q, ok := uc.quantities[listingID]
	if !ok {
		return
	}
	if stock <= 0 {
		delete(uc.quantities, listingID)
		return
	}
	if q > stock {
		uc.quantities[listingID] = stock
	}
}

// ensureCart returns the active cart id, creating the cart exactly once.
// The result is memoized so concurrent mutations share a single
// in-flight creation.
func (uc *cartUseCase) ensureCart(ctx context.Context) (string, error) {
	uc.cartMu.Lock()
	defer uc.cartMu.Unlock()

	if uc.cartID != "" {
		return uc.cartID, nil
	}

	c, _, err := uc.repo.GetActiveCart(ctx, uc.ownerID)
	if err != nil {
		return "", err
	}
	if c == nil {
		c, err = uc.repo.CreateCart(ctx, uc.ownerID)
		if err != nil {
			return "", err
		}
		uc.logger.Info("created cart", zap.String("owner_id", uc.ownerID), zap.String("cart_id", c.ID))
	}

	uc.cartID = c.ID
	return uc.cartID, nil
}

// fail reports a remote mutation failure: log, re-derive ground truth,
// and hand back a classified error with a user-visible one-liner. The
// optimistic delta is never applied.
func (uc *cartUseCase) fail(ctx context.Context, op, msgID string, err error) error {
	uc.logger.Error("cart mutation failed",
		zap.String("op", op),
		zap.String("owner_id", uc.ownerID),
		zap.Error(err),
	)
	if rerr := uc.Reconcile(ctx); rerr != nil {
		uc.logger.Error("reconcile after failed mutation", zap.String("op", op), zap.Error(rerr))
	}
	return errs.New(errs.KindOf(err), op, err).WithMessage(uc.translate(msgID))
}

func (uc *cartUseCase) reconcileQuiet(ctx context.Context) error {
	if err := uc.Reconcile(ctx); err != nil {
		uc.logger.Error("reconcile failed", zap.Error(err))
		return err
	}
	return nil
}

func (uc *cartUseCase) translate(id string) string {
	if uc.i18n == nil {
		return id
	}
	return uc.i18n.T(id)
}
