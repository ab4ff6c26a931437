// Package app bundles the shared infrastructure and hands out the
// per-owner cart engines and per-session search engines the
// presentation layer consumes. Engines are explicit instances with a
// defined lifecycle, never ambient globals.
package app

import (
	"context"
	"time"

	"github.com/mercantil/storefront/config"
	"github.com/mercantil/storefront/internal/cart"
	cartUCPkg "github.com/mercantil/storefront/internal/cart/usecase"
	"github.com/mercantil/storefront/internal/catalog"
	"github.com/mercantil/storefront/internal/search"
	searchUCPkg "github.com/mercantil/storefront/internal/search/usecase"
	"github.com/mercantil/storefront/pkg/i18n"
	"github.com/mercantil/storefront/pkg/logger"
	"github.com/mercantil/storefront/pkg/searchindex"
)

type App struct {
	Catalog  catalog.UseCase
	Registry *cart.Registry

	cfg        *config.Config
	cartRepo   cart.Repository
	searchRepo search.Repository
	recent     search.RecentStore
	es         *searchindex.Client
	i18n       *i18n.Translator
	logger     logger.Logger
}

func New(cfg *config.Config, cat catalog.UseCase, cartRepo cart.Repository, searchRepo search.Repository, recent search.RecentStore, es *searchindex.Client, translator *i18n.Translator, log logger.Logger) *App {
	return &App{
		Catalog:    cat,
		Registry:   cart.NewRegistry(),
		cfg:        cfg,
		cartRepo:   cartRepo,
		searchRepo: searchRepo,
		recent:     recent,
		es:         es,
		i18n:       translator,
		logger:     log,
	}
}

// CartEngine builds the owner's sync engine, seeds its mirror from
// server truth, and registers it for stock-event fan-out.
func (a *App) CartEngine(ctx context.Context, ownerID string) (cart.UseCase, error) {
	engine := cartUCPkg.NewCartUseCase(ownerID, a.cartRepo, a.Catalog, a.i18n, a.logger, &cartUCPkg.Config{
		ReconcileMaxTries: a.cfg.Cart.ReconcileMaxTries,
	})
	if err := engine.Reconcile(ctx); err != nil {
		return nil, err
	}
	a.Registry.Register(engine)
	return engine, nil
}

// ReleaseCartEngine drops the owner's engine from stock-event fan-out.
func (a *App) ReleaseCartEngine(ownerID string) {
	a.Registry.Unregister(ownerID)
}

// SearchEngine builds a search engine bound to one session. storeID
// scopes catalog-mode searches to one store and may be empty in global
// mode.
func (a *App) SearchEngine(sessionID string, mode search.Mode, storeID string) search.Engine {
	return searchUCPkg.NewSearchEngine(&searchUCPkg.Config{
		Mode:     mode,
		StoreID:  storeID,
		Debounce: time.Duration(a.cfg.Search.DebounceMillis) * time.Millisecond,
		MinChars: a.cfg.Search.MinChars,
		Limit:    a.cfg.Search.Limit,
	}, a.searchRepo, a.es, a.recent, sessionID, a.i18n, a.logger)
}
