package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/catalog/normalize"
	"github.com/mercantil/storefront/internal/model"
	"github.com/mercantil/storefront/internal/search"
	"github.com/mercantil/storefront/pkg/i18n"
	"github.com/mercantil/storefront/pkg/logger"
	"github.com/mercantil/storefront/pkg/searchindex"
)

const (
	listingsIndex = "listings"
	storesIndex   = "stores"
)

type Config struct {
	Mode search.Mode

	// StoreID scopes ModeCatalog product searches to one store; empty
	// searches everywhere.
	StoreID string

	Debounce time.Duration
	MinChars int
	Limit    int
}

type searchEngine struct {
	mode     search.Mode
	storeID  string
	repo     search.Repository
	es       *searchindex.Client // nil when the index is unavailable
	recent   search.RecentStore
	session  string
	i18n     *i18n.Translator
	logger   logger.Logger
	debounce time.Duration
	minChars int
	limit    int

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	status     search.Status
	term       string
	products   []model.CatalogEntry
	stores     []model.Store
	selected   int
	panelOpen  bool
	errMessage string
	recentList []string
	seq        uint64
	timer      *time.Timer
	listeners  []func(search.Snapshot)
}

// NewSearchEngine builds an engine bound to one session. es may be nil;
// the relational fallback then serves every query.
func NewSearchEngine(cfg *Config, repo search.Repository, es *searchindex.Client, recent search.RecentStore, sessionID string, translator *i18n.Translator, log logger.Logger) search.Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = 2
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &searchEngine{
		mode:     cfg.Mode,
		storeID:  cfg.StoreID,
		repo:     repo,
		es:       es,
		recent:   recent,
		session:  sessionID,
		i18n:     translator,
		logger:   log,
		debounce: debounce,
		minChars: minChars,
		limit:    limit,
		ctx:      ctx,
		cancel:   cancel,
		status:   search.StatusIdle,
		selected: -1,
	}
}

func (e *searchEngine) SetTerm(term string) {
	e.mu.Lock()
	e.term = term
	e.selected = -1
	e.panelOpen = true
	e.stopTimerLocked()

	// any in-flight response is superseded by this keystroke
	e.seq++

	if len(strings.TrimSpace(term)) < e.minChars {
		e.status = search.StatusIdle
		e.products, e.stores = nil, nil
		e.errMessage = ""
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return
	}

	e.status = search.StatusDebouncing
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(term) })
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// fire issues the request once the debounce window elapsed untouched.
func (e *searchEngine) fire(term string) {
	e.mu.Lock()
	if e.term != term || e.status != search.StatusDebouncing {
		// superseded between timer expiry and lock acquisition
		e.mu.Unlock()
		return
	}
	e.seq++
	seq := e.seq
	e.status = search.StatusFetching
	e.errMessage = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)

	go e.query(seq, strings.TrimSpace(term))
}

func (e *searchEngine) query(seq uint64, term string) {
	var (
		products []model.CatalogEntry
		stores   []model.Store
	)

	p := pool.New().WithContext(e.ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		found, err := e.searchProducts(ctx, term)
		if err != nil {
			return err
		}
		products = found
		return nil
	})
	if e.mode == search.ModeGlobal {
		p.Go(func(ctx context.Context) error {
			found, err := e.searchStores(ctx, term)
			if err != nil {
				return err
			}
			stores = found
			return nil
		})
	}
	err := p.Wait()

	e.mu.Lock()
	if seq != e.seq {
		// stale response for a superseded request; never displayed
		e.mu.Unlock()
		return
	}

	if err != nil {
		e.logger.Error("search failed", zap.String("term", term), zap.Error(err))
		e.status = search.StatusError
		e.products, e.stores = nil, nil
		e.errMessage = e.translate("search.failed")
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return
	}

	e.products = products
	e.stores = stores
	e.errMessage = ""
	if len(products)+len(stores) == 0 {
		e.status = search.StatusEmpty
	} else {
		e.status = search.StatusSuccess
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)

	if len(products)+len(stores) > 0 {
		e.recordRecent(term)
	}
}

func (e *searchEngine) recordRecent(term string) {
	if e.recent == nil {
		return
	}
	updated, err := e.recent.Record(e.ctx, e.session, term)
	if err != nil {
		e.logger.Warn("failed to record recent search", zap.String("term", term), zap.Error(err))
		return
	}
	e.mu.Lock()
	e.recentList = updated
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *searchEngine) searchProducts(ctx context.Context, term string) ([]model.CatalogEntry, error) {
	if e.es != nil {
		filters := []map[string]any{
			{"term": map[string]any{"is_active": true}},
			{"range": map[string]any{"stock": map[string]any{"gt": 0}}},
		}
		if e.storeID != "" {
			filters = append(filters, map[string]any{"term": map[string]any{"store_id": e.storeID}})
		}
		query := map[string]any{
			"query": map[string]any{
				"bool": map[string]any{
					"must": []map[string]any{
						{
							"query_string": map[string]any{
								"query":  "*" + term + "*",
								"fields": []string{"name^3", "category", "description"},
							},
						},
					},
					"filter": filters,
				},
			},
			"size": e.limit,
		}
		res, err := e.es.Search(ctx, listingsIndex, query)
		if err == nil {
			entries := make([]model.CatalogEntry, 0, len(res.Hits.Hits))
			for _, hit := range res.Hits.Hits {
				var doc dto.SearchDoc
				if err := json.Unmarshal(hit.Source, &doc); err != nil {
					continue
				}
				entries = append(entries, normalize.Entry(doc))
			}
			return entries, nil
		}
		// index down; relational ranking still answers
		e.logger.Warn("index search failed, falling back to database", zap.Error(err))
	}
	return e.repo.SearchListings(ctx, term, e.storeID, e.limit)
}

func (e *searchEngine) searchStores(ctx context.Context, term string) ([]model.Store, error) {
	if e.es != nil {
		query := map[string]any{
			"query": map[string]any{
				"query_string": map[string]any{
					"query":  "*" + term + "*",
					"fields": []string{"name^2", "description"},
				},
			},
			"size": e.limit,
		}
		res, err := e.es.Search(ctx, storesIndex, query)
		if err == nil {
			stores := make([]model.Store, 0, len(res.Hits.Hits))
			for _, hit := range res.Hits.Hits {
				var store model.Store
				if err := json.Unmarshal(hit.Source, &store); err != nil {
					continue
				}
				stores = append(stores, store)
			}
			return stores, nil
		}
		e.logger.Warn("index store search failed, falling back to database", zap.Error(err))
	}
	return e.repo.SearchStores(ctx, term, e.limit)
}

func (e *searchEngine) Clear() {
	e.mu.Lock()
	e.stopTimerLocked()
	e.seq++
	e.term = ""
	e.status = search.StatusIdle
	e.products, e.stores = nil, nil
	e.selected = -1
	e.panelOpen = false
	e.errMessage = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *searchEngine) Blur() {
	e.mu.Lock()
	e.panelOpen = false
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *searchEngine) HandleKey(key string) *search.Selection {
	switch key {
	case search.KeyEscape:
		e.Clear()
		return nil
	case search.KeyArrowDown:
		e.moveSelection(1)
		return nil
	case search.KeyArrowUp:
		e.moveSelection(-1)
		return nil
	case search.KeyEnter:
		return e.resolveSelection()
	default:
		return nil
	}
}

// moveSelection walks the concatenation of products then stores with
// wraparound.
func (e *searchEngine) moveSelection(delta int) {
	e.mu.Lock()
	total := len(e.products) + len(e.stores)
	if total == 0 {
		e.mu.Unlock()
		return
	}
	if e.selected < 0 {
		if delta > 0 {
			e.selected = 0
		} else {
			e.selected = total - 1
		}
	} else {
		e.selected = ((e.selected+delta)%total + total) % total
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *searchEngine) resolveSelection() *search.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected < 0 {
		return nil
	}
	if e.selected < len(e.products) {
		product := e.products[e.selected]
		return &search.Selection{Product: &product}
	}
	idx := e.selected - len(e.products)
	if idx < len(e.stores) {
		store := e.stores[idx]
		return &search.Selection{Store: &store}
	}
	return nil
}

func (e *searchEngine) Snapshot() search.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *searchEngine) OnChange(fn func(search.Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *searchEngine) RefreshRecent(ctx context.Context) error {
	if e.recent == nil {
		return nil
	}
	terms, err := e.recent.List(ctx, e.session)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.recentList = terms
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return nil
}

func (e *searchEngine) Close() {
	e.mu.Lock()
	e.stopTimerLocked()
	e.seq++
	e.mu.Unlock()
	e.cancel()
}

func (e *searchEngine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *searchEngine) snapshotLocked() search.Snapshot {
	return search.Snapshot{
		Status:     e.status,
		Term:       e.term,
		Products:   append([]model.CatalogEntry(nil), e.products...),
		Stores:     append([]model.Store(nil), e.stores...),
		Selected:   e.selected,
		PanelOpen:  e.panelOpen,
		ErrMessage: e.errMessage,
		Recent:     append([]string(nil), e.recentList...),
	}
}

func (e *searchEngine) notify(snap search.Snapshot) {
	e.mu.Lock()
	listeners := append(([]func(search.Snapshot))(nil), e.listeners...)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func (e *searchEngine) translate(id string) string {
	if e.i18n == nil {
		return id
	}
	return e.i18n.T(id)
}
