package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mercantil/storefront/internal/model"
	"github.com/mercantil/storefront/internal/search"
	"github.com/mercantil/storefront/pkg/logger"
)

type fakeSearchRepo struct {
	mu       sync.Mutex
	calls    []string
	blockers map[string]chan struct{}
	products map[string][]model.CatalogEntry
	stores   map[string][]model.Store
	err      error
}

func newFakeSearchRepo() *fakeSearchRepo {
	return &fakeSearchRepo{
		blockers: make(map[string]chan struct{}),
		products: make(map[string][]model.CatalogEntry),
		stores:   make(map[string][]model.Store),
	}
}

func (f *fakeSearchRepo) SearchListings(ctx context.Context, term, storeID string, limit int) ([]model.CatalogEntry, error) {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	blocker := f.blockers[term]
	err := f.err
	found := append([]model.CatalogEntry(nil), f.products[term]...)
	f.mu.Unlock()

	if blocker != nil {
		select {
		case <-blocker:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (f *fakeSearchRepo) SearchStores(ctx context.Context, term string, limit int) ([]model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Store(nil), f.stores[term]...), nil
}

func (f *fakeSearchRepo) listingCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type memRecentStore struct {
	mu    sync.Mutex
	lists map[string][]string
}

func newMemRecentStore() *memRecentStore {
	return &memRecentStore{lists: make(map[string][]string)}
}

func (m *memRecentStore) List(ctx context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists[sessionID]...), nil
}

func (m *memRecentStore) Record(ctx context.Context, sessionID, term string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[sessionID] = search.PushRecent(m.lists[sessionID], term, 5)
	return append([]string(nil), m.lists[sessionID]...), nil
}

func entry(id, name string) model.CatalogEntry {
	return model.CatalogEntry{ID: id, ListingID: id, Name: name, Stock: 1}
}

func store(id, name string) model.Store {
	return model.Store{BaseModel: model.BaseModel{ID: id}, Name: name}
}

func newTestEngine(t *testing.T, mode search.Mode, repo search.Repository, recent search.RecentStore) search.Engine {
	t.Helper()
	engine := NewSearchEngine(&Config{
		Mode:     mode,
		Debounce: 5 * time.Millisecond,
		MinChars: 2,
		Limit:    20,
	}, repo, nil, recent, "session-1", nil, logger.NewNop())
	t.Cleanup(engine.Close)
	return engine
}

func waitStatus(t *testing.T, engine search.Engine, status search.Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return engine.Snapshot().Status == status
	}, time.Second, time.Millisecond)
}

func TestStaleResponseDiscarded(t *testing.T) {
	repo := newFakeSearchRepo()
	release := make(chan struct{})
	repo.blockers["arroz"] = release
	repo.products["arroz"] = []model.CatalogEntry{entry("old", "arroz agulhinha")}
	repo.products["arroz branco"] = []model.CatalogEntry{entry("new", "arroz branco")}

	engine := newTestEngine(t, search.ModeCatalog, repo, nil)

	engine.SetTerm("arroz")
	require.Eventually(t, func() bool {
		return len(repo.listingCalls()) == 1
	}, time.Second, time.Millisecond)

	engine.SetTerm("arroz branco")
	waitStatus(t, engine, search.StatusSuccess)

	// the older request resolves after the newer one already rendered
	close(release)
	time.Sleep(20 * time.Millisecond)

	snap := engine.Snapshot()
	require.Equal(t, search.StatusSuccess, snap.Status)
	require.Len(t, snap.Products, 1)
	require.Equal(t, "new", snap.Products[0].ID)
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["arroz"] = []model.CatalogEntry{entry("p1", "arroz")}

	engine := newTestEngine(t, search.ModeCatalog, repo, nil)

	engine.SetTerm("ar")
	engine.SetTerm("arr")
	engine.SetTerm("arroz")
	waitStatus(t, engine, search.StatusSuccess)

	require.Equal(t, []string{"arroz"}, repo.listingCalls())
}

func TestShortTermStaysIdle(t *testing.T) {
	repo := newFakeSearchRepo()
	engine := newTestEngine(t, search.ModeCatalog, repo, nil)

	engine.SetTerm("a")
	require.Equal(t, search.StatusIdle, engine.Snapshot().Status)

	time.Sleep(20 * time.Millisecond)
	require.Empty(t, repo.listingCalls())
}

func TestEmptyResultState(t *testing.T) {
	repo := newFakeSearchRepo()
	recent := newMemRecentStore()
	engine := newTestEngine(t, search.ModeCatalog, repo, recent)

	engine.SetTerm("nada")
	waitStatus(t, engine, search.StatusEmpty)

	// empty searches are not worth remembering
	time.Sleep(10 * time.Millisecond)
	terms, err := recent.List(context.Background(), "session-1")
	require.NoError(t, err)
	require.Empty(t, terms)
}

func TestErrorStateCarriesMessage(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.err = context.DeadlineExceeded
	engine := newTestEngine(t, search.ModeCatalog, repo, nil)

	engine.SetTerm("arroz")
	waitStatus(t, engine, search.StatusError)

	snap := engine.Snapshot()
	require.Empty(t, snap.Products)
	require.Equal(t, "search.failed", snap.ErrMessage)
}

func TestSuccessfulSearchRecordsRecent(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["arroz"] = []model.CatalogEntry{entry("p1", "arroz")}
	repo.products["feijao"] = []model.CatalogEntry{entry("p2", "feijao")}
	recent := newMemRecentStore()
	engine := newTestEngine(t, search.ModeCatalog, repo, recent)

	engine.SetTerm("arroz")
	waitStatus(t, engine, search.StatusSuccess)
	require.Eventually(t, func() bool {
		return len(engine.Snapshot().Recent) == 1
	}, time.Second, time.Millisecond)

	engine.SetTerm("feijao")
	waitStatus(t, engine, search.StatusSuccess)
	require.Eventually(t, func() bool {
		snap := engine.Snapshot()
		return len(snap.Recent) == 2 && snap.Recent[0] == "feijao" && snap.Recent[1] == "arroz"
	}, time.Second, time.Millisecond)
}

func TestRefreshRecentLoadsPersistedList(t *testing.T) {
	repo := newFakeSearchRepo()
	recent := newMemRecentStore()
	ctx := context.Background()
	_, err := recent.Record(ctx, "session-1", "leite")
	require.NoError(t, err)
	_, err = recent.Record(ctx, "session-1", "cafe")
	require.NoError(t, err)

	engine := newTestEngine(t, search.ModeCatalog, repo, recent)
	require.NoError(t, engine.RefreshRecent(ctx))
	require.Equal(t, []string{"cafe", "leite"}, engine.Snapshot().Recent)
}

func TestKeyboardNavigationAndSelection(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["merc"] = []model.CatalogEntry{entry("p1", "mercearia mix"), entry("p2", "mercado basico")}
	repo.stores["merc"] = []model.Store{store("s1", "Mercadinho da Esquina")}

	engine := newTestEngine(t, search.ModeGlobal, repo, nil)
	engine.SetTerm("merc")
	waitStatus(t, engine, search.StatusSuccess)

	// nothing highlighted yet: Enter resolves nothing
	require.Nil(t, engine.HandleKey(search.KeyEnter))

	engine.HandleKey(search.KeyArrowDown)
	require.Equal(t, 0, engine.Snapshot().Selected)

	sel := engine.HandleKey(search.KeyEnter)
	require.NotNil(t, sel)
	require.NotNil(t, sel.Product)
	require.Nil(t, sel.Store)
	require.Equal(t, "p1", sel.Product.ID)

	// walk past the products into the stores, then wrap around
	engine.HandleKey(search.KeyArrowDown)
	engine.HandleKey(search.KeyArrowDown)
	require.Equal(t, 2, engine.Snapshot().Selected)

	sel = engine.HandleKey(search.KeyEnter)
	require.NotNil(t, sel)
	require.Nil(t, sel.Product)
	require.NotNil(t, sel.Store)
	require.Equal(t, "s1", sel.Store.ID)

	engine.HandleKey(search.KeyArrowDown)
	require.Equal(t, 0, engine.Snapshot().Selected)

	engine.HandleKey(search.KeyArrowUp)
	require.Equal(t, 2, engine.Snapshot().Selected)

	engine.HandleKey(search.KeyEscape)
	snap := engine.Snapshot()
	require.Equal(t, search.StatusIdle, snap.Status)
	require.Empty(t, snap.Term)
	require.Empty(t, snap.Products)
	require.False(t, snap.PanelOpen)
	require.Equal(t, -1, snap.Selected)
}

func TestArrowUpFromNothingSelectsLast(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["merc"] = []model.CatalogEntry{entry("p1", "mercearia"), entry("p2", "mercado")}

	engine := newTestEngine(t, search.ModeCatalog, repo, nil)
	engine.SetTerm("merc")
	waitStatus(t, engine, search.StatusSuccess)

	engine.HandleKey(search.KeyArrowUp)
	require.Equal(t, 1, engine.Snapshot().Selected)
}

func TestBlurKeepsTermAndResults(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["arroz"] = []model.CatalogEntry{entry("p1", "arroz")}

	engine := newTestEngine(t, search.ModeCatalog, repo, nil)
	engine.SetTerm("arroz")
	waitStatus(t, engine, search.StatusSuccess)

	engine.Blur()
	snap := engine.Snapshot()
	require.False(t, snap.PanelOpen)
	require.Equal(t, "arroz", snap.Term)
	require.Len(t, snap.Products, 1)
}

func TestOnChangeObservesTransitions(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.products["arroz"] = []model.CatalogEntry{entry("p1", "arroz")}

	engine := newTestEngine(t, search.ModeCatalog, repo, nil)

	var mu sync.Mutex
	var seen []search.Status
	engine.OnChange(func(snap search.Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Status)
		mu.Unlock()
	})

	engine.SetTerm("arroz")
	waitStatus(t, engine, search.StatusSuccess)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var hasDebounce, hasFetch, hasSuccess bool
		for _, s := range seen {
			switch s {
			case search.StatusDebouncing:
				hasDebounce = true
			case search.StatusFetching:
				hasFetch = true
			case search.StatusSuccess:
				hasSuccess = true
			}
		}
		return hasDebounce && hasFetch && hasSuccess
	}, time.Second, time.Millisecond)
}
