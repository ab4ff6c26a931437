package listener

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mercantil/storefront/internal/cart"
	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/model"
	"github.com/mercantil/storefront/pkg/logger"
)

type fakeCatalog struct {
	mu          sync.Mutex
	invalidates int
}

func (f *fakeCatalog) ListListings(ctx context.Context, filters *dto.ListingFilters) ([]model.CatalogEntry, int, error) {
	return nil, 0, nil
}

func (f *fakeCatalog) GetListing(ctx context.Context, id string) (*model.CatalogEntry, error) {
	return nil, nil
}

func (f *fakeCatalog) InvalidateListings(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidates++
	return nil
}

type stubEngine struct {
	ownerID string

	mu     sync.Mutex
	limits map[string]int
}

func newStubEngine(ownerID string) *stubEngine {
	return &stubEngine{ownerID: ownerID, limits: make(map[string]int)}
}

func (s *stubEngine) OwnerID() string                                { return s.ownerID }
func (s *stubEngine) Increment(ctx context.Context, id string) error { return nil }
func (s *stubEngine) Decrement(ctx context.Context, id string) error { return nil }
func (s *stubEngine) Quantity(id string) int                         { return 0 }
func (s *stubEngine) Quantities() map[string]int                     { return nil }
func (s *stubEngine) Reconcile(ctx context.Context) error            { return nil }

func (s *stubEngine) ApplyStockLimit(listingID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[listingID] = stock
}

func (s *stubEngine) limit(listingID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.limits[listingID]
	return v, ok
}

func TestProcessMessageFansOutStockChange(t *testing.T) {
	cat := &fakeCatalog{}
	registry := cart.NewRegistry()
	first := newStubEngine("owner-1")
	second := newStubEngine("owner-2")
	registry.Register(first)
	registry.Register(second)

	l := NewStockListener(nil, cat, registry, logger.NewNop())
	l.processMessage(context.Background(), []byte(`{
		"event_id": "evt-1",
		"event_type": "StockChanged",
		"payload": {"listing_id": "l1", "stock": 2}
	}`))

	require.Equal(t, 1, cat.invalidates)
	for _, engine := range []*stubEngine{first, second} {
		stock, ok := engine.limit("l1")
		require.True(t, ok)
		require.Equal(t, 2, stock)
	}
}

func TestProcessMessageIgnoresOtherEventTypes(t *testing.T) {
	cat := &fakeCatalog{}
	registry := cart.NewRegistry()
	engine := newStubEngine("owner-1")
	registry.Register(engine)

	l := NewStockListener(nil, cat, registry, logger.NewNop())
	l.processMessage(context.Background(), []byte(`{
		"event_id": "evt-2",
		"event_type": "PriceChanged",
		"payload": {"listing_id": "l1", "stock": 9}
	}`))

	require.Zero(t, cat.invalidates)
	_, ok := engine.limit("l1")
	require.False(t, ok)
}

func TestProcessMessageSkipsMalformedPayloads(t *testing.T) {
	cat := &fakeCatalog{}
	l := NewStockListener(nil, cat, cart.NewRegistry(), logger.NewNop())

	l.processMessage(context.Background(), []byte(`not json`))
	require.Zero(t, cat.invalidates)
}
