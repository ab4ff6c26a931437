package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	cartdto "github.com/mercantil/storefront/internal/cart/dto"
	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/model"
)

func strPtr(s string) *string { return &s }

func TestEntryFromListingRow(t *testing.T) {
	row := dto.ListingRow{
		ListingID:   "l1",
		ProductID:   "p1",
		StoreID:     "s1",
		Price:       decimal.RequireFromString("12.50"),
		Stock:       8,
		Name:        "Arroz Agulhinha 1kg",
		Description: strPtr("tipo 1"),
		Category:    "mercearia",
		Subcategory: strPtr("graos"),
		Images:      []string{"a.jpg", "b.jpg"},
	}

	entry := Entry(row)
	require.Equal(t, "l1", entry.ID)
	require.Equal(t, "l1", entry.ListingID)
	require.Equal(t, "p1", entry.ProductID)
	require.Equal(t, "s1", entry.StoreID)
	require.Equal(t, "Arroz Agulhinha 1kg", entry.Name)
	require.Equal(t, "tipo 1", entry.Description)
	require.Equal(t, "graos", entry.Subcategory)
	require.True(t, entry.Price.Equal(decimal.RequireFromString("12.50")))
	require.Equal(t, 8, entry.Stock)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, entry.Images)
}

func TestEntryIsDeterministic(t *testing.T) {
	row := dto.ListingRow{ListingID: "l1", Name: "Feijao", Stock: 3}
	first := Entry(row)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Entry(row))
	}
}

func TestEntryFromSearchDocLegacyFields(t *testing.T) {
	doc := dto.SearchDoc{
		ListingID:   "l2",
		Name:        "Cafe Torrado",
		PrecoMinimo: 21.90,
		ImageURL:    "cafe.jpg",
		Stock:       4,
	}

	entry := Entry(doc)
	require.True(t, entry.Price.Equal(decimal.NewFromFloat(21.90)))
	require.Equal(t, []string{"cafe.jpg"}, entry.Images)
}

func TestEntryFromSearchDocCurrentFieldsWin(t *testing.T) {
	doc := dto.SearchDoc{
		ListingID:   "l2",
		Name:        "Cafe Torrado",
		Price:       19.90,
		PrecoMinimo: 21.90,
		Images:      []string{"new.jpg"},
		ImageURL:    "old.jpg",
	}

	entry := Entry(doc)
	require.True(t, entry.Price.Equal(decimal.NewFromFloat(19.90)))
	require.Equal(t, []string{"new.jpg"}, entry.Images)
}

func TestEntryFromItemRowPriceFallback(t *testing.T) {
	row := cartdto.ItemRow{
		ListingID:     "l3",
		Name:          "Leite Integral",
		PriceSnapshot: decimal.RequireFromString("5.49"),
	}

	entry := Entry(row)
	require.True(t, entry.Price.Equal(decimal.RequireFromString("5.49")))

	row.Price = decimal.RequireFromString("5.99")
	entry = Entry(row)
	require.True(t, entry.Price.Equal(decimal.RequireFromString("5.99")))
}

func TestEntryFromMapKeyAliases(t *testing.T) {
	entry := Entry(map[string]any{
		"id":           "l4",
		"nome":         "Acucar Cristal",
		"preco_minimo": 4.25,
		"estoque":      float64(12),
		"categoria":    "mercearia",
		"imagem":       "acucar.jpg",
	})

	require.Equal(t, "l4", entry.ID)
	require.Equal(t, "l4", entry.ListingID)
	require.Equal(t, "Acucar Cristal", entry.Name)
	require.True(t, entry.Price.Equal(decimal.NewFromFloat(4.25)))
	require.Equal(t, 12, entry.Stock)
	require.Equal(t, "mercearia", entry.Category)
	require.Equal(t, []string{"acucar.jpg"}, entry.Images)
}

func TestEntryFromMapMixedImageTypes(t *testing.T) {
	entry := Entry(map[string]any{
		"listing_id": "l5",
		"images":     []any{"a.jpg", 42, "", "b.jpg"},
	})
	require.Equal(t, []string{"a.jpg", "b.jpg"}, entry.Images)
}

func TestEntryDefaultsAndClamps(t *testing.T) {
	entry := Entry(model.CatalogEntry{
		ListingID: "l6",
		Stock:     -3,
		Price:     decimal.RequireFromString("-1.00"),
	})

	require.Equal(t, "l6", entry.ID)
	require.Zero(t, entry.Stock)
	require.True(t, entry.Price.IsZero())
	require.NotNil(t, entry.Images)
	require.Empty(t, entry.Images)
}

func TestEntryBackfillsListingIDFromID(t *testing.T) {
	entry := Entry(model.CatalogEntry{ID: "l7"})
	require.Equal(t, "l7", entry.ListingID)
}

func TestEntryUnsupportedInputs(t *testing.T) {
	require.Equal(t, model.CatalogEntry{}, Entry(nil))
	require.Equal(t, model.CatalogEntry{}, Entry(42))
	require.Equal(t, model.CatalogEntry{}, Entry((*dto.ListingRow)(nil)))
	require.Equal(t, model.CatalogEntry{}, Entry((*dto.SearchDoc)(nil)))
	require.Equal(t, model.CatalogEntry{}, Entry((*cartdto.ItemRow)(nil)))
}
