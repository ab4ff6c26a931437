// Package normalize maps the differently-shaped product rows arriving
// from the catalog, the cart, and the search index into one canonical
// model.CatalogEntry. All ambiguous-field resolution lives here: every
// field has a fixed fallback order and a defined default, so identical
// input always yields identical output and partial rows never panic.
package normalize

import (
	"github.com/shopspring/decimal"

	cartdto "github.com/mercantil/storefront/internal/cart/dto"
	"github.com/mercantil/storefront/internal/catalog/dto"
	"github.com/mercantil/storefront/internal/model"
)

// Entry normalizes any supported input shape. Unsupported inputs yield
// the zero entry rather than an error; callers treat it as "nothing to
// display".
func Entry(input any) model.CatalogEntry {
	switch v := input.(type) {
	case model.CatalogEntry:
		return withDefaults(v)
	case *model.CatalogEntry:
		if v == nil {
			return model.CatalogEntry{}
		}
		return withDefaults(*v)
	case dto.ListingRow:
		return fromListingRow(&v)
	case *dto.ListingRow:
		if v == nil {
			return model.CatalogEntry{}
		}
		return fromListingRow(v)
	case dto.SearchDoc:
		return fromSearchDoc(&v)
	case *dto.SearchDoc:
		if v == nil {
			return model.CatalogEntry{}
		}
		return fromSearchDoc(v)
	case cartdto.ItemRow:
		return fromItemRow(&v)
	case *cartdto.ItemRow:
		if v == nil {
			return model.CatalogEntry{}
		}
		return fromItemRow(v)
	case map[string]any:
		return fromMap(v)
	default:
		return model.CatalogEntry{}
	}
}

func fromListingRow(r *dto.ListingRow) model.CatalogEntry {
	return withDefaults(model.CatalogEntry{
		ID:          r.ListingID,
		ProductID:   r.ProductID,
		ListingID:   r.ListingID,
		StoreID:     r.StoreID,
		Name:        r.Name,
		Description: strOrEmpty(r.Description),
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Subcategory: strOrEmpty(r.Subcategory),
		Images:      []string(r.Images),
	})
}

func fromItemRow(r *cartdto.ItemRow) model.CatalogEntry {
	// current listing price wins; the snapshot is the fallback for
	// listings that have since gone inactive
	price := r.Price
	if price.IsZero() {
		price = r.PriceSnapshot
	}
	return withDefaults(model.CatalogEntry{
		ID:          r.ListingID,
		ProductID:   r.ProductID,
		ListingID:   r.ListingID,
		StoreID:     r.StoreID,
		Name:        r.Name,
		Description: strOrEmpty(r.Description),
		Price:       price,
		Stock:       r.Stock,
		Category:    r.Category,
		Subcategory: strOrEmpty(r.Subcategory),
		Images:      []string(r.Images),
	})
}

func fromSearchDoc(d *dto.SearchDoc) model.CatalogEntry {
	price := d.Price
	if price == 0 {
		price = d.PrecoMinimo
	}
	images := d.Images
	if len(images) == 0 && d.ImageURL != "" {
		images = []string{d.ImageURL}
	}
	return withDefaults(model.CatalogEntry{
		ID:          d.ListingID,
		ProductID:   d.ProductID,
		ListingID:   d.ListingID,
		StoreID:     d.StoreID,
		Name:        d.Name,
		Description: d.Description,
		Price:       decimal.NewFromFloat(price),
		Stock:       d.Stock,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Images:      images,
	})
}

func fromMap(m map[string]any) model.CatalogEntry {
	listingID := str(m, "listing_id", "listingId", "id")
	entry := model.CatalogEntry{
		ID:          listingID,
		ProductID:   str(m, "product_id", "productId"),
		ListingID:   listingID,
		StoreID:     str(m, "store_id", "storeId"),
		Name:        str(m, "name", "nome"),
		Description: str(m, "description", "descricao"),
		Price:       num(m, "price", "preco_minimo", "precoMinimo"),
		Stock:       int(num(m, "stock", "estoque").IntPart()),
		Category:    str(m, "category", "categoria"),
		Subcategory: str(m, "subcategory", "subcategoria"),
		Images:      imageList(m),
	}
	return withDefaults(entry)
}

func withDefaults(e model.CatalogEntry) model.CatalogEntry {
	if e.ID == "" {
		e.ID = e.ListingID
	}
	if e.ListingID == "" {
		e.ListingID = e.ID
	}
	if e.Stock < 0 {
		e.Stock = 0
	}
	if e.Price.IsNegative() {
		e.Price = decimal.Zero
	}
	if e.Images == nil {
		e.Images = []string{}
	}
	return e
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) decimal.Decimal {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n != 0 {
				return decimal.NewFromFloat(n)
			}
		case int:
			if n != 0 {
				return decimal.NewFromInt(int64(n))
			}
		case int64:
			if n != 0 {
				return decimal.NewFromInt(n)
			}
		case string:
			if d, err := decimal.NewFromString(n); err == nil && !d.IsZero() {
				return d
			}
		case decimal.Decimal:
			if !n.IsZero() {
				return n
			}
		}
	}
	return decimal.Zero
}

func imageList(m map[string]any) []string {
	if v, ok := m["images"]; ok {
		switch imgs := v.(type) {
		case []string:
			if len(imgs) > 0 {
				return imgs
			}
		case []any:
			out := make([]string, 0, len(imgs))
			for _, img := range imgs {
				if s, ok := img.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	// legacy single-image fields wrap into a one-element list
	if s := str(m, "image_url", "imageUrl", "imagem"); s != "" {
		return []string{s}
	}
	return []string{}
}
