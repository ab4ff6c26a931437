package search

import (
	"context"

	"github.com/mercantil/storefront/internal/model"
)

// Mode selects the collections an engine queries.
type Mode int

const (
	// ModeGlobal searches products and stores.
	ModeGlobal Mode = iota
	// ModeCatalog searches products only.
	ModeCatalog
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusDebouncing Status = "debouncing"
	StatusFetching   Status = "fetching"
	StatusSuccess    Status = "success"
	StatusEmpty      Status = "empty"
	StatusError      Status = "error"
)

// Key names follow the DOM convention the presentation layer forwards.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// Snapshot is an immutable view of the engine state handed to display
// surfaces and change listeners.
type Snapshot struct {
	Status     Status
	Term       string
	Products   []model.CatalogEntry
	Stores     []model.Store
	Selected   int
	PanelOpen  bool
	ErrMessage string
	Recent     []string
}

// Selection is the result of resolving the highlighted row; exactly one
// field is set.
type Selection struct {
	Product *model.CatalogEntry
	Store   *model.Store
}

// Engine is the debounced, cancellable search engine. Results are
// applied only when they answer the newest issued request; anything
// older is discarded.
type Engine interface {
	SetTerm(term string)
	Clear()

	// Blur hides the results panel without clearing the term.
	Blur()

	// HandleKey processes keyboard navigation; Enter returns the resolved
	// selection, every other key returns nil.
	HandleKey(key string) *Selection

	Snapshot() Snapshot
	OnChange(fn func(Snapshot))

	// RefreshRecent loads the persisted recent-search list into the state.
	RefreshRecent(ctx context.Context) error

	Close()
}
