package tui

import (
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
)

// addressed is implemented by every async result. The app drops results
// whose view is no longer the active one.
type addressed interface {
	viewID() uuid.UUID
}

type origin struct{ view uuid.UUID }

func (o origin) viewID() uuid.UUID { return o.view }

type itemsLoadedMsg struct {
	origin
	items []model.Item
	err   error
}

type itemCreatedMsg struct {
	origin
	item model.Item
	err  error
}

type toggleDoneMsg struct {
	origin
	itemID int
	sent   bool
	err    error
}

type itemLoadedMsg struct {
	origin
	item model.Item
	err  error
}

type imageReadMsg struct {
	origin
	name string
	data []byte
	err  error
}

type savedMsg struct {
	origin
	item model.Item
	err  error
}

type deletedMsg struct {
	origin
	err error
}

// Navigation.
type openDetailMsg struct{ itemID int }

type openListMsg struct{}
