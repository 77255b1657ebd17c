// Package tui is the interactive client: a list view and a detail view
// driven by Bubble Tea, talking to the API through Service.
package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/i18n"
	"github.com/idilsaglam/tada/internal/model"
)

// Service is the subset of *api.Client the views need.
type Service interface {
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id int) (model.Item, error)
	Create(ctx context.Context, name string) (model.Item, error)
	Update(ctx context.Context, id int, patch model.ItemPatch) (model.Item, error)
	Delete(ctx context.Context, id int) error
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

// Options carries the collaborators shared by every view.
type Options struct {
	Tenant     string
	Translator *i18n.Translator
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Translator == nil {
		o.Translator = i18n.New("en")
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}
