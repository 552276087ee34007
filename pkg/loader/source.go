package loader

import (
	"context"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// FileSource serves the top-level categories of a file, sorted by name.
// The file is read on every call.
type FileSource struct {
	Path   string
	Locale language.Tag
	Logger logr.Logger
}

// Categories implements the item source contract.
func (s FileSource) Categories(ctx context.Context) ([]widget.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lgr := s.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	cats, err := LoadFile(s.Path, lgr)
	if err != nil {
		return nil, err
	}
	return Prepare(cats, s.Locale), nil
}

// Prepare returns the top-level categories of cats sorted by name. cats is
// not modified.
func Prepare(cats []widget.Category, tag language.Tag) []widget.Category {
	top := TopLevel(cats)
	SortByName(top, tag)
	return top
}
