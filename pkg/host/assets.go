package host

import (
	_ "embed"
	"net/url"

	"github.com/oakwood-commons/mccw/pkg/settings"
	"github.com/oakwood-commons/mccw/pkg/widget"
)

//go:embed css/frontend.css
var frontendCSS []byte

// Asset is a static resource a host attaches to front-end page loads.
type Asset struct {
	Handle      string
	Path        string
	Version     string
	ContentType string
	Content     []byte
}

// URL returns the asset path under base with the version as cache buster.
func (a Asset) URL(base string) string {
	u := base + "/" + a.Path
	if a.Version == "" {
		return u
	}
	return u + "?" + url.Values{"ver": {a.Version}}.Encode()
}

// Stylesheet returns the front-end stylesheet, versioned by the build version.
func Stylesheet() Asset {
	return Asset{
		Handle:      widget.TextDomain,
		Path:        "css/frontend.css",
		Version:     settings.VersionInformation.BuildVersion,
		ContentType: "text/css; charset=utf-8",
		Content:     frontendCSS,
	}
}
