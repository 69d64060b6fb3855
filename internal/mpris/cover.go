package mpris

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ArtURL converts a track artwork locator to an mpris:artUrl value.
// Remote URLs pass through, local paths become file:// URLs and
// anything else (such as artwork embedded in tags) yields "".
func ArtURL(artwork string) string {
	switch {
	case artwork == "":
		return ""
	case strings.HasPrefix(artwork, "http://"), strings.HasPrefix(artwork, "https://"),
		strings.HasPrefix(artwork, "file://"):
		return artwork
	case filepath.IsAbs(artwork):
		return (&url.URL{Scheme: "file", Path: artwork}).String()
	}
	return ""
}
