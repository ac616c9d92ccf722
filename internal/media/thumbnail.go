package media

import (
	"fmt"
	"html"
)

// Size of a rendered thumbnail in pixels
type Size struct {
	Width  int
	Height int
}

// Common thumbnail sizes used by the admin lists and forms
var (
	ListThumbnail   = Size{Width: 50, Height: 60}
	InlineThumbnail = Size{Width: 80, Height: 100}
	PosterThumbnail = Size{Width: 100, Height: 110}
)

// Thumbnail renders an <img> tag for a stored file. An empty reference
// renders as an empty string.
func Thumbnail(s Storage, ref string, size Size) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" width="%d" height="%d">`,
		html.EscapeString(s.URL(ref)), size.Width, size.Height)
}
