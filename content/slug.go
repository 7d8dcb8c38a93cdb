package content

import "github.com/gosimple/slug"

// Slugify derives a URL-safe identifier from a display name or title.
// Cyrillic input is transliterated so Russian-only titles still yield
// ASCII slugs.
func Slugify(s string) string {
	return slug.Make(s)
}
