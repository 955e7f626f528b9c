package service

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// maxSlugLength leaves room for a "-N" suffix under a 255-byte column.
const maxSlugLength = 240

// baseSlug derives the URL slug of a title: lowercased, transliterated to
// ASCII, words joined by hyphens. "How to train your dragon" becomes
// "how-to-train-your-dragon".
func baseSlug(title string) string {
	s := slug.Make(title)
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

// reservedSlugs are static path segments under /api/articles. An article
// with one of these slugs could not be fetched by GET.
var reservedSlugs = []string{"feed"}

// uniqueSlug returns base if it is neither taken nor reserved, otherwise the
// first of base-2, base-3, ... that is free.
func uniqueSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken)+len(reservedSlugs))
	for _, r := range reservedSlugs {
		used[r] = struct{}{}
	}
	for _, t := range taken {
		used[t] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
