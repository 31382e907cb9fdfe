package geo

import "regexp"

// DefaultColor is used when a feature's style string carries no hex color
// token. Matches the default stroke of the client-side map library.
const DefaultColor = "#3388ff"

// hexColorPattern matches the first #rrggbb or #rgb token in a style string,
// e.g. "fill:#2E86AB;stroke-width:2".
var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})`)

// ExtractColor pulls the hex color out of an embedded style token, falling
// back to DefaultColor when the style has none.
func ExtractColor(style string) string {
	if m := hexColorPattern.FindString(style); m != "" {
		return m
	}
	return DefaultColor
}
