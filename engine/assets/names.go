package assets

import (
	"math/big"
	"path"
	"strings"
	"unicode"
)

// NameFromPath derives the table name of a locator: whitespace removed,
// directories and the final extension stripped. "./textures/uv Grid.jpg" -> "uvGrid".
func NameFromPath(locator string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripQuery(locator))

	s = path.Base(strings.ReplaceAll(s, "\\", "/"))
	if s == "." || s == "/" {
		return ""
	}
	return strings.TrimSuffix(s, path.Ext(s))
}

// IncrementString increments the trailing integer of s, or appends "1" when
// there is none: "tile" -> "tile1", "tile9" -> "tile10", "a007" -> "a8".
func IncrementString(s string) string {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n := new(big.Int)
	if i < len(s) {
		n.SetString(s[i:], 10)
	}
	return s[:i] + n.Add(n, big.NewInt(1)).String()
}
