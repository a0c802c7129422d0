package textnorm

import "strings"

// ContainsEmoji reports whether text still holds an emoji rune.
func ContainsEmoji(text string) bool {
	return strings.IndexFunc(text, isEmoji) >= 0
}

// ContainsURL reports whether text still holds a URL.
func ContainsURL(text string) bool {
	return urlExpr.MatchString(text)
}
