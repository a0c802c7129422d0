package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	urlExpr      = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	emailExpr    = regexp.MustCompile(`\S+@\S+`)
	phoneExpr    = regexp.MustCompile(`(?:\+62|\b62|\b0)[\s-]?\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`)
	mentionExpr  = regexp.MustCompile(`@\w+`)
	hashtagExpr  = regexp.MustCompile(`#\w+`)
	tagExpr      = regexp.MustCompile(`<[^<>]*>`)
	punctExpr    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	symbolExpr   = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
	edgePunct    = regexp.MustCompile(`^[.,!?\s]+|[.,!?\s]+$`)
	spaceExpr    = regexp.MustCompile(`\s+`)
	wordRunExpr  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	htmlHintExpr = regexp.MustCompile(`<[a-zA-Z/!][^<>]*>|&[a-zA-Z#0-9]+;`)
)

func stripURLs(text string) string     { return urlExpr.ReplaceAllString(text, " ") }
func stripEmails(text string) string   { return emailExpr.ReplaceAllString(text, " ") }
func stripPhones(text string) string   { return phoneExpr.ReplaceAllString(text, " ") }
func stripMentions(text string) string { return mentionExpr.ReplaceAllString(text, " ") }
func stripHashtags(text string) string { return hashtagExpr.ReplaceAllString(text, " ") }

func stripPunctuation(text string) string { return punctExpr.ReplaceAllString(text, " ") }

// stripSymbols keeps basic sentence punctuation.
func stripSymbols(text string) string { return symbolExpr.ReplaceAllString(text, " ") }

func trimPunctuation(text string) string { return edgePunct.ReplaceAllString(text, "") }

func collapseWhitespace(text string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))
}

func foldUnicode(text string) string { return norm.NFKC.String(text) }

// stripHTML parses markup and keeps the text nodes. Plain text skips the parser.
func stripHTML(text string) string {
	if !htmlHintExpr.MatchString(text) {
		return text
	}
	// Tags separate words even when the markup has no whitespace around them.
	spaced := strings.ReplaceAll(text, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced))
	if err != nil {
		return tagExpr.ReplaceAllString(spaced, " ")
	}
	doc.Find("script, style").Remove()
	return tagExpr.ReplaceAllString(doc.Text(), " ")
}

func stripEmoji(text string) string {
	return strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return ' '
		}
		return r
	}, text)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols & pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport & map
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // flags
		return true
	case r >= 0x1F900 && r <= 0x1F9FF, r >= 0x1FA70 && r <= 0x1FAFF:
		return true
	case r >= 0x1F000 && r <= 0x1F2FF: // mahjong, cards, enclosed
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0x2300 && r <= 0x23FF:
		return true
	case r >= 0x2640 && r <= 0x2642:
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x200D, r == 0x20E3, r == 0x3030, r == 0x24C2:
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag sequences
		return true
	}
	return false
}

func dropNumericTokens(text string) string {
	return filterTokens(text, func(w string) bool { return !isDigits(w) })
}

// dropSingleChars keeps "a" and "i", which are words in Indonesian.
func dropSingleChars(text string) string {
	return filterTokens(text, func(w string) bool {
		if len([]rune(w)) > 1 {
			return true
		}
		lw := strings.ToLower(w)
		return lw == "a" || lw == "i"
	})
}

func filterTokens(text string, keep func(string) bool) string {
	words := strings.Fields(text)
	out := words[:0]
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
