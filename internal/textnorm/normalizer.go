// Package textnorm turns noisy review text into the cleaned form used for
// training. Cleaning is an ordered list of named steps so every call site can
// pick the exact subset it needs.
package textnorm

import (
	"fmt"
	"strings"
)

// StepName identifies a transform step.
type StepName string

const (
	StepLowercase         StepName = "lowercase"
	StepStripURLs         StepName = "strip_urls"
	StepStripEmails       StepName = "strip_emails"
	StepStripPhones       StepName = "strip_phones"
	StepStripMentions     StepName = "strip_mentions"
	StepStripHashtags     StepName = "strip_hashtags"
	StepStripHTML         StepName = "strip_html"
	StepStripEmoji        StepName = "strip_emoji"
	StepExpandSlang       StepName = "expand_slang"
	StepStripPunctuation  StepName = "strip_punctuation"
	StepStripSymbols      StepName = "strip_symbols"
	StepTrimPunctuation   StepName = "trim_punctuation"
	StepDropNumericTokens StepName = "drop_numeric_tokens"
	StepDropSingleChars   StepName = "drop_single_chars"
	StepFoldUnicode       StepName = "fold_unicode"
	StepCollapseSpace     StepName = "collapse_whitespace"
)

// Presets reproduce the cleaning variants used across the dataset scripts.
var Presets = map[string][]StepName{
	"full": {
		StepLowercase, StepStripURLs, StepStripEmails, StepStripPhones,
		StepStripHTML, StepStripEmoji, StepExpandSlang, StepStripPunctuation,
		StepDropNumericTokens, StepDropSingleChars, StepCollapseSpace,
	},
	"light": {
		StepLowercase, StepStripURLs, StepStripMentions, StepStripHashtags,
		StepStripEmoji, StepStripSymbols, StepCollapseSpace, StepTrimPunctuation,
	},
	"minimal": {
		StepStripHTML, StepStripURLs, StepCollapseSpace,
	},
	"augment": {
		StepLowercase, StepStripURLs, StepStripEmails, StepStripMentions,
		StepStripHashtags, StepStripPunctuation, StepCollapseSpace,
	},
}

// Transform rewrites text. Transforms must accept any string, including "".
type Transform func(string) string

type step struct {
	name StepName
	fn   Transform
}

// Normalizer applies its steps in order.
type Normalizer struct {
	steps []step
	slang Dictionary
}

// New builds a normalizer from step names. slang is used by expand_slang;
// a nil dictionary makes that step a no-op.
func New(names []StepName, slang Dictionary) (*Normalizer, error) {
	n := &Normalizer{slang: slang}
	for _, name := range names {
		fn, err := n.lookup(name)
		if err != nil {
			return nil, err
		}
		n.steps = append(n.steps, step{name: name, fn: fn})
	}
	return n, nil
}

// NewPreset builds one of the named presets.
func NewPreset(preset string, slang Dictionary) (*Normalizer, error) {
	names, ok := Presets[strings.ToLower(strings.TrimSpace(preset))]
	if !ok {
		return nil, fmt.Errorf("unknown normalizer preset %q", preset)
	}
	return New(names, slang)
}

// Steps lists the configured step names in order.
func (n *Normalizer) Steps() []StepName {
	names := make([]StepName, len(n.steps))
	for i, s := range n.steps {
		names[i] = s.name
	}
	return names
}

// maxPasses bounds Normalize's fixpoint loop.
const maxPasses = 8

// Normalize runs the steps until the text stops changing, so that
// Normalize(Normalize(x)) == Normalize(x). A later step can expose a match
// for an earlier one, e.g. removing an emoji joins two digit groups into a
// phone number. It never fails.
func (n *Normalizer) Normalize(text string) string {
	if n == nil {
		return text
	}
	out := n.apply(text)
	for i := 1; i < maxPasses; i++ {
		next := n.apply(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (n *Normalizer) apply(text string) string {
	for _, s := range n.steps {
		text = s.fn(text)
	}
	return strings.TrimSpace(text)
}

func (n *Normalizer) lookup(name StepName) (Transform, error) {
	switch name {
	case StepLowercase:
		return strings.ToLower, nil
	case StepStripURLs:
		return stripURLs, nil
	case StepStripEmails:
		return stripEmails, nil
	case StepStripPhones:
		return stripPhones, nil
	case StepStripMentions:
		return stripMentions, nil
	case StepStripHashtags:
		return stripHashtags, nil
	case StepStripHTML:
		return stripHTML, nil
	case StepStripEmoji:
		return stripEmoji, nil
	case StepExpandSlang:
		return n.expandSlang, nil
	case StepStripPunctuation:
		return stripPunctuation, nil
	case StepStripSymbols:
		return stripSymbols, nil
	case StepTrimPunctuation:
		return trimPunctuation, nil
	case StepDropNumericTokens:
		return dropNumericTokens, nil
	case StepDropSingleChars:
		return dropSingleChars, nil
	case StepFoldUnicode:
		return foldUnicode, nil
	case StepCollapseSpace:
		return collapseWhitespace, nil
	default:
		return nil, fmt.Errorf("unknown normalizer step %q", name)
	}
}

// expandSlang rewrites every word run so that punctuation glued to a token
// ("gak,") does not hide it from the dictionary.
func (n *Normalizer) expandSlang(text string) string {
	if len(n.slang) == 0 {
		return text
	}
	return wordRunExpr.ReplaceAllStringFunc(text, func(w string) string {
		if repl, ok := n.slang.Lookup(w); ok {
			return repl
		}
		return w
	})
}
