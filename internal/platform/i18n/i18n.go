// Package i18n defines the languages codemother serves and how request
// language preferences map onto them.
package i18n

import (
	"strings"

	_ "github.com/louisbranch/codemother/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
)

var (
	englishUS           = language.MustParse("en-US")
	simplifiedChineseCN = language.MustParse("zh-CN")

	supportedTags = []language.Tag{englishUS, simplifiedChineseCN}
	matcher       = language.NewMatcher(supportedTags)
)

// SupportedTags returns the languages with a registered catalog.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supportedTags))
	copy(out, supportedTags)
	return out
}

// DefaultTag is the language used when nothing else matches.
func DefaultTag() language.Tag {
	return englishUS
}

// ParseTag parses a language value and reports whether it maps onto a
// supported language with at least high confidence.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return language.Tag{}, false
	}
	return supportedTags[index], true
}

// MatchTags picks the best supported language for a preference list.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}
