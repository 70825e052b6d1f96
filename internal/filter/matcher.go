package filter

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/safetube/safetube-backend/internal/models"
)

// Matcher evaluates blocked keywords against video text. Compiled
// word-boundary patterns are cached per keyword so batch filtering does not
// recompile a regex for every video.
//
// Both sides of every comparison are lowercased first. No further
// normalization (accent folding, punctuation stripping) is applied; rules
// match the raw lowercased text.
type Matcher struct {
	exactWord *lru.Cache[string, *regexp.Regexp]
}

const exactWordCacheSize = 512

func NewMatcher() *Matcher {
	// Only errors on a non-positive size.
	cache, _ := lru.New[string, *regexp.Regexp](exactWordCacheSize)
	return &Matcher{exactWord: cache}
}

// Matches reports whether text matches the rule under its match type.
// An empty keyword matches everything under CONTAINS and STARTS_WITH (the
// empty string is a prefix and substring of anything); well-formed rule text
// is the rule author's responsibility, not the matcher's.
func (m *Matcher) Matches(text string, rule models.BlockedKeyword) bool {
	normText := strings.ToLower(text)
	normKeyword := strings.ToLower(rule.Keyword)

	switch rule.MatchType {
	case models.MatchExactWord:
		return m.exactWordPattern(normKeyword).MatchString(normText)
	case models.MatchStartsWith:
		// Fields drops empty tokens, so the empty-keyword-matches-everything
		// contract needs its own check: empty text has no tokens to test.
		if normKeyword == "" {
			return true
		}
		for _, word := range strings.Fields(normText) {
			if strings.HasPrefix(word, normKeyword) {
				return true
			}
		}
		return false
	default:
		// CONTAINS, and the documented fallback for anything unrecognized.
		return strings.Contains(normText, normKeyword)
	}
}

// exactWordPattern returns the compiled \b-delimited pattern for a
// lowercased keyword. The keyword is quoted: user-supplied rule text is
// never interpreted as a pattern ("c++" blocks the literal string "c++").
func (m *Matcher) exactWordPattern(keyword string) *regexp.Regexp {
	if re, ok := m.exactWord.Get(keyword); ok {
		return re
	}
	re := regexp.MustCompile(fmt.Sprintf(`\b%s\b`, regexp.QuoteMeta(keyword)))
	m.exactWord.Add(keyword, re)
	return re
}
