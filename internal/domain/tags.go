package domain

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTag lower-cases v, strips diacritics and joins words with
// underscores so that "Sans Parfum", "fragrance-free" and "fragrance_free"
// compare the way catalog tags are written.
func NormalizeTag(v string) string {
	v = strings.ToLower(strings.TrimSpace(FoldAccents(v)))
	if v == "" {
		return ""
	}
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	}), "_")
}

// FoldAccents removes combining marks, e.g. "sèche" becomes "seche".
func FoldAccents(v string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, v)
	if err != nil {
		return v
	}
	return out
}

// TagSet is a set of normalized condition, ingredient or feature tags.
type TagSet map[string]struct{}

func NewTagSet(values ...string) TagSet {
	s := make(TagSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s TagSet) Add(v string) {
	v = NormalizeTag(v)
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

func (s TagSet) Has(v string) bool {
	_, ok := s[NormalizeTag(v)]
	return ok
}

func (s TagSet) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted, de-duplicated members of values that are in s.
func (s TagSet) Intersect(values []string) []string {
	if len(s) == 0 || len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		k := NormalizeTag(v)
		if _, ok := s[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
