// Package constraint turns a loosely structured recommendation request into
// a search text and a normalized constraint set.
package constraint

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// "no sugar", "without fragrance", "sans parfum"
	negationPattern = regexp.MustCompile(`\b(?:no|without|sans)\s+([\p{L}_]+)`)
	// "sugar-free", "alcohol_free"
	freeSuffixPattern = regexp.MustCompile(`\b([\p{L}]+)[-_]free\b`)
	// "under 3000", "less than 2500", "max 1000"
	priceCapPattern = regexp.MustCompile(`\b(?:under|below|less than|max|maximum|up to|moins de)\s*(\d+(?:\.\d+)?)`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// Tier keywords, checked in order. The generic word "budget" is only
// consulted after every explicit tier word, so "medium budget" stays medium.
var tierKeywords = []struct {
	tier  domain.BudgetTier
	words []string
}{
	{domain.TierLow, []string{"low", "cheap", "affordable", "inexpensive", "pas cher"}},
	{domain.TierHigh, []string{"high", "expensive", "premium", "luxury"}},
	{domain.TierMedium, []string{"medium", "moderate", "average", "mid"}},
	{domain.TierLow, []string{"budget"}},
}

var negationNoise = map[string]bool{
	"more": true, "less": true, "than": true, "the": true, "any": true,
	"longer": true, "matter": true, "problem": true, "need": true,
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "without": true,
	"that": true, "this": true, "are": true, "but": true, "not": true,
	"need": true, "want": true, "looking": true, "something": true,
	"product": true, "products": true, "please": true, "have": true,
	"under": true, "below": true, "less": true, "than": true, "max": true,
	"pour": true, "avec": true, "sans": true, "les": true, "des": true, "une": true,
}

// Parse builds the retrieval text and the constraint set for req. It never
// fails: unsupported values are normalized to "unset".
func Parse(req domain.RecommendationRequest) (string, *domain.ConstraintSet) {
	cs := domain.NewConstraintSet()
	var parts []string

	if v := strings.TrimSpace(req.Category); v != "" {
		cs.Category = domain.NormalizeTag(v)
		parts = append(parts, "category: "+v)
	}
	if v := strings.TrimSpace(req.ProductType); v != "" {
		cs.ProductType = strings.ToLower(v)
		parts = append(parts, "product: "+v)
	}

	if v := strings.TrimSpace(req.SkinType); v != "" {
		cs.SkinConditions.Add(v)
		parts = append(parts, "skin type: "+v)
	}
	for _, v := range req.SkinConditions {
		cs.SkinConditions.Add(v)
	}
	if len(req.SkinConditions) > 0 {
		parts = append(parts, "skin: "+strings.Join(req.SkinConditions, " "))
	}

	if v := strings.TrimSpace(req.HairType); v != "" {
		cs.HairType = domain.NormalizeTag(v)
		parts = append(parts, "hair type: "+v)
	}

	if v := strings.TrimSpace(req.Problem); v != "" {
		cs.Needs.Add(v)
		parts = append(parts, "problem: "+v)
	}
	for _, list := range []domain.StringList{req.Needs, req.Concerns} {
		for _, v := range list {
			cs.Needs.Add(v)
		}
		if len(list) > 0 {
			parts = append(parts, strings.Join(list, " "))
		}
	}

	for _, v := range req.MedicalConditions {
		cs.MedicalConditions.Add(v)
	}
	if len(req.MedicalConditions) > 0 {
		parts = append(parts, "suitable for "+strings.Join(req.MedicalConditions, " "))
	}

	for _, v := range req.Avoid {
		cs.Avoid.Add(v)
	}
	for _, v := range req.Preferences {
		cs.MustHave.Add(v)
	}
	if len(req.Preferences) > 0 {
		parts = append(parts, strings.Join(req.Preferences, " "))
	}

	if v := strings.TrimSpace(string(req.Age)); v != "" {
		cs.Age = domain.ParseAge(v)
		parts = append(parts, "age "+v)
	}
	if v := strings.TrimSpace(req.Gender); v != "" {
		cs.Gender = domain.NormalizeTag(v)
	}

	cs.Budget = ParseBudget(req.Budget)

	query := strings.TrimSpace(req.Query)
	if query != "" {
		extractFromQuery(query, cs)
		parts = append(parts, query)
	}

	switch cs.Budget.Kind {
	case domain.BudgetNumeric:
		parts = append(parts, "price around "+strconv.FormatFloat(cs.Budget.Amount, 'f', -1, 64))
	case domain.BudgetCategorical:
		parts = append(parts, "budget "+string(cs.Budget.Tier))
	}

	cs.QueryTokens = Tokenize(strings.Join([]string{query, req.ProductType, req.Problem}, " "))

	text := multiSpacePattern.ReplaceAllString(strings.Join(parts, " "), " ")
	return strings.TrimSpace(text), cs
}

// ParseBudget normalizes a numeric or free-text budget. Strings are scanned
// for an embedded number first; tier keywords are only matched when none is
// found. Non-positive amounts and unrecognized text leave the budget unset.
func ParseBudget(in domain.BudgetInput) domain.Budget {
	if in.Number != nil {
		return numericBudget(*in.Number)
	}
	s := strings.ToLower(strings.TrimSpace(in.Text))
	if s == "" {
		return domain.Budget{}
	}
	s = strings.ReplaceAll(s, ",", "")
	if m := numberPattern.FindString(s); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return domain.Budget{}
		}
		return numericBudget(v)
	}
	for _, tk := range tierKeywords {
		for _, w := range tk.words {
			if containsWord(s, w) {
				return domain.Budget{Kind: domain.BudgetCategorical, Tier: tk.tier}
			}
		}
	}
	return domain.Budget{}
}

func numericBudget(v float64) domain.Budget {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Budget{}
	}
	return domain.Budget{Kind: domain.BudgetNumeric, Amount: v}
}

func extractFromQuery(query string, cs *domain.ConstraintSet) {
	q := strings.ToLower(domain.FoldAccents(query))

	for _, m := range negationPattern.FindAllStringSubmatch(q, -1) {
		if !negationNoise[m[1]] {
			cs.Avoid.Add(m[1])
		}
	}
	for _, m := range freeSuffixPattern.FindAllStringSubmatch(q, -1) {
		cs.Avoid.Add(m[1])
	}

	if cs.Budget.IsSet() {
		return
	}
	if m := priceCapPattern.FindStringSubmatch(strings.ReplaceAll(q, ",", "")); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			cs.Budget = numericBudget(v)
		}
	}
}

// Tokenize lower-cases and accent-folds s and returns its content words in
// order, without duplicates.
func Tokenize(s string) []string {
	s = strings.ToLower(domain.FoldAccents(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		if boundary(s, start-1) && boundary(s, end) {
			return true
		}
		idx = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
