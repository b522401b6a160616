package retrieval

import (
	"sort"
	"strings"

	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// Match weights for the attribute scan.
const (
	matchSkin     = 0.4
	matchHair     = 0.4
	matchNeed     = 0.5
	matchCategory = 0.3
	matchMedical  = 0.3
	matchToken    = 0.1
	baselineScore = 0.1
	boostProblem  = 0.3
	boostTag      = 0.2
	boostSkinHair = 0.35
	boostMedical  = 0.2
)

// keywordSearch scans the catalog matching constraint attributes directly
// against product fields. When nothing in the request can be matched
// (no constraints, or only budget, avoid, age and gender), every in-stock
// product is returned with a baseline score in catalog order and the hard
// filters do the narrowing.
func keywordSearch(snap catalog.Snapshot, cs *domain.ConstraintSet, limit int) []domain.Candidate {
	baseline := !matchable(cs)
	var out []domain.Candidate
	for pos, p := range snap.Products {
		if p.Stock <= 0 {
			continue
		}
		score := baselineScore
		if !baseline {
			score = matchScore(p, cs)
			if score <= 0 {
				continue
			}
		}
		out = append(out, domain.Candidate{
			Product:    p,
			Position:   pos,
			Similarity: min(score, 1),
			Source:     domain.SourceKeyword,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// matchable reports whether cs has any attribute matchScore can score.
func matchable(cs *domain.ConstraintSet) bool {
	return cs.Category != "" ||
		cs.SkinConditions.Len() > 0 ||
		cs.HairType != "" ||
		cs.Needs.Len() > 0 ||
		cs.MedicalConditions.Len() > 0 ||
		len(cs.QueryTokens) > 0
}

func matchScore(p *domain.Product, cs *domain.ConstraintSet) float64 {
	var score float64

	if cs.Category != "" && strings.Contains(domain.NormalizeTag(p.Category), cs.Category) {
		score += matchCategory
	}
	if p.SkinConditions != nil && len(cs.SkinConditions.Intersect(p.SkinConditions.SuitableFor)) > 0 {
		score += matchSkin
	}
	if cs.HairType != "" && containsTag(p.HairTypes, cs.HairType) {
		score += matchHair
	}
	if len(cs.Needs.Intersect(p.ProblemsSolved)) > 0 || len(cs.Needs.Intersect(p.Tags)) > 0 {
		score += matchNeed
	}
	if m := p.MedicalConditions; m != nil {
		if len(cs.MedicalConditions.Intersect(m.BeneficialFor)) > 0 || len(cs.MedicalConditions.Intersect(m.EssentialFor)) > 0 {
			score += matchMedical
		}
	}
	if len(cs.QueryTokens) > 0 {
		text := strings.ToLower(domain.FoldAccents(p.SearchableText()))
		for _, tok := range cs.QueryTokens {
			if strings.Contains(text, tok) {
				score += matchToken
			}
		}
	}
	return score
}

// keywordBoost rewards semantic hits whose declared attributes literally
// match the request. The result is capped at limit.
func keywordBoost(p *domain.Product, cs *domain.ConstraintSet, searchText string, limit float64) float64 {
	haystack := strings.ToLower(domain.FoldAccents(searchText))
	var boost float64

	for _, problem := range p.ProblemsSolved {
		if cs.Needs.Has(problem) || mentions(haystack, problem) {
			boost += boostProblem
		}
	}
	for _, tag := range p.Tags {
		if mentions(haystack, tag) {
			boost += boostTag
		}
	}
	if p.SkinConditions != nil {
		boost += boostSkinHair * float64(len(cs.SkinConditions.Intersect(p.SkinConditions.SuitableFor)))
	}
	if cs.HairType != "" && containsTag(p.HairTypes, cs.HairType) {
		boost += boostSkinHair
	}
	if m := p.MedicalConditions; m != nil {
		boost += boostMedical * float64(len(cs.MedicalConditions.Intersect(m.BeneficialFor)))
	}
	return min(boost, limit)
}

// mentions reports whether a tag such as "dark_spots" appears in text
// written with spaces.
func mentions(text, tag string) bool {
	t := strings.ReplaceAll(domain.NormalizeTag(tag), "_", " ")
	return t != "" && strings.Contains(text, t)
}

func containsTag(values []string, tag string) bool {
	for _, v := range values {
		if domain.NormalizeTag(v) == tag {
			return true
		}
	}
	return false
}
