// Package model scores filtered candidates and produces the final ranking.
package model

import (
	"math"
	"sort"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
)

type Scorer struct {
	policy *policy.Policy
}

func NewScorer(p *policy.Policy) *Scorer {
	return &Scorer{policy: p}
}

// Rank scores every candidate and sorts by score, descending. Equal scores
// keep catalog order so identical requests give identical output.
func (s *Scorer) Rank(cands []domain.Candidate, cs *domain.ConstraintSet) []domain.Candidate {
	out := make([]domain.Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		out[i].Score = s.Score(out[i], cs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// Score combines similarity and product signals, adds constraint bonuses and
// applies the budget and demographic multipliers.
func (s *Scorer) Score(c domain.Candidate, cs *domain.ConstraintSet) float64 {
	p := c.Product
	w := s.policy.Weights
	b := s.policy.Bonuses

	enhanced := math.Min(c.Similarity+math.Min(c.KeywordBoost, w.KeywordCap), 1)

	stock := 0.0
	if w.StockNorm > 0 {
		stock = math.Min(float64(p.Stock)/w.StockNorm, 1)
	}
	score := w.Similarity*enhanced +
		w.Popularity*clamp01(p.Popularity) +
		w.Stock*stock +
		w.Recency*clamp01(p.Recency) +
		w.Personal*clamp01(p.Personal) +
		p.SellerBoost

	m := MatchProduct(p, cs)
	if m.Category {
		score += b.Category
	}
	score += b.Beneficial * float64(len(m.Beneficial))
	score += b.Essential * float64(len(m.Essential))
	score += b.Preference * float64(len(m.Preferences))
	if p.Stock > 0 {
		score += b.InStock
	}

	// Multipliers only ever lower a non-negative score.
	score = math.Max(score, 0)
	score *= s.policy.BudgetMultiplier(p.Price, cs.Budget)
	if ageMismatch(p, cs.Age) {
		score *= s.policy.Penalties.AgeMismatch
	}
	if genderMismatch(p, cs.Gender) {
		score *= s.policy.Penalties.GenderMismatch
	}
	return math.Round(score*10000) / 10000
}

// SoftApplied lists the ranking-only constraint categories in effect.
func SoftApplied(cs *domain.ConstraintSet) []string {
	var applied []string
	if cs.MustHave.Len() > 0 {
		applied = append(applied, domain.AppliedPreferences)
	}
	if cs.Age.IsSet() {
		applied = append(applied, domain.AppliedAge)
	}
	if cs.Gender != "" {
		applied = append(applied, domain.AppliedGender)
	}
	return applied
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, 1))
}
