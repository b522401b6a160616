package model

import (
	"strings"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// Match lists the request attributes a product satisfies. The scorer turns
// it into bonuses and the localizer into reason text.
type Match struct {
	Category    bool
	Beneficial  []string
	Essential   []string
	SafeFor     []string
	Preferences []string
	Skin        []string
	Hair        bool
	Needs       []string
}

func MatchProduct(p *domain.Product, cs *domain.ConstraintSet) Match {
	var m Match
	m.Category = cs.Category != "" && domain.NormalizeTag(p.Category) == cs.Category

	if mc := p.MedicalConditions; mc != nil {
		m.Beneficial = cs.MedicalConditions.Intersect(mc.BeneficialFor)
		m.Essential = cs.MedicalConditions.Intersect(mc.EssentialFor)
		m.SafeFor = cs.MedicalConditions.Intersect(mc.SafeFor)
	}
	if sc := p.SkinConditions; sc != nil {
		m.Skin = cs.SkinConditions.Intersect(sc.SuitableFor)
	}
	if cs.HairType != "" {
		for _, h := range p.HairTypes {
			if domain.NormalizeTag(h) == cs.HairType {
				m.Hair = true
				break
			}
		}
	}

	features := append([]string{}, p.Tags...)
	features = append(features, p.ProblemsSolved...)
	features = append(features, p.HairTypes...)
	if p.NutritionalInfo != nil {
		features = append(features, p.NutritionalInfo.KeyNutrients...)
	}
	m.Preferences = cs.MustHave.Intersect(features)
	m.Needs = cs.Needs.Intersect(append(append([]string{}, p.ProblemsSolved...), p.Tags...))
	return m
}

// ageMismatch reports whether a parseable requested age falls outside every
// parseable range the product declares. Unparseable input never penalizes;
// it only counts as a match when it equals a declared range literally.
func ageMismatch(p *domain.Product, age domain.AgeSpec) bool {
	if !age.IsSet() || len(p.AgeRange) == 0 || !age.Parsed {
		return false
	}
	checked := false
	for _, r := range p.AgeRange {
		if strings.EqualFold(strings.TrimSpace(r), age.Raw) {
			return false
		}
		if parsed := domain.ParseAge(r); parsed.Parsed {
			checked = true
			if age.Overlaps(r) {
				return false
			}
		}
	}
	return checked
}

func genderMismatch(p *domain.Product, gender string) bool {
	if gender == "" || len(p.Gender) == 0 {
		return false
	}
	for _, g := range p.Gender {
		n := domain.NormalizeTag(g)
		if n == gender || n == "unisex" || n == "all" {
			return false
		}
	}
	return true
}
