// Package safety applies the hard exclusion rules to retrieved candidates.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
)

var (
	fragranceWords = []string{"fragrance", "parfum", "perfume"}
	// Phrases declaring absence are removed before looking for fragrance text.
	fragranceFreePattern = regexp.MustCompile(`(?i)(fragrance|perfume|scent|parfum)[\s_-]*free|unscented|sans\s+parfum|without\s+(fragrance|perfume)`)
)

// Exclusion records why a product was removed.
type Exclusion struct {
	ProductID string
	Reason    string
	Detail    string
}

type Outcome struct {
	Survivors   []domain.Candidate
	FilteredOut map[string]int
	Exclusions  []Exclusion
	Applied     []string
}

type Filter struct {
	policy *policy.Policy
}

func NewFilter(p *policy.Policy) *Filter {
	return &Filter{policy: p}
}

// Apply runs the checks in fixed order; the first failing check removes
// the candidate. Survivors keep their relative order and carry any
// consult-doctor notes.
func (f *Filter) Apply(cands []domain.Candidate, cs *domain.ConstraintSet) Outcome {
	out := Outcome{
		Survivors:   make([]domain.Candidate, 0, len(cands)),
		FilteredOut: make(map[string]int, len(domain.FilterReasons)),
		Applied:     Applied(cs),
	}
	for _, r := range domain.FilterReasons {
		out.FilteredOut[r] = 0
	}

	for _, c := range cands {
		reason, detail, notes := f.Check(c.Product, cs)
		if reason != "" {
			out.FilteredOut[reason]++
			out.Exclusions = append(out.Exclusions, Exclusion{ProductID: c.Product.ID, Reason: reason, Detail: detail})
			continue
		}
		c.SafetyNotes = append(c.SafetyNotes, notes...)
		out.Survivors = append(out.Survivors, c)
	}
	return out
}

// Check evaluates one product. An empty reason means the product passes.
func (f *Filter) Check(p *domain.Product, cs *domain.ConstraintSet) (reason, detail string, notes []domain.SafetyNote) {
	if cs.Category != "" && domain.NormalizeTag(p.Category) != cs.Category {
		return domain.ReasonCategoryMismatch, fmt.Sprintf("category %q is not %q", p.Category, cs.Category), nil
	}
	if p.Stock <= 0 {
		return domain.ReasonOutOfStock, "no stock", nil
	}

	if m := p.MedicalConditions; m != nil && cs.MedicalConditions.Len() > 0 {
		if hit := cs.MedicalConditions.Intersect(m.AvoidIf); len(hit) > 0 {
			return domain.ReasonMedicalSafety, "contraindicated for " + strings.Join(hit, ", "), nil
		}
		if consult := cs.MedicalConditions.Intersect(m.ConsultDoctor); len(consult) > 0 {
			notes = append(notes, domain.SafetyNote{Conditions: consult})
		}
	}

	if s := p.SkinConditions; s != nil && cs.SkinConditions.Len() > 0 {
		if hit := cs.SkinConditions.Intersect(s.AvoidIf); len(hit) > 0 {
			return domain.ReasonSkinIncompatibility, "not for skin: " + strings.Join(hit, ", "), nil
		}
		if len(s.SuitableFor) > 0 && len(cs.SkinConditions.Intersect(s.SuitableFor)) == 0 {
			return domain.ReasonSkinIncompatibility, "suitable only for " + strings.Join(s.SuitableFor, ", "), nil
		}
	}

	for _, avoid := range cs.Avoid.Sorted() {
		if why := f.contains(p, avoid); why != "" {
			return domain.ReasonIngredientAvoidance, why, nil
		}
	}

	if f.policy.ExceedsHardCap(p.Price, cs.Budget) {
		return domain.ReasonBudget, fmt.Sprintf("price %.0f exceeds budget limit", p.Price), nil
	}
	return "", "", notes
}

// contains reports, with a reason, whether p carries the avoided substance.
func (f *Filter) contains(p *domain.Product, avoid string) string {
	for _, tag := range p.Tags {
		t := domain.NormalizeTag(tag)
		if f.isAbsenceTag(t) {
			continue
		}
		if t == avoid || hasPart(t, avoid) {
			return "tagged " + t
		}
	}

	switch avoid {
	case "sugar":
		if n := p.NutritionalInfo; n != nil && n.SugarContent > f.policy.SugarThresholdGrams && !p.HasTag("sugar_free") {
			return fmt.Sprintf("sugar content %.1fg", n.SugarContent)
		}
	case "fragrance", "parfum", "perfume":
		if !p.HasTag("fragrance_free") && mentionsFragrance(p) {
			return "contains fragrance"
		}
	}
	return ""
}

func (f *Filter) isAbsenceTag(tag string) bool {
	return strings.HasSuffix(tag, "_free") || f.policy.IsAbsenceTag(tag)
}

// hasPart matches "added_sugar" against "sugar".
func hasPart(tag, avoid string) bool {
	for _, part := range strings.Split(tag, "_") {
		if part == avoid {
			return true
		}
	}
	return false
}

func mentionsFragrance(p *domain.Product) bool {
	text := strings.Join([]string{
		p.Name, p.NameFR, p.Description, p.DescriptionFR, strings.Join(p.Tags, " "),
	}, " ")
	text = strings.ToLower(fragranceFreePattern.ReplaceAllString(domain.FoldAccents(text), " "))
	for _, w := range fragranceWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Applied lists the hard constraint categories the request enforces.
func Applied(cs *domain.ConstraintSet) []string {
	applied := []string{}
	if cs.Category != "" {
		applied = append(applied, domain.AppliedCategory)
	}
	if cs.MedicalConditions.Len() > 0 {
		applied = append(applied, domain.AppliedMedicalSafety)
	}
	if cs.SkinConditions.Len() > 0 {
		applied = append(applied, domain.AppliedSkinCompatibility)
	}
	if cs.Avoid.Len() > 0 {
		applied = append(applied, domain.AppliedIngredientAvoidance)
	}
	if cs.Budget.IsSet() {
		applied = append(applied, domain.AppliedBudget)
	}
	return applied
}
