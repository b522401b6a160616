package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/catalog-recommender/internal/constraint"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
)

func candidates(products ...*domain.Product) []domain.Candidate {
	out := make([]domain.Candidate, len(products))
	for i, p := range products {
		out[i] = domain.Candidate{Product: p, Position: i, Similarity: 0.5}
	}
	return out
}

func TestCheck(t *testing.T) {
	f := NewFilter(policy.Default())

	tests := []struct {
		name    string
		req     domain.RecommendationRequest
		product *domain.Product
		want    string
	}{
		{
			name:    "category mismatch",
			req:     domain.RecommendationRequest{Category: "nutrition"},
			product: &domain.Product{ID: "a", Category: "beauty_skincare", Stock: 1},
			want:    domain.ReasonCategoryMismatch,
		},
		{
			name:    "category checked before stock",
			req:     domain.RecommendationRequest{Category: "nutrition"},
			product: &domain.Product{ID: "a", Category: "hair_care", Stock: 0},
			want:    domain.ReasonCategoryMismatch,
		},
		{
			name:    "out of stock",
			product: &domain.Product{ID: "a", Stock: 0},
			want:    domain.ReasonOutOfStock,
		},
		{
			name: "medical avoid_if",
			req:  domain.RecommendationRequest{MedicalConditions: domain.StringList{"Diabetes"}},
			product: &domain.Product{ID: "a", Stock: 1,
				MedicalConditions: &domain.MedicalConditions{AvoidIf: []string{"diabetes"}}},
			want: domain.ReasonMedicalSafety,
		},
		{
			name: "medical safe_for is informational",
			req:  domain.RecommendationRequest{MedicalConditions: domain.StringList{"hypertension"}},
			product: &domain.Product{ID: "a", Stock: 1,
				MedicalConditions: &domain.MedicalConditions{SafeFor: []string{"diabetes"}}},
		},
		{
			name: "skin avoid_if",
			req:  domain.RecommendationRequest{SkinType: "sensitive"},
			product: &domain.Product{ID: "a", Stock: 1,
				SkinConditions: &domain.SkinConditions{AvoidIf: []string{"sensitive"}}},
			want: domain.ReasonSkinIncompatibility,
		},
		{
			name: "skin suitable_for must intersect",
			req:  domain.RecommendationRequest{SkinType: "oily"},
			product: &domain.Product{ID: "a", Stock: 1,
				SkinConditions: &domain.SkinConditions{SuitableFor: []string{"dry", "normal"}}},
			want: domain.ReasonSkinIncompatibility,
		},
		{
			name: "empty suitable_for means all",
			req:  domain.RecommendationRequest{SkinType: "oily"},
			product: &domain.Product{ID: "a", Stock: 1,
				SkinConditions: &domain.SkinConditions{}},
		},
		{
			name:    "no skin block means no constraint",
			req:     domain.RecommendationRequest{SkinType: "oily"},
			product: &domain.Product{ID: "a", Stock: 1},
		},
		{
			name:    "avoid tag",
			req:     domain.RecommendationRequest{Avoid: domain.StringList{"alcohol"}},
			product: &domain.Product{ID: "a", Stock: 1, Tags: []string{"contains_alcohol"}},
			want:    domain.ReasonIngredientAvoidance,
		},
		{
			name:    "absence tag does not trigger",
			req:     domain.RecommendationRequest{Avoid: domain.StringList{"sugar"}},
			product: &domain.Product{ID: "a", Stock: 1, Tags: []string{"sugar_free"}},
		},
		{
			name: "sugar content over threshold",
			req:  domain.RecommendationRequest{Avoid: domain.StringList{"sugar"}},
			product: &domain.Product{ID: "a", Stock: 1,
				NutritionalInfo: &domain.NutritionalInfo{SugarContent: 12}},
			want: domain.ReasonIngredientAvoidance,
		},
		{
			name: "sugar content at threshold passes",
			req:  domain.RecommendationRequest{Avoid: domain.StringList{"sugar"}},
			product: &domain.Product{ID: "a", Stock: 1,
				NutritionalInfo: &domain.NutritionalInfo{SugarContent: 2}},
		},
		{
			name: "sugar_free tag overrides sugar content",
			req:  domain.RecommendationRequest{Avoid: domain.StringList{"sugar"}},
			product: &domain.Product{ID: "a", Stock: 1, Tags: []string{"sugar_free"},
				NutritionalInfo: &domain.NutritionalInfo{SugarContent: 5}},
		},
		{
			name:    "fragrance text",
			req:     domain.RecommendationRequest{Avoid: domain.StringList{"fragrance"}},
			product: &domain.Product{ID: "a", Stock: 1, Description: "Light floral fragrance"},
			want:    domain.ReasonIngredientAvoidance,
		},
		{
			name:    "fragrance-free text passes",
			req:     domain.RecommendationRequest{Avoid: domain.StringList{"fragrance"}},
			product: &domain.Product{ID: "a", Stock: 1, Description: "A fragrance-free formula", DescriptionFR: "Formule sans parfum"},
		},
		{
			name:    "fragrance_free tag passes",
			req:     domain.RecommendationRequest{Avoid: domain.StringList{"fragrance"}},
			product: &domain.Product{ID: "a", Stock: 1, Tags: []string{"fragrance_free"}, Description: "fragrance"},
		},
		{
			name:    "numeric budget hard cap",
			req:     domain.RecommendationRequest{Budget: domain.NumericBudget(1000)},
			product: &domain.Product{ID: "a", Stock: 1, Price: 1501},
			want:    domain.ReasonBudget,
		},
		{
			name:    "numeric budget within tolerance",
			req:     domain.RecommendationRequest{Budget: domain.NumericBudget(1000)},
			product: &domain.Product{ID: "a", Stock: 1, Price: 1500},
		},
		{
			name:    "categorical ceiling",
			req:     domain.RecommendationRequest{Budget: domain.TextBudget("cheap")},
			product: &domain.Product{ID: "a", Stock: 1, Price: 2500},
			want:    domain.ReasonBudget,
		},
		{
			name:    "high tier unbounded",
			req:     domain.RecommendationRequest{Budget: domain.TextBudget("luxury")},
			product: &domain.Product{ID: "a", Stock: 1, Price: 250000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cs := constraint.Parse(tt.req)
			reason, _, _ := f.Check(tt.product, cs)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestApply_CountsAndNotes(t *testing.T) {
	f := NewFilter(policy.Default())
	_, cs := constraint.Parse(domain.RecommendationRequest{
		MedicalConditions: domain.StringList{"diabetes", "pregnancy"},
		Budget:            domain.NumericBudget(1000),
	})

	out := f.Apply(candidates(
		&domain.Product{ID: "ok", Stock: 3, Price: 900},
		&domain.Product{ID: "consult", Stock: 3, Price: 500,
			MedicalConditions: &domain.MedicalConditions{ConsultDoctor: []string{"pregnancy"}}},
		&domain.Product{ID: "unsafe", Stock: 3, Price: 100,
			MedicalConditions: &domain.MedicalConditions{AvoidIf: []string{"diabetes"}}},
		&domain.Product{ID: "pricey", Stock: 3, Price: 5000},
		&domain.Product{ID: "empty", Stock: 0, Price: 10},
	), cs)

	require.Len(t, out.Survivors, 2)
	assert.Equal(t, "ok", out.Survivors[0].Product.ID)
	assert.Equal(t, "consult", out.Survivors[1].Product.ID)
	assert.Equal(t, []domain.SafetyNote{{Conditions: []string{"pregnancy"}}}, out.Survivors[1].SafetyNotes)

	assert.Equal(t, map[string]int{
		domain.ReasonCategoryMismatch:    0,
		domain.ReasonOutOfStock:          1,
		domain.ReasonMedicalSafety:       1,
		domain.ReasonSkinIncompatibility: 0,
		domain.ReasonIngredientAvoidance: 0,
		domain.ReasonBudget:              1,
	}, out.FilteredOut)
	assert.Equal(t, []string{domain.AppliedMedicalSafety, domain.AppliedBudget}, out.Applied)
	require.Len(t, out.Exclusions, 3)
	assert.Equal(t, "contraindicated for diabetes", out.Exclusions[0].Detail)
}

func TestApply_MedicalInvariant(t *testing.T) {
	f := NewFilter(policy.Default())
	_, cs := constraint.Parse(domain.RecommendationRequest{MedicalConditions: domain.StringList{"diabetes"}, Avoid: domain.StringList{"sugar"}})

	products := []*domain.Product{
		{ID: "1", Stock: 1, MedicalConditions: &domain.MedicalConditions{AvoidIf: []string{"diabetes"}}},
		{ID: "2", Stock: 1, NutritionalInfo: &domain.NutritionalInfo{SugarContent: 20}},
		{ID: "3", Stock: 1, Tags: []string{"sugar_free"}, NutritionalInfo: &domain.NutritionalInfo{SugarContent: 20}},
		{ID: "4", Stock: 1, MedicalConditions: &domain.MedicalConditions{BeneficialFor: []string{"diabetes"}}},
	}
	out := f.Apply(candidates(products...), cs)
	for _, c := range out.Survivors {
		if m := c.Product.MedicalConditions; m != nil {
			assert.NotContains(t, m.AvoidIf, "diabetes")
		}
		if n := c.Product.NutritionalInfo; n != nil && n.SugarContent > 2 {
			assert.True(t, c.Product.HasTag("sugar_free"))
		}
	}
	assert.Len(t, out.Survivors, 2)
}

func TestApplied_Empty(t *testing.T) {
	assert.Equal(t, []string{}, Applied(domain.NewConstraintSet()))
}
