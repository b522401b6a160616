package domain

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationRequest_UnmarshalLooseShapes(t *testing.T) {
	raw := `{
		"query": "gentle cleanser",
		"needs": "hydration",
		"medical_conditions": ["diabetes", 2, ""],
		"avoid": null,
		"budget": "medium",
		"age": 25,
		"top_k": 3
	}`
	var req RecommendationRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "gentle cleanser", req.Query)
	assert.Equal(t, StringList{"hydration"}, req.Needs)
	assert.Equal(t, StringList{"diabetes", "2"}, req.MedicalConditions)
	assert.Nil(t, req.Avoid)
	assert.Nil(t, req.Budget.Number)
	assert.Equal(t, "medium", req.Budget.Text)
	assert.Equal(t, FlexString("25"), req.Age)
	assert.Equal(t, 3, req.TopK)
}

func TestBudgetInput(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		number *float64
		text   string
	}{
		{"number", `{"budget": 3000}`, ptr(3000), ""},
		{"text", `{"budget": "around 2000 DA"}`, nil, "around 2000 DA"},
		{"null", `{"budget": null}`, nil, ""},
		{"missing", `{}`, nil, ""},
		{"unsupported shape", `{"budget": {"max": 10}}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RecommendationRequest
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &req))
			assert.Equal(t, tt.number, req.Budget.Number)
			assert.Equal(t, tt.text, req.Budget.Text)
		})
	}

	out, err := json.Marshal(NumericBudget(1500))
	require.NoError(t, err)
	assert.JSONEq(t, `1500`, string(out))
	assert.True(t, BudgetInput{}.IsZero())
}

func TestStringList_RejectsNestedValues(t *testing.T) {
	var req RecommendationRequest
	err := json.Unmarshal([]byte(`{"needs": [["a"]]}`), &req)
	assert.Error(t, err)
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		raw      string
		parsed   bool
		min, max int
	}{
		{"25", true, 25, 25},
		{"30-40", true, 30, 40},
		{"40+", true, 40, math.MaxInt},
		{"40-30", false, 0, 0},
		{"adult", false, 0, 0},
		{"", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := ParseAge(tt.raw)
			assert.Equal(t, tt.parsed, a.Parsed)
			assert.Equal(t, tt.min, a.Min)
			assert.Equal(t, tt.max, a.Max)
		})
	}
}

func TestAgeSpec_Overlaps(t *testing.T) {
	a := ParseAge("25")
	assert.True(t, a.Overlaps("18-30"))
	assert.True(t, a.Overlaps("25"))
	assert.True(t, a.Overlaps("20+"))
	assert.False(t, a.Overlaps("30-40"))
	assert.False(t, a.Overlaps("adults"))

	assert.True(t, ParseAge("60+").Overlaps("50-65"))
}

func TestNormalizeTag(t *testing.T) {
	tests := map[string]string{
		"Fragrance-Free":       "fragrance_free",
		"sans parfum":          "sans_parfum",
		"  Peau Sèche ":        "peau_seche",
		"high_blood--pressure": "high_blood_pressure",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTag(in), "input %q", in)
	}
}

func TestTagSet_Intersect(t *testing.T) {
	s := NewTagSet("Diabetes", "pregnancy", "")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("DIABETES"))
	assert.Equal(t, []string{"diabetes", "pregnancy"}, s.Intersect([]string{"pregnancy", "diabetes", "Diabetes", "asthma"}))
	assert.Nil(t, s.Intersect(nil))
	assert.Nil(t, NewTagSet().Intersect([]string{"a"}))
}

func TestProduct_Localized(t *testing.T) {
	p := &Product{Name: "Honey", NameFR: "Miel", NameAR: "  ", Description: "Raw honey", DescriptionAR: "عسل"}
	assert.Equal(t, "Miel", p.LocalizedName(LangFrench))
	assert.Equal(t, "Honey", p.LocalizedName(LangArabic))
	assert.Equal(t, "Honey", p.LocalizedName(LangEnglish))
	assert.Equal(t, "Raw honey", p.LocalizedDescription(LangFrench))
	assert.Equal(t, "عسل", p.LocalizedDescription(LangArabic))
	assert.Equal(t, "DA", p.CurrencyCode())
	assert.False(t, p.HasTag("honey"))
}

func TestProduct_CloneIsDeep(t *testing.T) {
	p := &Product{
		ID:                "a",
		Tags:              []string{"vegan"},
		MedicalConditions: &MedicalConditions{AvoidIf: []string{"diabetes"}},
	}
	c := p.Clone()
	c.Tags[0] = "changed"
	c.MedicalConditions.AvoidIf[0] = "changed"
	c.SellerBoost = 1

	assert.Equal(t, "vegan", p.Tags[0])
	assert.Equal(t, "diabetes", p.MedicalConditions.AvoidIf[0])
	assert.Zero(t, p.SellerBoost)
}

func TestConstraintSet_IsEmpty(t *testing.T) {
	cs := NewConstraintSet()
	assert.True(t, cs.IsEmpty())
	cs.Avoid.Add("sugar")
	assert.False(t, cs.IsEmpty())
}

func ptr(v float64) *float64 { return &v }
