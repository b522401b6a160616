package domain

import "strings"

// Supported response languages. English is the base language and every
// product must carry an English name.
const (
	LangEnglish = "en"
	LangFrench  = "fr"
	LangArabic  = "ar"
)

const defaultCurrency = "DA"

type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	NameFR        string  `json:"name_fr,omitempty"`
	NameAR        string  `json:"name_ar,omitempty"`
	Description   string  `json:"description"`
	DescriptionFR string  `json:"description_fr,omitempty"`
	DescriptionAR string  `json:"description_ar,omitempty"`
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory,omitempty"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	Image         string  `json:"image,omitempty"`

	Tags  []string `json:"tags,omitempty"`
	Stock int      `json:"stock"`

	Popularity  float64 `json:"popularity"`
	Recency     float64 `json:"recency"`
	Personal    float64 `json:"personal"`
	SellerBoost float64 `json:"seller_boost"`

	MedicalConditions *MedicalConditions `json:"medical_conditions,omitempty"`
	SkinConditions    *SkinConditions    `json:"skin_conditions,omitempty"`
	NutritionalInfo   *NutritionalInfo   `json:"nutritional_info,omitempty"`
	AgeRange          []string           `json:"age_range,omitempty"`
	Gender            []string           `json:"gender,omitempty"`
	HairTypes         []string           `json:"hair_types,omitempty"`
	ProblemsSolved    []string           `json:"problems_solved,omitempty"`
}

type MedicalConditions struct {
	SafeFor       []string `json:"safe_for,omitempty"`
	BeneficialFor []string `json:"beneficial_for,omitempty"`
	EssentialFor  []string `json:"essential_for,omitempty"`
	AvoidIf       []string `json:"avoid_if,omitempty"`
	ConsultDoctor []string `json:"consult_doctor,omitempty"`
}

type SkinConditions struct {
	SuitableFor []string `json:"suitable_for,omitempty"`
	AvoidIf     []string `json:"avoid_if,omitempty"`
}

type NutritionalInfo struct {
	SugarContent float64  `json:"sugar_content"`
	KeyNutrients []string `json:"key_nutrients,omitempty"`
}

// LocalizedName returns the product name in lang, falling back to English
// when the localized field is absent or blank.
func (p *Product) LocalizedName(lang string) string {
	return pickLocalized(lang, p.Name, p.NameFR, p.NameAR)
}

// LocalizedDescription mirrors LocalizedName for the description fields.
func (p *Product) LocalizedDescription(lang string) string {
	return pickLocalized(lang, p.Description, p.DescriptionFR, p.DescriptionAR)
}

func pickLocalized(lang, en, fr, ar string) string {
	var v string
	switch lang {
	case LangFrench:
		v = fr
	case LangArabic:
		v = ar
	}
	if strings.TrimSpace(v) == "" {
		return en
	}
	return v
}

func (p *Product) CurrencyCode() string {
	if p.Currency == "" {
		return defaultCurrency
	}
	return p.Currency
}

// HasTag reports whether the product carries tag, compared in normalized form.
func (p *Product) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range p.Tags {
		if NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}

// SearchableText concatenates every multilingual and capability field the
// vector index embeds for this product.
func (p *Product) SearchableText() string {
	parts := []string{
		p.Name, p.NameAR, p.NameFR,
		p.Description, p.DescriptionAR, p.DescriptionFR,
		p.Category, p.Subcategory,
	}
	parts = append(parts, p.Tags...)
	parts = append(parts, p.HairTypes...)
	parts = append(parts, p.ProblemsSolved...)
	if p.SkinConditions != nil {
		parts = append(parts, p.SkinConditions.SuitableFor...)
	}
	if m := p.MedicalConditions; m != nil {
		parts = append(parts, m.SafeFor...)
		parts = append(parts, m.BeneficialFor...)
		parts = append(parts, m.EssentialFor...)
	}
	if p.NutritionalInfo != nil {
		parts = append(parts, p.NutritionalInfo.KeyNutrients...)
	}

	nonEmpty := parts[:0]
	for _, s := range parts {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// Clone returns a deep copy so that copy-on-update writers never share
// backing arrays with records readers may still hold.
func (p *Product) Clone() *Product {
	c := *p
	c.Tags = cloneStrings(p.Tags)
	c.AgeRange = cloneStrings(p.AgeRange)
	c.Gender = cloneStrings(p.Gender)
	c.HairTypes = cloneStrings(p.HairTypes)
	c.ProblemsSolved = cloneStrings(p.ProblemsSolved)
	if m := p.MedicalConditions; m != nil {
		c.MedicalConditions = &MedicalConditions{
			SafeFor:       cloneStrings(m.SafeFor),
			BeneficialFor: cloneStrings(m.BeneficialFor),
			EssentialFor:  cloneStrings(m.EssentialFor),
			AvoidIf:       cloneStrings(m.AvoidIf),
			ConsultDoctor: cloneStrings(m.ConsultDoctor),
		}
	}
	if s := p.SkinConditions; s != nil {
		c.SkinConditions = &SkinConditions{
			SuitableFor: cloneStrings(s.SuitableFor),
			AvoidIf:     cloneStrings(s.AvoidIf),
		}
	}
	if n := p.NutritionalInfo; n != nil {
		c.NutritionalInfo = &NutritionalInfo{
			SugarContent: n.SugarContent,
			KeyNutrients: cloneStrings(n.KeyNutrients),
		}
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
