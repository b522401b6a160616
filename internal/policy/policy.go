// Package policy holds the reviewable threshold table used by the filter and
// the scorer: budget tiers, score weights, bonuses and demographic penalties.
package policy

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// BudgetBand multiplies the score of items whose price/budget ratio is at or
// below UpTo. Bands are evaluated in ascending UpTo order.
type BudgetBand struct {
	UpTo       float64 `yaml:"up_to"`
	Multiplier float64 `yaml:"multiplier"`
}

type Weights struct {
	Similarity float64 `yaml:"similarity"`
	Popularity float64 `yaml:"popularity"`
	Stock      float64 `yaml:"stock"`
	Recency    float64 `yaml:"recency"`
	Personal   float64 `yaml:"personal"`
	StockNorm  float64 `yaml:"stock_norm"`
	KeywordCap float64 `yaml:"keyword_cap"`
}

type Bonuses struct {
	Category   float64 `yaml:"category"`
	Beneficial float64 `yaml:"beneficial"`
	Essential  float64 `yaml:"essential"`
	Preference float64 `yaml:"preference"`
	InStock    float64 `yaml:"in_stock"`
}

type Penalties struct {
	AgeMismatch    float64 `yaml:"age_mismatch"`
	GenderMismatch float64 `yaml:"gender_mismatch"`
}

type Policy struct {
	// HardBudgetRatio excludes items priced above ratio × numeric budget.
	HardBudgetRatio float64 `yaml:"hard_budget_ratio"`
	// TierCeilings maps a categorical budget to its maximum price. A
	// missing tier or a zero ceiling means unbounded.
	TierCeilings map[domain.BudgetTier]float64 `yaml:"tier_ceilings"`
	BudgetBands  []BudgetBand                  `yaml:"budget_bands"`

	SugarThresholdGrams float64  `yaml:"sugar_threshold_grams"`
	AbsenceTags         []string `yaml:"absence_tags"`

	Weights   Weights   `yaml:"weights"`
	Bonuses   Bonuses   `yaml:"bonuses"`
	Penalties Penalties `yaml:"penalties"`

	Oversample            int `yaml:"oversample"`
	LowResultsThreshold   int `yaml:"low_results_threshold"`
	LowResultsMinUpstream int `yaml:"low_results_min_upstream"`
	DefaultTopK           int `yaml:"default_top_k"`
	MaxTopK               int `yaml:"max_top_k"`
}

// Default returns the documented default table.
func Default() *Policy {
	return &Policy{
		HardBudgetRatio: 1.5,
		TierCeilings: map[domain.BudgetTier]float64{
			domain.TierLow:    2000,
			domain.TierMedium: 5000,
		},
		BudgetBands: []BudgetBand{
			{UpTo: 0.8, Multiplier: 1.05},
			{UpTo: 1.0, Multiplier: 1.1},
			{UpTo: 1.2, Multiplier: 0.8},
			{UpTo: 1.5, Multiplier: 0.6},
		},
		SugarThresholdGrams: 2,
		AbsenceTags: []string{
			"sugar_free", "fragrance_free", "alcohol_free", "paraben_free",
			"sulfate_free", "gluten_free", "lactose_free", "caffeine_free",
			"oil_free", "silicone_free", "nut_free", "salt_free",
		},
		Weights: Weights{
			Similarity: 0.6,
			Popularity: 0.15,
			Stock:      0.05,
			Recency:    0.1,
			Personal:   0.1,
			StockNorm:  100,
			KeywordCap: 0.6,
		},
		Bonuses: Bonuses{
			Category:   0.2,
			Beneficial: 0.3,
			Essential:  0.5,
			Preference: 0.2,
			InStock:    0.1,
		},
		Penalties: Penalties{
			AgeMismatch:    0.7,
			GenderMismatch: 0.8,
		},
		Oversample:            10,
		LowResultsThreshold:   3,
		LowResultsMinUpstream: 5,
		DefaultTopK:           5,
		MaxTopK:               50,
	}
}

// Load reads a YAML override on top of the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

func (p *Policy) Validate() error {
	if p.HardBudgetRatio < 1 {
		return fmt.Errorf("hard_budget_ratio must be >= 1, got %v", p.HardBudgetRatio)
	}
	if p.Oversample < 5 {
		return fmt.Errorf("oversample must be >= 5, got %d", p.Oversample)
	}
	prev := 0.0
	for i, b := range p.BudgetBands {
		if b.UpTo <= prev {
			return fmt.Errorf("budget_bands[%d]: up_to must be increasing", i)
		}
		if b.Multiplier <= 0 {
			return fmt.Errorf("budget_bands[%d]: multiplier must be positive", i)
		}
		prev = b.UpTo
	}
	if p.DefaultTopK < 1 || p.MaxTopK < p.DefaultTopK {
		return fmt.Errorf("invalid top_k bounds: default %d, max %d", p.DefaultTopK, p.MaxTopK)
	}
	return nil
}

// Ceiling returns the price ceiling for a categorical tier.
func (p *Policy) Ceiling(tier domain.BudgetTier) float64 {
	c, ok := p.TierCeilings[tier]
	if !ok || c <= 0 {
		return math.Inf(1)
	}
	return c
}

// ExceedsHardCap reports whether price must be excluded under budget.
func (p *Policy) ExceedsHardCap(price float64, b domain.Budget) bool {
	switch b.Kind {
	case domain.BudgetNumeric:
		return price > b.Amount*p.HardBudgetRatio
	case domain.BudgetCategorical:
		return price > p.Ceiling(b.Tier)
	default:
		return false
	}
}

// WithinBudget reports whether price fits the budget without any tolerance.
func (p *Policy) WithinBudget(price float64, b domain.Budget) bool {
	switch b.Kind {
	case domain.BudgetNumeric:
		return price <= b.Amount
	case domain.BudgetCategorical:
		return price <= p.Ceiling(b.Tier)
	default:
		return true
	}
}

// BudgetMultiplier returns the score multiplier for price under a numeric
// budget. Ratios past the last band get the last band's multiplier; those
// items are normally already excluded by the hard cap.
func (p *Policy) BudgetMultiplier(price float64, b domain.Budget) float64 {
	if b.Kind != domain.BudgetNumeric || b.Amount <= 0 || len(p.BudgetBands) == 0 {
		return 1
	}
	ratio := price / b.Amount
	for _, band := range p.BudgetBands {
		if ratio <= band.UpTo {
			return band.Multiplier
		}
	}
	return p.BudgetBands[len(p.BudgetBands)-1].Multiplier
}

// IsAbsenceTag reports whether tag signals the absence of a substance.
func (p *Policy) IsAbsenceTag(tag string) bool {
	for _, t := range p.AbsenceTags {
		if t == tag {
			return true
		}
	}
	return false
}
