package domain

import (
	"math"
	"strconv"
)

type BudgetKind int

const (
	BudgetUnset BudgetKind = iota
	BudgetNumeric
	BudgetCategorical
)

func (k BudgetKind) String() string {
	switch k {
	case BudgetNumeric:
		return "numeric"
	case BudgetCategorical:
		return "categorical"
	default:
		return ""
	}
}

type BudgetTier string

const (
	TierLow    BudgetTier = "low"
	TierMedium BudgetTier = "medium"
	TierHigh   BudgetTier = "high"
)

// Budget is the normalized budget constraint. Amount is meaningful only for
// BudgetNumeric, Tier only for BudgetCategorical.
type Budget struct {
	Kind   BudgetKind
	Amount float64
	Tier   BudgetTier
}

func (b Budget) IsSet() bool { return b.Kind != BudgetUnset }

// Requested renders the budget for metadata: a number, a tier name or nil.
func (b Budget) Requested() any {
	switch b.Kind {
	case BudgetNumeric:
		return b.Amount
	case BudgetCategorical:
		return string(b.Tier)
	default:
		return nil
	}
}

// AgeSpec is the raw age string plus, when parseable, an inclusive range.
// Max is math.MaxInt for open ranges such as "40+".
type AgeSpec struct {
	Raw    string
	Min    int
	Max    int
	Parsed bool
}

func (a AgeSpec) IsSet() bool { return a.Raw != "" }

// ParseAge accepts "25", "30-40" and "40+". Anything else is kept raw and
// left unparsed.
func ParseAge(raw string) AgeSpec {
	spec := AgeSpec{Raw: raw}
	lo, hi, ok := parseAgeRange(raw)
	if ok {
		spec.Min, spec.Max, spec.Parsed = lo, hi, true
	}
	return spec
}

func parseAgeRange(s string) (int, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n, true
	}
	if s[len(s)-1] == '+' {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, 0, false
		}
		return n, math.MaxInt, true
	}
	for i := 1; i < len(s)-1; i++ {
		if s[i] != '-' {
			continue
		}
		lo, err1 := strconv.Atoi(s[:i])
		hi, err2 := strconv.Atoi(s[i+1:])
		if err1 != nil || err2 != nil || hi < lo {
			return 0, 0, false
		}
		return lo, hi, true
	}
	return 0, 0, false
}

// Overlaps reports whether the parsed age range intersects a product range
// string in the same format.
func (a AgeSpec) Overlaps(productRange string) bool {
	lo, hi, ok := parseAgeRange(productRange)
	if !ok {
		return false
	}
	return a.Min <= hi && lo <= a.Max
}

// ConstraintSet is built fresh for each request and discarded with it.
type ConstraintSet struct {
	Category          string
	ProductType       string
	Needs             TagSet
	MedicalConditions TagSet
	SkinConditions    TagSet
	HairType          string
	Avoid             TagSet
	MustHave          TagSet
	Budget            Budget
	Age               AgeSpec
	Gender            string
	QueryTokens       []string
}

func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		Needs:             NewTagSet(),
		MedicalConditions: NewTagSet(),
		SkinConditions:    NewTagSet(),
		Avoid:             NewTagSet(),
		MustHave:          NewTagSet(),
	}
}

// IsEmpty reports whether no constraint of any kind was supplied.
func (c *ConstraintSet) IsEmpty() bool {
	return c.Category == "" && c.ProductType == "" && c.Needs.Len() == 0 &&
		c.MedicalConditions.Len() == 0 && c.SkinConditions.Len() == 0 &&
		c.HairType == "" && c.Avoid.Len() == 0 && c.MustHave.Len() == 0 &&
		!c.Budget.IsSet() && !c.Age.IsSet() && c.Gender == "" && len(c.QueryTokens) == 0
}
