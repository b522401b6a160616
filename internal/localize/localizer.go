// Package localize renders ranked candidates into the localized response:
// display fields, reason strings, safety notes and the aggregate metadata.
package localize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/model"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
)

const reasonSeparator = " • "

var supported = []language.Tag{language.English, language.French, language.Arabic}

var languageAliases = map[string]string{
	"english":  domain.LangEnglish,
	"anglais":  domain.LangEnglish,
	"french":   domain.LangFrench,
	"francais": domain.LangFrench,
	"français": domain.LangFrench,
	"arabic":   domain.LangArabic,
	"arabe":    domain.LangArabic,
	"العربية":  domain.LangArabic,
}

type Localizer struct {
	matcher language.Matcher
	catalog catalog.Catalog
	policy  *policy.Policy
}

func New(p *policy.Policy) (*Localizer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, fmt.Errorf("build message catalog: %w", err)
	}
	return &Localizer{
		matcher: language.NewMatcher(supported),
		catalog: cat,
		policy:  p,
	}, nil
}

// Resolve maps a requested language (code, BCP 47 tag or name) to one of
// the supported codes, defaulting to English.
func (l *Localizer) Resolve(requested string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return domain.LangEnglish
	}
	if code, ok := languageAliases[requested]; ok {
		return code
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return domain.LangEnglish
	}
	_, idx, conf := l.matcher.Match(tag)
	if conf == language.No {
		return domain.LangEnglish
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func (l *Localizer) printer(lang string) *message.Printer {
	return message.NewPrinter(language.Make(lang), message.Catalog(l.catalog))
}

// Input gathers what the upstream stages produced for one request.
// Retrieved is the candidate list before any hard filter; Results is the
// final ranked and truncated list.
type Input struct {
	RequestID   string
	Language    string
	Constraints *domain.ConstraintSet
	Retrieved   []domain.Candidate
	Survivors   int
	FilteredOut map[string]int
	Applied     []string
	Mode        string
	Degraded    bool
	Results     []domain.Candidate
}

func (l *Localizer) Build(in Input) *domain.RecommendationResponse {
	lang := l.Resolve(in.Language)
	pr := l.printer(lang)
	cs := in.Constraints

	resp := &domain.RecommendationResponse{
		Recommendations: make([]domain.Recommendation, 0, len(in.Results)),
		Language:        lang,
		Metadata:        domain.NewMetadata(in.RequestID),
	}
	for _, c := range in.Results {
		resp.Recommendations = append(resp.Recommendations, l.recommendation(pr, lang, c, cs))
	}
	resp.Count = len(resp.Recommendations)

	md := &resp.Metadata
	for k, v := range in.FilteredOut {
		md.FilteredOut[k] = v
	}
	if in.Applied != nil {
		md.ConstraintsApplied = append(md.ConstraintsApplied, in.Applied...)
	}
	md.BudgetInfo = l.budgetInfo(cs.Budget, in.Retrieved)
	md.SearchInfo = domain.SearchInfo{
		RetrievalMode:   in.Mode,
		TotalCandidates: len(in.Retrieved),
		AfterFiltering:  in.Survivors,
	}
	md.Warnings = l.warnings(pr, lang, in, md.BudgetInfo)

	if resp.Count == 0 {
		resp.Message = pr.Sprintf(msgNoMatch)
	}
	return resp
}

func (l *Localizer) recommendation(pr *message.Printer, lang string, c domain.Candidate, cs *domain.ConstraintSet) domain.Recommendation {
	p := c.Product
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	rec := domain.Recommendation{
		ID:          p.ID,
		Name:        p.LocalizedName(lang),
		Price:       p.Price,
		Currency:    p.CurrencyCode(),
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Tags:        tags,
		Description: p.LocalizedDescription(lang),
		Reason:      l.Reason(pr, p, cs),
		Score:       math.Round(c.Score*1000) / 1000,
		Stock:       p.Stock,
	}
	for _, n := range c.SafetyNotes {
		rec.SafetyNotes = append(rec.SafetyNotes, pr.Sprintf(msgConsultDoctor, humanize(n.Conditions)))
	}
	return rec
}

// Reason explains why p was recommended, one localized clause per matched
// constraint, or a category fallback when none applies.
func (l *Localizer) Reason(pr *message.Printer, p *domain.Product, cs *domain.ConstraintSet) string {
	m := model.MatchProduct(p, cs)
	var parts []string

	if len(m.Skin) > 0 {
		parts = append(parts, pr.Sprintf(msgSkin, humanize(m.Skin)))
	}
	if m.Hair {
		parts = append(parts, pr.Sprintf(msgHair, humanize([]string{cs.HairType})))
	}
	if len(m.Needs) > 0 {
		parts = append(parts, pr.Sprintf(msgNeeds, humanize(m.Needs)))
	}
	if len(m.Essential) > 0 {
		parts = append(parts, pr.Sprintf(msgEssential, humanize(m.Essential)))
	}
	if len(m.Beneficial) > 0 {
		parts = append(parts, pr.Sprintf(msgBeneficial, humanize(m.Beneficial)))
	}
	if len(m.SafeFor) > 0 {
		parts = append(parts, pr.Sprintf(msgSafeFor, humanize(m.SafeFor)))
	}
	if cs.Budget.IsSet() {
		price := FormatPrice(p.Price, p.CurrencyCode())
		if l.policy.WithinBudget(p.Price, cs.Budget) {
			parts = append(parts, pr.Sprintf(msgWithinBudget, price))
		} else {
			parts = append(parts, pr.Sprintf(msgNearBudget, price))
		}
	}
	if len(m.Preferences) > 0 {
		parts = append(parts, pr.Sprintf(msgPreferences, humanize(m.Preferences)))
	}

	if len(parts) == 0 {
		return pr.Sprintf(msgFallbackReason, humanize([]string{p.Category}))
	}
	return strings.Join(parts, reasonSeparator)
}

func (l *Localizer) budgetInfo(b domain.Budget, retrieved []domain.Candidate) domain.BudgetInfo {
	info := domain.BudgetInfo{
		RequestedBudget: b.Requested(),
		BudgetType:      b.Kind.String(),
	}
	if len(retrieved) == 0 {
		return info
	}
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, c := range retrieved {
		price := c.Product.Price
		lo = math.Min(lo, price)
		hi = math.Max(hi, price)
		sum += price
		if !b.IsSet() {
			continue
		}
		if l.policy.WithinBudget(price, b) {
			info.ProductsInBudget++
		} else {
			info.ProductsOverBudget++
		}
	}
	avg := math.Round(sum/float64(len(retrieved))*100) / 100
	info.CheapestAvailable = &lo
	info.MostExpensive = &hi
	info.AveragePrice = &avg
	return info
}

func (l *Localizer) warnings(pr *message.Printer, lang string, in Input, info domain.BudgetInfo) []domain.Warning {
	warnings := []domain.Warning{}
	b := in.Constraints.Budget

	if in.Degraded {
		warnings = append(warnings, domain.Warning{
			Type:       domain.WarningRetrievalDegraded,
			Severity:   domain.SeverityLow,
			Message:    pr.Sprintf(msgDegraded),
			Suggestion: pr.Sprintf(msgDegradedHint),
		})
	}

	if b.Kind == domain.BudgetNumeric && info.ProductsInBudget == 0 && info.CheapestAvailable != nil {
		currency := currencyOf(in.Retrieved)
		cheapest := FormatPrice(*info.CheapestAvailable, currency)
		warnings = append(warnings, domain.Warning{
			Type:       domain.WarningBudget,
			Severity:   domain.SeverityHigh,
			Message:    pr.Sprintf(msgBudgetNone, FormatPrice(b.Amount, currency), cheapest),
			Suggestion: pr.Sprintf(msgBudgetNoneHint, cheapest),
		})
	}

	if cut := in.FilteredOut[domain.ReasonBudget]; cut > 0 {
		msg := pr.Sprintf(msgBudgetCut, cut)
		if b.Kind == domain.BudgetCategorical {
			msg = pr.Sprintf(msgBudgetTierCut, cut, string(b.Tier))
		}
		warnings = append(warnings, domain.Warning{
			Type:       domain.WarningBudget,
			Severity:   domain.SeverityMedium,
			Message:    msg,
			Suggestion: pr.Sprintf(msgBudgetCutHint),
		})
	}

	// Survivors counts before the top_k cut.
	if in.Survivors < l.policy.LowResultsThreshold && len(in.Retrieved) >= l.policy.LowResultsMinUpstream {
		warnings = append(warnings, domain.Warning{
			Type:       domain.WarningFiltering,
			Severity:   domain.SeverityLow,
			Message:    pr.Sprintf(msgLowResults, in.Survivors),
			Suggestion: pr.Sprintf(msgLowResultsHint),
		})
	}

	for _, c := range in.Results {
		for _, n := range c.SafetyNotes {
			warnings = append(warnings, domain.Warning{
				Type:       domain.WarningMedical,
				Severity:   domain.SeverityMedium,
				Message:    pr.Sprintf(msgMedicalWarning, humanize(n.Conditions)),
				Suggestion: pr.Sprintf(msgMedicalHint),
				Product:    c.Product.LocalizedName(lang),
			})
		}
	}
	return warnings
}

// FormatPrice renders an amount without a trailing fraction when whole.
func FormatPrice(v float64, currency string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + currency
}

func currencyOf(cands []domain.Candidate) string {
	if len(cands) == 0 {
		return "DA"
	}
	return cands[0].Product.CurrencyCode()
}

func humanize(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ReplaceAll(t, "_", " ")
	}
	return strings.Join(out, ", ")
}
