package domain

// RetrievalSource records which retrieval path produced a candidate.
type RetrievalSource string

const (
	SourceSemantic RetrievalSource = "semantic"
	SourceKeyword  RetrievalSource = "keyword"
)

// Retrieval modes reported in metadata.
const (
	ModeSemantic        = "semantic"
	ModeSemanticKeyword = "semantic+keyword"
	ModeKeyword         = "keyword"
)

// SafetyNote is a non-fatal medical flag carried by a surviving candidate.
type SafetyNote struct {
	Conditions []string
}

type Candidate struct {
	Product      *Product
	Position     int
	Similarity   float64
	KeywordBoost float64
	Source       RetrievalSource
	SafetyNotes  []SafetyNote
	Score        float64
}

// Filter exclusion reasons, also the keys of Metadata.FilteredOut.
const (
	ReasonCategoryMismatch    = "category_mismatch"
	ReasonOutOfStock          = "out_of_stock"
	ReasonMedicalSafety       = "medical_safety"
	ReasonSkinIncompatibility = "skin_incompatibility"
	ReasonIngredientAvoidance = "ingredient_avoidance"
	ReasonBudget              = "budget"
)

// FilterReasons lists the exclusion reasons in evaluation order.
var FilterReasons = []string{
	ReasonCategoryMismatch,
	ReasonOutOfStock,
	ReasonMedicalSafety,
	ReasonSkinIncompatibility,
	ReasonIngredientAvoidance,
	ReasonBudget,
}

// Constraint categories reported in Metadata.ConstraintsApplied.
const (
	AppliedCategory            = "category"
	AppliedMedicalSafety       = "medical_safety"
	AppliedSkinCompatibility   = "skin_compatibility"
	AppliedIngredientAvoidance = "ingredient_avoidance"
	AppliedBudget              = "budget"
	AppliedPreferences         = "preferences"
	AppliedAge                 = "age"
	AppliedGender              = "gender"
)

const (
	WarningBudget            = "budget"
	WarningFiltering         = "filtering"
	WarningMedical           = "medical_consultation"
	WarningRetrievalDegraded = "retrieval_degraded"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Product    string `json:"product,omitempty"`
}

type BudgetInfo struct {
	RequestedBudget    any      `json:"requested_budget"`
	BudgetType         string   `json:"budget_type,omitempty"`
	CheapestAvailable  *float64 `json:"cheapest_available"`
	MostExpensive      *float64 `json:"most_expensive,omitempty"`
	AveragePrice       *float64 `json:"average_price,omitempty"`
	ProductsInBudget   int      `json:"products_in_budget"`
	ProductsOverBudget int      `json:"products_over_budget"`
}

type SearchInfo struct {
	RetrievalMode   string `json:"retrieval_mode"`
	TotalCandidates int    `json:"total_candidates"`
	AfterFiltering  int    `json:"after_filtering"`
}

type Metadata struct {
	RequestID          string         `json:"request_id"`
	Warnings           []Warning      `json:"warnings"`
	ConstraintsApplied []string       `json:"constraints_applied"`
	FilteredOut        map[string]int `json:"filtered_out"`
	BudgetInfo         BudgetInfo     `json:"budget_info"`
	SearchInfo         SearchInfo     `json:"search_info"`
}

// NewMetadata returns metadata with every collection initialised so that an
// empty result still serialises as empty lists and zero counters.
func NewMetadata(requestID string) Metadata {
	filtered := make(map[string]int, len(FilterReasons))
	for _, r := range FilterReasons {
		filtered[r] = 0
	}
	return Metadata{
		RequestID:          requestID,
		Warnings:           []Warning{},
		ConstraintsApplied: []string{},
		FilteredOut:        filtered,
	}
}

type Recommendation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Reason      string   `json:"reason"`
	Score       float64  `json:"score"`
	Stock       int      `json:"stock"`
	SafetyNotes []string `json:"safety_notes,omitempty"`
}

type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
	Metadata        Metadata         `json:"metadata"`
	Language        string           `json:"language"`
	Message         string           `json:"message,omitempty"`
}

type RecommendationResult struct {
	Response *RecommendationResponse
	CacheHit bool
}

type BatchItemResult struct {
	Index    int                     `json:"index"`
	Status   BatchStatus             `json:"status"`
	Response *RecommendationResponse `json:"response,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Message  string                  `json:"message,omitempty"`
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Results  []BatchItemResult `json:"results"`
	Summary  BatchSummary      `json:"summary"`
	Metadata BatchMeta         `json:"metadata"`
}

// CatalogStats summarises the catalog for the stats endpoint.
type CatalogStats struct {
	TotalProducts int            `json:"total_products"`
	InStock       int            `json:"in_stock"`
	Categories    map[string]int `json:"categories"`
	IndexType     string         `json:"index_type"`
	Version       uint64         `json:"catalog_version"`
}
