package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
	"github.com/actuallystonmai/catalog-recommender/internal/constraint"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/embedding"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
	"github.com/actuallystonmai/catalog-recommender/internal/vectorindex"
)

type fakeIndex struct {
	hits  []vectorindex.Hit
	err   error
	delay time.Duration
	calls int
}

func (f *fakeIndex) Search(ctx context.Context, _ []float32, k int) ([]vectorindex.Hit, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Len() int     { return len(f.hits) }
func (f *fakeIndex) Kind() string { return "fake" }

func testCatalog() catalog.Snapshot {
	return catalog.NewSnapshot([]*domain.Product{
		{ID: "serum", Name: "Vitamin C Serum", Category: "beauty_skincare", Price: 2500, Stock: 5,
			Tags: []string{"brightening"}, ProblemsSolved: []string{"dark_spots"},
			SkinConditions: &domain.SkinConditions{SuitableFor: []string{"oily", "normal"}}},
		{ID: "cream", Name: "Rich Cream", Category: "beauty_skincare", Price: 1800, Stock: 0,
			SkinConditions: &domain.SkinConditions{SuitableFor: []string{"dry"}}},
		{ID: "gel", Name: "Oil Control Gel", Category: "beauty_skincare", Price: 1200, Stock: 3,
			SkinConditions: &domain.SkinConditions{SuitableFor: []string{"oily"}}},
		{ID: "shampoo", Name: "Curl Shampoo", Category: "hair_care", Price: 900, Stock: 8,
			HairTypes: []string{"curly"}},
		{ID: "bar", Name: "Protein Bar", Category: "nutrition", Price: 300, Stock: 20,
			MedicalConditions: &domain.MedicalConditions{BeneficialFor: []string{"diabetes"}}},
	})
}

func newRetriever(idx vectorindex.Index, timeout time.Duration) *Retriever {
	return New(embedding.NewHashEmbedder(32), idx, policy.Default(), Config{
		Timeout: timeout,
		Breaker: BreakerConfig{FailureThreshold: 2, Timeout: time.Minute},
	}, zerolog.Nop())
}

func ids(cands []domain.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Product.ID
	}
	return out
}

func TestRetrieve_SemanticEnough(t *testing.T) {
	idx := &fakeIndex{hits: []vectorindex.Hit{{ID: "gel", Similarity: 0.9}, {ID: "serum", Similarity: 0.8}, {ID: "cream", Similarity: 0.7}}}
	r := newRetriever(idx, time.Second)

	text, cs := constraint.Parse(domain.RecommendationRequest{SkinType: "oily"})
	res := r.Retrieve(context.Background(), testCatalog(), text, cs, 2)

	assert.False(t, res.Degraded)
	assert.Equal(t, domain.ModeSemantic, res.Mode)
	assert.Equal(t, []string{"gel", "serum"}, ids(res.Candidates), "zero-stock hit dropped")
	assert.Equal(t, 2, res.Candidates[0].Position)
	assert.Greater(t, res.Candidates[0].KeywordBoost, 0.0)
	assert.LessOrEqual(t, res.Candidates[0].KeywordBoost, 0.6)
}

func TestRetrieve_FallbackTopsUp(t *testing.T) {
	idx := &fakeIndex{hits: []vectorindex.Hit{{ID: "serum", Similarity: 0.9}}}
	r := newRetriever(idx, time.Second)

	text, cs := constraint.Parse(domain.RecommendationRequest{SkinType: "oily"})
	res := r.Retrieve(context.Background(), testCatalog(), text, cs, 3)

	assert.Equal(t, domain.ModeSemanticKeyword, res.Mode)
	assert.Equal(t, []string{"serum", "gel"}, ids(res.Candidates), "duplicates removed, semantic first")
	assert.Equal(t, domain.SourceSemantic, res.Candidates[0].Source)
	assert.Equal(t, domain.SourceKeyword, res.Candidates[1].Source)
}

func TestRetrieve_DegradesOnFailure(t *testing.T) {
	tests := []struct {
		name string
		idx  *fakeIndex
	}{
		{"index error", &fakeIndex{err: errors.New("boom")}},
		{"timeout", &fakeIndex{delay: time.Second, hits: []vectorindex.Hit{{ID: "gel", Similarity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRetriever(tt.idx, 20*time.Millisecond)
			text, cs := constraint.Parse(domain.RecommendationRequest{HairType: "curly"})
			res := r.Retrieve(context.Background(), testCatalog(), text, cs, 3)

			assert.True(t, res.Degraded)
			assert.Error(t, res.Err)
			assert.Equal(t, domain.ModeKeyword, res.Mode)
			assert.Equal(t, []string{"shampoo"}, ids(res.Candidates))
		})
	}
}

func TestRetrieve_BreakerOpens(t *testing.T) {
	idx := &fakeIndex{err: errors.New("boom")}
	r := newRetriever(idx, time.Second)
	text, cs := constraint.Parse(domain.RecommendationRequest{Query: "serum"})

	for i := 0; i < 3; i++ {
		res := r.Retrieve(context.Background(), testCatalog(), text, cs, 2)
		assert.True(t, res.Degraded)
	}
	assert.Equal(t, 2, idx.calls, "open breaker short-circuits the index")
	assert.Equal(t, "open", r.BreakerState())

	res := r.Retrieve(context.Background(), testCatalog(), text, cs, 2)
	assert.ErrorIs(t, res.Err, domain.ErrIndexUnavailable)
}

func TestRetrieve_EmptyRequestReturnsInStockCatalog(t *testing.T) {
	idx := &fakeIndex{}
	r := newRetriever(idx, time.Second)

	text, cs := constraint.Parse(domain.RecommendationRequest{})
	res := r.Retrieve(context.Background(), testCatalog(), text, cs, 5)

	assert.Zero(t, idx.calls, "empty text skips the semantic path")
	assert.Equal(t, domain.ModeKeyword, res.Mode)
	assert.False(t, res.Degraded)
	assert.Equal(t, []string{"serum", "gel", "shampoo", "bar"}, ids(res.Candidates))
	for _, c := range res.Candidates {
		assert.Equal(t, baselineScore, c.Similarity)
	}
}

func TestRetrieve_NoIndex(t *testing.T) {
	r := New(nil, nil, policy.Default(), Config{}, zerolog.Nop())
	assert.Equal(t, "none", r.IndexKind())

	text, cs := constraint.Parse(domain.RecommendationRequest{MedicalConditions: domain.StringList{"diabetes"}})
	res := r.Retrieve(context.Background(), testCatalog(), text, cs, 3)
	assert.Equal(t, []string{"bar"}, ids(res.Candidates))
	assert.Equal(t, domain.ModeKeyword, res.Mode)
	assert.True(t, res.Degraded)
	assert.ErrorIs(t, res.Err, domain.ErrIndexUnavailable)

	// Nothing to embed, nothing degraded.
	res = r.Retrieve(context.Background(), testCatalog(), "", domain.NewConstraintSet(), 3)
	assert.False(t, res.Degraded)
}

func TestKeywordSearch_UnmatchableConstraintsUseBaseline(t *testing.T) {
	tests := []struct {
		name string
		req  domain.RecommendationRequest
	}{
		{"budget only", domain.RecommendationRequest{Budget: domain.NumericBudget(500)}},
		{"avoid only", domain.RecommendationRequest{Avoid: domain.StringList{"fragrance"}}},
		{"age and gender", domain.RecommendationRequest{Age: "25", Gender: "female"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cs := constraint.Parse(tt.req)
			got := keywordSearch(testCatalog(), cs, 10)
			assert.Equal(t, []string{"serum", "gel", "shampoo", "bar"}, ids(got))
		})
	}

	_, cs := constraint.Parse(domain.RecommendationRequest{SkinType: "oily", Budget: domain.NumericBudget(500)})
	assert.Equal(t, []string{"serum", "gel"}, ids(keywordSearch(testCatalog(), cs, 10)))
}

func TestKeywordBoostCap(t *testing.T) {
	p := &domain.Product{
		ID: "x", Name: "x",
		Tags:           []string{"hydrating", "brightening", "vitamin_c"},
		ProblemsSolved: []string{"dark_spots", "dullness"},
	}
	cs := domain.NewConstraintSet()
	cs.Needs.Add("dark spots")
	boost := keywordBoost(p, cs, "hydrating brightening vitamin c serum for dullness", 0.6)
	assert.Equal(t, 0.6, boost)

	assert.Zero(t, keywordBoost(p, domain.NewConstraintSet(), "unrelated", 0.6))
}

func TestMergeKeepsFirstOccurrence(t *testing.T) {
	a := &domain.Product{ID: "a"}
	b := &domain.Product{ID: "b"}
	out := merge(
		[]domain.Candidate{{Product: a, Similarity: 0.9, Source: domain.SourceSemantic}},
		[]domain.Candidate{{Product: b, Similarity: 0.5}, {Product: a, Similarity: 0.1}},
	)
	require.Len(t, out, 2)
	assert.Equal(t, 0.9, out[0].Similarity)
	assert.Equal(t, "b", out[1].Product.ID)
}
