package seeds

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(60, 42)
	b := Generate(60, 42)
	require.Len(t, a, 60)
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestGenerate_ValidCatalog(t *testing.T) {
	products := Generate(len(templates)*3, 42)

	store, err := catalog.New(products, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(products), store.Len())

	categories := map[string]bool{}
	outOfStock := 0
	for _, p := range products {
		categories[p.Category] = true
		if p.Stock == 0 {
			outOfStock++
		}
		assert.GreaterOrEqual(t, p.Price, 0.0)
	}
	assert.Len(t, categories, 5)
	assert.Less(t, outOfStock, len(products))
}

func TestGenerate_DoesNotShareTemplateSlices(t *testing.T) {
	products := Generate(len(templates)+1, 42)
	products[0].Tags[0] = "changed"
	assert.NotEqual(t, "changed", products[len(templates)].Tags[0])
}

func TestWriteJSON_RoundTripsThroughLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	products := Generate(12, 42)
	require.NoError(t, WriteJSON(path, products))

	loaded, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 12)
	assert.Equal(t, products[3].ID, loaded[3].ID)
	assert.Equal(t, products[3].MedicalConditions, loaded[3].MedicalConditions)
}
