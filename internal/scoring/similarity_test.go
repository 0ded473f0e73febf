package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("symmetric across catalog items", func(t *testing.T) {
		v := NewVectorizer(DefaultTaxonomy())
		catalog := storeCatalog()

		for _, a := range catalog {
			for _, b := range catalog {
				va, vb := v.Vectorize(a), v.Vectorize(b)
				assert.Equal(t, CosineSimilarity(va, vb), CosineSimilarity(vb, va), "%s/%s", a.ID, b.ID)
			}
		}
	})

	t.Run("self similarity is one", func(t *testing.T) {
		v := NewVectorizer(DefaultTaxonomy())
		for _, item := range storeCatalog() {
			vec := v.Vectorize(item)
			assert.InDelta(t, 1.0, CosineSimilarity(vec, vec), 1e-12, item.ID)
		}
	})

	t.Run("zero vector yields zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3}))
		assert.Zero(t, CosineSimilarity([]float64{1, 2, 3}, []float64{0, 0, 0}))
		assert.Zero(t, CosineSimilarity([]float64{0, 0}, []float64{0, 0}))
	})

	t.Run("length mismatch yields zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
		assert.Zero(t, CosineSimilarity(nil, nil))
	})

	t.Run("orthogonal and opposite", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float64{1, 0}, []float64{0, 1}))
		assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 2}, []float64{-1, -2}), 1e-12)
	})
}
