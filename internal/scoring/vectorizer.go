package scoring

import (
	"math"

	"github.com/temcen/storerank/pkg/models"
)

// Taxonomy is the ordered category and brand vocabulary the one-hot blocks encode against.
type Taxonomy struct {
	Categories []string
	Brands     []string
}

// Dimensions returns the length of every vector produced for this taxonomy.
func (t Taxonomy) Dimensions() int {
	return len(t.Categories) + len(t.Brands) + 2
}

// Vectorizer maps items onto a fixed-length feature vector:
// [category one-hot | brand one-hot | ln(price)/10 | rating/5].
type Vectorizer struct {
	taxonomy      Taxonomy
	categoryIndex map[string]int
	brandIndex    map[string]int
}

func NewVectorizer(taxonomy Taxonomy) *Vectorizer {
	t := Taxonomy{
		Categories: append([]string(nil), taxonomy.Categories...),
		Brands:     append([]string(nil), taxonomy.Brands...),
	}

	return &Vectorizer{
		taxonomy:      t,
		categoryIndex: positions(t.Categories),
		brandIndex:    positions(t.Brands),
	}
}

func positions(values []string) map[string]int {
	index := make(map[string]int, len(values))
	for i, v := range values {
		if _, seen := index[v]; !seen {
			index[v] = i
		}
	}
	return index
}

func (v *Vectorizer) Taxonomy() Taxonomy {
	return v.taxonomy
}

func (v *Vectorizer) Dimensions() int {
	return v.taxonomy.Dimensions()
}

// Vectorize is pure; unknown categories and brands leave their block all zero.
func (v *Vectorizer) Vectorize(item models.Item) []float64 {
	vector := make([]float64, v.Dimensions())
	brandOffset := len(v.taxonomy.Categories)
	priceSlot := brandOffset + len(v.taxonomy.Brands)

	if i, ok := v.categoryIndex[item.Category]; ok {
		vector[i] = 1
	}
	if i, ok := v.brandIndex[item.Brand]; ok {
		vector[brandOffset+i] = 1
	}

	vector[priceSlot] = priceFeature(item.Price)
	vector[priceSlot+1] = item.Rating / 5

	return vector
}

// priceFeature dampens price ranges; a non-positive price is a data defect and contributes nothing.
func priceFeature(price float64) float64 {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return math.Log(price) / 10
}
