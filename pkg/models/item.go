package models

type Item struct {
	ID            string   `json:"id" yaml:"id" db:"id" validate:"required"`
	Name          string   `json:"name" yaml:"name" db:"name" validate:"required,min=1,max=255"`
	Price         float64  `json:"price" yaml:"price" db:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty" yaml:"original_price,omitempty" db:"original_price"`
	Rating        float64  `json:"rating" yaml:"rating" db:"rating" validate:"min=0,max=5"`
	ReviewCount   int      `json:"review_count" yaml:"review_count" db:"review_count" validate:"min=0"`
	Category      string   `json:"category" yaml:"category" db:"category"`
	Brand         string   `json:"brand" yaml:"brand" db:"brand"`
	InStock       bool     `json:"in_stock" yaml:"in_stock" db:"in_stock"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty" db:"tags"`
}

// Attributes exposes the item as a plain map, the shape expression filters evaluate against.
func (i Item) Attributes() map[string]interface{} {
	tags := make([]interface{}, len(i.Tags))
	for n, tag := range i.Tags {
		tags[n] = tag
	}

	attrs := map[string]interface{}{
		"id":           i.ID,
		"name":         i.Name,
		"price":        i.Price,
		"rating":       i.Rating,
		"review_count": int64(i.ReviewCount),
		"category":     i.Category,
		"brand":        i.Brand,
		"in_stock":     i.InStock,
		"tags":         tags,
	}
	if i.OriginalPrice != nil {
		attrs["original_price"] = *i.OriginalPrice
	}
	return attrs
}
