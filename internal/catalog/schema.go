package catalog

const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Product catalog",
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "price", "rating", "review_count", "category", "brand"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1, "maxLength": 255},
          "price": {"type": "number"},
          "original_price": {"type": "number"},
          "rating": {"type": "number", "minimum": 0, "maximum": 5},
          "review_count": {"type": "integer", "minimum": 0},
          "category": {"type": "string"},
          "brand": {"type": "string"},
          "in_stock": {"type": "boolean"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`
