package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/temcen/storerank/pkg/models"
)

var (
	ErrDuplicateItem  = errors.New("duplicate item identifier in catalog")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Source supplies catalog snapshots. Implementations never return duplicate item IDs.
type Source interface {
	Items(ctx context.Context) ([]models.Item, error)
}

func ensureUnique(items []models.Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
