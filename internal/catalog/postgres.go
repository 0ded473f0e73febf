package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/pkg/models"
)

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const selectProductsSQL = `
	SELECT
		id, name, price, original_price, rating, review_count,
		category, brand, in_stock, tags
	FROM products
	ORDER BY id`

// PostgresSource reads the live catalog from the products table.
type PostgresSource struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresSource(db DatabaseQuerier, logger *logrus.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresSource) Items(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.Query(ctx, selectProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Price,
			&item.OriginalPrice,
			&item.Rating,
			&item.ReviewCount,
			&item.Category,
			&item.Brand,
			&item.InStock,
			&item.Tags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows failed: %w", err)
	}

	if err := ensureUnique(items); err != nil {
		return nil, err
	}

	s.logger.WithField("items", len(items)).Debug("Catalog fetched from PostgreSQL")
	return items, nil
}
