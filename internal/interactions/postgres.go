package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/pkg/models"
)

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

const (
	selectRecentInteractionsSQL = `
		SELECT item_id, interaction_type, rating, timestamp
		FROM (
			SELECT item_id, interaction_type, rating, timestamp
			FROM user_interactions
			WHERE user_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC`

	selectInteractedItemsSQL = `
		SELECT DISTINCT item_id
		FROM user_interactions
		WHERE user_id = $1 AND interaction_type = ANY($2)
		ORDER BY item_id`

	insertInteractionSQL = `
		INSERT INTO user_interactions (user_id, item_id, interaction_type, rating, timestamp)
		VALUES ($1, $2, $3, $4, $5)`
)

// PostgresStore keeps the interaction log in the user_interactions table. Only the most recent
// limit rows per user are read back.
type PostgresStore struct {
	db     DatabaseQuerier
	limit  int
	logger *logrus.Logger
}

func NewPostgresStore(db DatabaseQuerier, limit int, logger *logrus.Logger) *PostgresStore {
	if limit <= 0 {
		limit = 1000
	}
	return &PostgresStore{
		db:     db,
		limit:  limit,
		logger: logger,
	}
}

func (s *PostgresStore) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error) {
	rows, err := s.db.Query(ctx, selectRecentInteractionsSQL, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("interaction query failed: %w", err)
	}
	defer rows.Close()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		var (
			itemID    string
			kind      string
			rating    *float64
			timestamp time.Time
		)
		if err := rows.Scan(&itemID, &kind, &rating, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}

		interactionKind := models.InteractionKind(kind)
		if !interactionKind.Valid() {
			s.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"item_id": itemID,
				"kind":    kind,
			}).Warn("Skipping interaction with unknown kind")
			continue
		}

		interactions = append(interactions, models.Interaction{
			ItemID:    itemID,
			Kind:      interactionKind,
			Timestamp: timestamp,
			Rating:    rating,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interaction rows failed: %w", err)
	}

	return interactions, nil
}

func (s *PostgresStore) InteractedItems(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, selectInteractedItemsSQL, userID, knownKinds())
	if err != nil {
		return nil, fmt.Errorf("interacted items query failed: %w", err)
	}
	defer rows.Close()

	items := make([]string, 0)
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan interacted item: %w", err)
		}
		items = append(items, itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interacted items rows failed: %w", err)
	}

	return items, nil
}

func (s *PostgresStore) Append(ctx context.Context, userID uuid.UUID, interaction models.Interaction) error {
	if err := checkKind(interaction.Kind); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx, insertInteractionSQL,
		userID,
		interaction.ItemID,
		string(interaction.Kind),
		interaction.Rating,
		interaction.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	return nil
}
