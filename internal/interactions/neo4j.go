package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/pkg/models"
)

const (
	matchInteractionsCypher = `
		MATCH (u:User {id: $user_id})-[r:INTERACTED]->(p:Product)
		WITH p, r
		ORDER BY r.timestamp DESC
		LIMIT $limit
		RETURN p.id AS item_id, r.kind AS kind, r.rating AS rating, r.timestamp AS timestamp
		ORDER BY timestamp ASC`

	matchInteractedItemsCypher = `
		MATCH (u:User {id: $user_id})-[r:INTERACTED]->(p:Product)
		WHERE r.kind IN $kinds
		RETURN DISTINCT p.id AS item_id
		ORDER BY item_id`

	createInteractionCypher = `
		MERGE (u:User {id: $user_id})
		MERGE (p:Product {id: $item_id})
		CREATE (u)-[r:INTERACTED {kind: $kind, timestamp: $timestamp}]->(p)
		SET r.rating = $rating`
)

// Neo4jStore keeps interactions as INTERACTED relationships between User and Product nodes.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	limit  int
	logger *logrus.Logger
}

func NewNeo4jStore(driver neo4j.DriverWithContext, limit int, logger *logrus.Logger) *Neo4jStore {
	if limit <= 0 {
		limit = 1000
	}
	return &Neo4jStore{
		driver: driver,
		limit:  limit,
		logger: logger,
	}
}

func (s *Neo4jStore) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, matchInteractionsCypher, map[string]interface{}{
			"user_id": userID.String(),
			"limit":   s.limit,
		})
		if err != nil {
			return nil, err
		}

		interactions := make([]models.Interaction, 0)
		for result.Next(ctx) {
			interaction, err := interactionFromRecord(result.Record().AsMap())
			if err != nil {
				s.logger.WithError(err).WithField("user_id", userID).Warn("Skipping malformed interaction relationship")
				continue
			}
			interactions = append(interactions, interaction)
		}

		return interactions, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions from Neo4j: %w", err)
	}

	return result.([]models.Interaction), nil
}

func (s *Neo4jStore) InteractedItems(ctx context.Context, userID uuid.UUID) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, matchInteractedItemsCypher, map[string]interface{}{
			"user_id": userID.String(),
			"kinds":   knownKinds(),
		})
		if err != nil {
			return nil, err
		}

		items := make([]string, 0)
		for result.Next(ctx) {
			if itemID, ok := result.Record().AsMap()["item_id"].(string); ok && itemID != "" {
				items = append(items, itemID)
			}
		}

		return items, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read interacted items from Neo4j: %w", err)
	}

	return result.([]string), nil
}

func (s *Neo4jStore) Append(ctx context.Context, userID uuid.UUID, interaction models.Interaction) error {
	if err := checkKind(interaction.Kind); err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, createInteractionCypher, interactionParams(userID, interaction))
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to write interaction to Neo4j: %w", err)
	}

	return nil
}

func interactionParams(userID uuid.UUID, interaction models.Interaction) map[string]interface{} {
	params := map[string]interface{}{
		"user_id":   userID.String(),
		"item_id":   interaction.ItemID,
		"kind":      string(interaction.Kind),
		"timestamp": interaction.Timestamp.UTC(),
		"rating":    nil,
	}
	if interaction.Rating != nil {
		params["rating"] = *interaction.Rating
	}
	return params
}

func interactionFromRecord(values map[string]interface{}) (models.Interaction, error) {
	itemID, ok := values["item_id"].(string)
	if !ok || itemID == "" {
		return models.Interaction{}, fmt.Errorf("missing item_id")
	}

	kindValue, _ := values["kind"].(string)
	kind := models.InteractionKind(kindValue)
	if err := checkKind(kind); err != nil {
		return models.Interaction{}, err
	}

	timestamp, ok := values["timestamp"].(time.Time)
	if !ok {
		return models.Interaction{}, fmt.Errorf("interaction on %s has no timestamp", itemID)
	}

	interaction := models.Interaction{
		ItemID:    itemID,
		Kind:      kind,
		Timestamp: timestamp,
	}
	switch rating := values["rating"].(type) {
	case float64:
		interaction.Rating = &rating
	case int64:
		value := float64(rating)
		interaction.Rating = &value
	}

	return interaction, nil
}
