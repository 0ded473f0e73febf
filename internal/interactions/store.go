package interactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/temcen/storerank/pkg/models"
)

var ErrUnknownKind = errors.New("unknown interaction kind")

// Store is the per-user interaction log. ForUser returns the most recent interactions oldest
// first and never yields kinds outside models.InteractionKinds. InteractedItems lists every item
// the user ever touched, including those past the ForUser window.
type Store interface {
	ForUser(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error)
	InteractedItems(ctx context.Context, userID uuid.UUID) ([]string, error)
	Append(ctx context.Context, userID uuid.UUID, interaction models.Interaction) error
}

func knownKinds() []string {
	kinds := make([]string, len(models.InteractionKinds))
	for i, kind := range models.InteractionKinds {
		kinds[i] = string(kind)
	}
	return kinds
}

func checkKind(kind models.InteractionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}
