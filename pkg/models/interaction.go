package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionKind is ordered by increasing intent strength.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionLike     InteractionKind = "like"
	InteractionCartAdd  InteractionKind = "cart"
	InteractionPurchase InteractionKind = "purchase"
)

// InteractionKinds lists every recognised kind, weakest first.
var InteractionKinds = []InteractionKind{
	InteractionView,
	InteractionLike,
	InteractionCartAdd,
	InteractionPurchase,
}

func (k InteractionKind) Valid() bool {
	for _, known := range InteractionKinds {
		if k == known {
			return true
		}
	}
	return false
}

type Interaction struct {
	ItemID    string          `json:"item_id" db:"item_id"`
	Kind      InteractionKind `json:"kind" db:"interaction_type"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	Rating    *float64        `json:"rating,omitempty" db:"rating"`
}

type InteractionRequest struct {
	ItemID    string     `json:"item_id" validate:"required,min=1,max=128"`
	Kind      string     `json:"kind" validate:"required,oneof=view like cart purchase"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Rating    *float64   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// InteractionEvent is the unit carried on the interaction topic.
type InteractionEvent struct {
	EventID     uuid.UUID   `json:"event_id"`
	UserID      uuid.UUID   `json:"user_id"`
	Interaction Interaction `json:"interaction"`
	PublishedAt time.Time   `json:"published_at"`
	RetryCount  int         `json:"retry_count"`
}
