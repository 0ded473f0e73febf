package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/temcen/storerank/pkg/models"
)

var ErrInvalidWeights = errors.New("invalid scoring weights")

const secondsPerDay = 86400

// BaseWeights holds the intent strength of each interaction kind.
type BaseWeights struct {
	View     float64
	Like     float64
	CartAdd  float64
	Purchase float64
}

func DefaultBaseWeights() BaseWeights {
	return BaseWeights{View: 1, Like: 3, CartAdd: 5, Purchase: 10}
}

// Validate enforces view < like < cart < purchase. Every ranking downstream relies on it.
func (b BaseWeights) Validate() error {
	if b.View < 0 {
		return fmt.Errorf("%w: view weight %v is negative", ErrInvalidWeights, b.View)
	}
	if !(b.View < b.Like && b.Like < b.CartAdd && b.CartAdd < b.Purchase) {
		return fmt.Errorf("%w: base weights must strictly increase view < like < cart < purchase, got %v < %v < %v < %v",
			ErrInvalidWeights, b.View, b.Like, b.CartAdd, b.Purchase)
	}
	return nil
}

// Weighter turns an interaction into base(kind) * exp(-daysSince/decayDays).
type Weighter struct {
	base        map[models.InteractionKind]float64
	decayDays   float64
	clampFuture bool
}

func NewWeighter(base BaseWeights, decayDays float64, clampFuture bool) (*Weighter, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if decayDays <= 0 {
		return nil, fmt.Errorf("%w: decay days must be positive, got %v", ErrInvalidWeights, decayDays)
	}

	return &Weighter{
		base: map[models.InteractionKind]float64{
			models.InteractionView:     base.View,
			models.InteractionLike:     base.Like,
			models.InteractionCartAdd:  base.CartAdd,
			models.InteractionPurchase: base.Purchase,
		},
		decayDays:   decayDays,
		clampFuture: clampFuture,
	}, nil
}

// Weight returns 0 for kinds it does not know. Future timestamps produce a decay above 1
// unless the weighter was built with clampFuture.
func (w *Weighter) Weight(interaction models.Interaction, now time.Time) float64 {
	base, ok := w.base[interaction.Kind]
	if !ok {
		return 0
	}

	daysSince := now.Sub(interaction.Timestamp).Seconds() / secondsPerDay
	if w.clampFuture && daysSince < 0 {
		daysSince = 0
	}

	return base * math.Exp(-daysSince/w.decayDays)
}
