package bot

import (
	"errors"

	botinternal "bloktris/internal/bot/internal"
	"bloktris/internal/domain"
)

var ErrSeatOutOfRange = errors.New("seat out of range")

// HeuristicBot places the piece that keeps the most diagonal openings,
// preferring large pieces and anchors away from the origin.
type HeuristicBot struct {
	Weights botinternal.Weights
}

// CalculateMove implements Brain. It passes when the seat is retired or no
// placement is legal.
func (b *HeuristicBot) CalculateMove(m *domain.Match, seat domain.Seat) (Decision, error) {
	if m == nil || !seat.Valid() || int(seat) >= len(m.Players) {
		return Decision{Pass: true}, ErrSeatOutOfRange
	}
	if !m.Players[seat].Active {
		return Decision{Pass: true}, nil
	}
	w := b.Weights
	if w == (botinternal.Weights{}) {
		w = DefaultTuning
	}
	p := search(m, seat, w)
	if p == nil {
		return Decision{Pass: true}, nil
	}
	return Decision{Placement: p}, nil
}
