package bot

import (
	"bloktris/internal/domain"
)

// Placement is a scored legal move chosen by the search.
type Placement struct {
	PieceID domain.PieceID
	Shape   domain.Shape
	At      domain.Coord
	Score   int
}

// Decision is what a bot wants to do on its turn.
type Decision struct {
	Pass      bool
	Placement *Placement
}

// Command converts the decision into a state machine command for seat.
func (d Decision) Command(seat domain.Seat) domain.Command {
	if d.Pass || d.Placement == nil {
		return domain.Pass{Seat: seat}
	}
	return domain.Place{
		Seat:    seat,
		PieceID: d.Placement.PieceID,
		Shape:   d.Placement.Shape,
		At:      d.Placement.At,
	}
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(m *domain.Match, seat domain.Seat) (Decision, error)
}
