package bot

import (
	botinternal "bloktris/internal/bot/internal"
	"bloktris/internal/domain"
)

// Move searches every remaining piece, orientation and anchor for seat and
// returns the highest-scoring legal placement, or nil when nothing fits.
// Ties keep the first candidate in enumeration order: remaining-piece order,
// then orientation order, then row-major anchors.
func Move(m *domain.Match, seat domain.Seat) *Placement {
	return search(m, seat, DefaultTuning)
}

func search(m *domain.Match, seat domain.Seat, w botinternal.Weights) *Placement {
	if m == nil || !seat.Valid() || int(seat) >= len(m.Players) {
		return nil
	}
	var best *Placement
	for _, id := range m.Players[seat].Remaining {
		size := domain.PieceSize(id)
		for _, shape := range domain.Orientations(id) {
			for y := 0; y < domain.BoardSize; y++ {
				for x := 0; x < domain.BoardSize; x++ {
					at := domain.Coord{X: x, Y: y}
					if !domain.IsLegalMove(m, seat, shape, at) {
						continue
					}
					score := botinternal.Score(w, &m.Board, shape, at, size)
					if best == nil || score > best.Score {
						best = &Placement{PieceID: id, Shape: shape.Clone(), At: at, Score: score}
					}
				}
			}
		}
	}
	return best
}
