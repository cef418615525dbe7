package domain

import "sort"

// MaxTieBreakIterations bounds the deterministic re-roll loop.
const MaxTieBreakIterations = 10

// SeatRoll is a settled die value for a seat.
type SeatRoll struct {
	ID    Seat
	Value int
}

// TurnOrder is the outcome of turn-order resolution.
type TurnOrder struct {
	// Rolls is sorted by value descending, then by rolling seat ascending.
	Rolls     []SeatRoll
	TieBreaks map[Seat]TieBreak
}

// Order returns the pre-reorder seat ids in final play order.
func (o TurnOrder) Order() []Seat {
	out := make([]Seat, len(o.Rolls))
	for i, r := range o.Rolls {
		out[i] = r.ID
	}
	return out
}

func hasTies(rolls []SeatRoll) bool {
	seen := make(map[int]struct{}, len(rolls))
	for _, r := range rolls {
		if _, ok := seen[r.Value]; ok {
			return true
		}
		seen[r.Value] = struct{}{}
	}
	return false
}

// ResolveTurnOrder breaks ties deterministically and ranks the seats.
// While any value is shared (at most MaxTieBreakIterations times) every seat
// in a shared group re-rolls on its tie-break stream. Residual ties fall back
// to ascending seat id.
func ResolveTurnOrder(seed string, rolls []SeatRoll) TurnOrder {
	resolved := append([]SeatRoll(nil), rolls...)
	tieBreaks := make(map[Seat]TieBreak)

	for iter := 1; iter <= MaxTieBreakIterations && hasTies(resolved); iter++ {
		groups := make(map[int][]int)
		for i, r := range resolved {
			groups[r.Value] = append(groups[r.Value], i)
		}
		for _, idxs := range groups {
			if len(idxs) < 2 {
				continue
			}
			for _, i := range idxs {
				id := resolved[i].ID
				to := SeededDie(TieBreakKey(seed, id, iter))()
				tb, ok := tieBreaks[id]
				if !ok {
					tb.From = resolved[i].Value
				}
				tb.To = to
				tieBreaks[id] = tb
				resolved[i].Value = to
			}
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Value != resolved[j].Value {
			return resolved[i].Value > resolved[j].Value
		}
		return resolved[i].ID < resolved[j].ID
	})
	return TurnOrder{Rolls: resolved, TieBreaks: tieBreaks}
}

// RemapSeats moves each player to its slot in order: slot i receives the
// player previously seated at order[i], renumbered to i and recolored.
// Remaining pieces and the bot flag travel with the player.
func RemapSeats(players []Player, order []Seat) []Player {
	out := make([]Player, len(order))
	for i, old := range order {
		p := players[old]
		p.Remaining = append([]PieceID(nil), p.Remaining...)
		p.ID = Seat(i)
		p.Color = BaseColors[i]
		out[i] = p
	}
	return out
}
