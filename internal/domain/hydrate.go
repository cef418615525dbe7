package domain

import (
	"math"
	"strconv"
	"time"
)

// HydrateResult is either a repaired match or a rejection with a reason.
type HydrateResult struct {
	Match  *Match
	Reason string
}

// Valid reports whether the input could be repaired into a match.
func (r HydrateResult) Valid() bool {
	return r.Match != nil
}

func rejected(reason string) HydrateResult {
	return HydrateResult{Reason: reason}
}

// HydrateRaw validates and repairs an untrusted decoded snapshot (maps,
// slices, float64/int numbers, strings and bools as produced by a JSON
// decoder). Scores, active flags and hasPlayed are always recomputed from
// the board, history and remaining pieces.
func HydrateRaw(raw any) HydrateResult {
	obj, ok := raw.(map[string]any)
	if !ok {
		return rejected("snapshot is not an object")
	}
	rawPlayers, ok := obj["players"].([]any)
	if !ok {
		return rejected("players is not an array")
	}
	if len(rawPlayers) != SeatCount {
		return rejected("players must have exactly 4 entries")
	}

	board := normalizeBoard(obj["board"])
	history := normalizeHistory(obj["history"])
	if !board.HasTiles() && len(history) > 0 {
		board = BoardFromHistory(history)
	}

	players := normalizePlayers(rawPlayers)
	played := make(map[Seat]bool)
	for _, mv := range history {
		played[mv.Player] = true
	}
	for i := range players {
		players[i].HasPlayed = players[i].HasPlayed || played[players[i].ID]
	}
	recomputeScores(players)

	current := Seat(0)
	if n, ok := toInt(obj["current"]); ok {
		current = Seat(mod4(n))
	}

	var winners []Seat
	if ids, ok := obj["winnerIds"].([]any); ok && len(ids) > 0 {
		winners = make([]Seat, 0, len(ids))
		for _, v := range ids {
			if n, ok := toInt(v); ok {
				winners = append(winners, Seat(mod4(n)))
			}
		}
		if len(winners) == 0 {
			winners = nil
		}
	}

	m := &Match{
		Board:     board,
		Players:   players,
		Current:   current,
		History:   history,
		WinnerIDs: winners,
		Meta:      normalizeMeta(obj["meta"]),
	}

	for i := range m.Players {
		m.Players[i].Active = HasAnyLegalMove(m.Players, m.Players[i].ID, &m.Board)
	}
	if m.WinnerIDs == nil && IsGameOver(m.Players, &m.Board) {
		m.WinnerIDs = Winners(m.Players)
	}
	if !m.Players[m.Current].Active {
		for i := 1; i <= SeatCount; i++ {
			s := Seat((int(m.Current) + i) % SeatCount)
			if m.Players[s].Active {
				m.Current = s
				break
			}
		}
	}
	return HydrateResult{Match: m}
}

func mod4(n int) int {
	return ((n % SeatCount) + SeatCount) % SeatCount
}

// toInt accepts integral numbers of any decoded numeric type.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case float32:
		return toInt(float64(n))
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	}
	return 0, false
}

func normalizeBoard(raw any) Board {
	var b Board
	rows, ok := raw.([]any)
	if !ok {
		return b
	}
	for y := 0; y < BoardSize && y < len(rows); y++ {
		row, ok := rows[y].([]any)
		if !ok {
			continue
		}
		for x := 0; x < BoardSize && x < len(row); x++ {
			if n, ok := toInt(row[x]); ok {
				b[y][x] = CellOf(Seat(mod4(n)))
			}
		}
	}
	return b
}

func normalizeShape(raw any) (Shape, bool) {
	rows, ok := raw.([]any)
	if !ok || len(rows) == 0 {
		return nil, false
	}
	out := make(Shape, 0, len(rows))
	width := -1
	for _, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			return nil, false
		}
		if width == -1 {
			width = len(cells)
		}
		if len(cells) != width || width == 0 {
			return nil, false
		}
		row := make([]int, width)
		for x, c := range cells {
			switch v := c.(type) {
			case bool:
				if v {
					row[x] = 1
				}
			default:
				if n, ok := toInt(v); ok && n != 0 {
					row[x] = 1
				}
			}
		}
		out = append(out, row)
	}
	return out, true
}

func normalizeHistory(raw any) []PlacedPiece {
	entries, ok := raw.([]any)
	if !ok {
		return []PlacedPiece{}
	}
	out := make([]PlacedPiece, 0, len(entries))
	for _, e := range entries {
		mv, ok := e.(map[string]any)
		if !ok {
			continue
		}
		player, ok := toInt(mv["player"])
		if !ok {
			continue
		}
		at, ok := mv["at"].(map[string]any)
		if !ok {
			continue
		}
		x, okX := toInt(at["x"])
		y, okY := toInt(at["y"])
		if !okX || !okY {
			continue
		}
		shape, ok := normalizeShape(mv["shape"])
		if !ok {
			continue
		}
		pieceID, _ := mv["pieceId"].(string)
		out = append(out, PlacedPiece{
			PieceID: PieceID(pieceID),
			Player:  Seat(mod4(player)),
			At:      Coord{X: x, Y: y},
			Shape:   shape,
		})
	}
	return out
}

func normalizePlayers(raw []any) []Player {
	byID := make(map[int]map[string]any, len(raw))
	for _, r := range raw {
		p, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := toInt(p["id"]); ok {
			byID[id] = p
		}
	}

	players := make([]Player, SeatCount)
	for id := range players {
		p := byID[id]
		remaining := AllPieceIDs()
		if ids, ok := p["remaining"].([]any); ok {
			remaining = make([]PieceID, 0, len(ids))
			seen := make(map[PieceID]bool, len(ids))
			for _, v := range ids {
				s, ok := v.(string)
				pid := PieceID(s)
				if !ok || !IsPieceID(pid) || seen[pid] {
					continue
				}
				seen[pid] = true
				remaining = append(remaining, pid)
			}
		}
		color := BaseColors[id]
		if c, ok := p["color"].(string); ok && isBaseColor(Color(c)) {
			color = Color(c)
		}
		hasPlayed, _ := p["hasPlayed"].(bool)
		isBot, _ := p["isBot"].(bool)
		players[id] = Player{
			ID:        Seat(id),
			Color:     color,
			Remaining: remaining,
			HasPlayed: hasPlayed,
			IsBot:     isBot,
			Active:    true,
		}
	}
	return players
}

func isBaseColor(c Color) bool {
	for _, b := range BaseColors {
		if b == c {
			return true
		}
	}
	return false
}

func normalizeSeats(raw any) []Seat {
	ids, ok := raw.([]any)
	if !ok {
		return []Seat{}
	}
	out := make([]Seat, 0, len(ids))
	seen := make(map[Seat]bool, len(ids))
	for _, v := range ids {
		n, ok := toInt(v)
		if !ok || !Seat(n).Valid() || seen[Seat(n)] {
			continue
		}
		seen[Seat(n)] = true
		out = append(out, Seat(n))
	}
	return out
}

func normalizeMeta(raw any) Meta {
	src, _ := raw.(map[string]any)
	meta := Meta{
		RollPending:    false,
		ShowedRollOnce: true,
		Hydrated:       true,
		RollQueue:      []Seat{},
		BotQueue:       normalizeSeats(src["botQueue"]),
	}
	if id, ok := src["matchId"].(string); ok {
		meta.MatchID = id
	} else {
		meta.MatchID = NewMatchID(time.Now())
	}
	if seed, ok := src["rngSeed"].(string); ok {
		meta.RNGSeed = seed
	} else {
		meta.RNGSeed = meta.MatchID
	}

	if rolls, ok := src["rolls"].([]any); ok {
		for _, r := range rolls {
			e, ok := r.(map[string]any)
			if !ok {
				continue
			}
			id, ok := toInt(e["id"])
			if !ok || !Seat(id).Valid() {
				continue
			}
			roll := Roll{ID: Seat(id)}
			if v, ok := toInt(e["value"]); ok {
				roll.Value = &v
			}
			meta.Rolls = append(meta.Rolls, roll)
		}
	}
	if last, ok := src["lastRoll"].([]any); ok {
		for _, r := range last {
			e, ok := r.(map[string]any)
			if !ok {
				continue
			}
			c, okC := e["color"].(string)
			v, okV := toInt(e["value"])
			if okC && okV && isBaseColor(Color(c)) {
				meta.LastRoll = append(meta.LastRoll, ColorRoll{Color: Color(c), Value: v})
			}
		}
	}
	if tbs, ok := src["tieBreaks"].(map[string]any); ok {
		for k, v := range tbs {
			id, err := strconv.Atoi(k)
			e, ok := v.(map[string]any)
			if err != nil || !ok || !Seat(id).Valid() {
				continue
			}
			from, okF := toInt(e["from"])
			to, okT := toInt(e["to"])
			if !okF || !okT {
				continue
			}
			if meta.TieBreaks == nil {
				meta.TieBreaks = make(map[Seat]TieBreak)
			}
			meta.TieBreaks[Seat(id)] = TieBreak{From: from, To: to}
		}
	}
	return meta
}
