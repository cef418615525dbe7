package domain

// IsInsideBoard reports whether the shape's bounding box at the anchor fits on the board.
func IsInsideBoard(shape Shape, at Coord) bool {
	return at.X >= 0 && at.Y >= 0 &&
		at.X+shape.Width() <= BoardSize && at.Y+shape.Height() <= BoardSize
}

// WouldOverlap reports whether any filled cell lands on an occupied or off-board square.
func WouldOverlap(b *Board, shape Shape, at Coord) bool {
	for y, row := range shape {
		for x, v := range row {
			if v == 0 {
				continue
			}
			if !b.Empty(at.X+x, at.Y+y) {
				return true
			}
		}
	}
	return false
}

// TouchesSideSelf reports whether any filled cell is orthogonally adjacent to a cell of s.
func TouchesSideSelf(b *Board, s Seat, shape Shape, at Coord) bool {
	return touchesSelf(b, s, shape, at, sideDirs)
}

// TouchesCornerSelf reports whether any filled cell is diagonally adjacent to a cell of s.
func TouchesCornerSelf(b *Board, s Seat, shape Shape, at Coord) bool {
	return touchesSelf(b, s, shape, at, diagDirs)
}

func touchesSelf(b *Board, s Seat, shape Shape, at Coord, dirs [4]Coord) bool {
	for y, row := range shape {
		for x, v := range row {
			if v == 0 {
				continue
			}
			gx, gy := at.X+x, at.Y+y
			for _, d := range dirs {
				if b.OwnedBy(gx+d.X, gy+d.Y, s) {
					return true
				}
			}
		}
	}
	return false
}

// CoversCorner reports whether a filled cell lands exactly on corner.
func CoversCorner(shape Shape, at Coord, corner Coord) bool {
	for y, row := range shape {
		for x, v := range row {
			if v != 0 && at.X+x == corner.X && at.Y+y == corner.Y {
				return true
			}
		}
	}
	return false
}

// IsLegalMove reports whether seat s may place shape with its bounding box
// anchored at at.
func IsLegalMove(m *Match, s Seat, shape Shape, at Coord) bool {
	if !s.Valid() || int(s) >= len(m.Players) {
		return false
	}
	return isLegalOn(&m.Board, s, m.Players[s].HasPlayed, shape, at)
}

func isLegalOn(b *Board, s Seat, hasPlayed bool, shape Shape, at Coord) bool {
	if !shape.wellFormed() {
		return false
	}
	if !IsInsideBoard(shape, at) {
		return false
	}
	if WouldOverlap(b, shape, at) {
		return false
	}
	if TouchesSideSelf(b, s, shape, at) {
		return false
	}
	if !hasPlayed {
		return CoversCorner(shape, at, HomeCorner(s))
	}
	return TouchesCornerSelf(b, s, shape, at)
}

// diagonalAnchors collects empty cells diagonally adjacent to s and not
// orthogonally adjacent to it.
func diagonalAnchors(b *Board, s Seat) []Coord {
	var out []Coord
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b[y][x] != CellEmpty {
				continue
			}
			diag := false
			for _, d := range diagDirs {
				if b.OwnedBy(x+d.X, y+d.Y, s) {
					diag = true
					break
				}
			}
			if !diag {
				continue
			}
			side := false
			for _, d := range sideDirs {
				if b.OwnedBy(x+d.X, y+d.Y, s) {
					side = true
					break
				}
			}
			if !side {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// HasAnyLegalMove reports whether seat s can place any remaining piece.
// Candidate anchors are the home corner before the first move and the
// diagonal frontier afterwards; each orientation is aligned so that one of
// its filled cells sits on the anchor.
func HasAnyLegalMove(players []Player, s Seat, b *Board) bool {
	if !s.Valid() || int(s) >= len(players) {
		return false
	}
	p := players[s]
	var anchors []Coord
	if !p.HasPlayed {
		anchors = []Coord{HomeCorner(s)}
	} else {
		anchors = diagonalAnchors(b, s)
	}
	if len(anchors) == 0 {
		return false
	}
	for _, id := range p.Remaining {
		for _, o := range Orientations(id) {
			cells := o.Cells()
			for _, anchor := range anchors {
				for _, c := range cells {
					at := Coord{X: anchor.X - c.X, Y: anchor.Y - c.Y}
					if isLegalOn(b, s, p.HasPlayed, o, at) {
						return true
					}
				}
			}
		}
	}
	return false
}

// IsGameOver reports whether no active seat has a legal move. Inactive
// seats are not re-examined.
func IsGameOver(players []Player, b *Board) bool {
	for _, p := range players {
		if p.Active && HasAnyLegalMove(players, p.ID, b) {
			return false
		}
	}
	return true
}

// Winners returns every seat whose score equals the minimum.
func Winners(players []Player) []Seat {
	if len(players) == 0 {
		return []Seat{}
	}
	best := players[0].Score
	for _, p := range players[1:] {
		best = min(best, p.Score)
	}
	out := []Seat{}
	for _, p := range players {
		if p.Score == best {
			out = append(out, p.ID)
		}
	}
	return out
}

// recomputeScores refreshes every score from the remaining pieces.
func recomputeScores(players []Player) {
	for i := range players {
		players[i].Score = ScoreForRemaining(players[i].Remaining)
	}
}

// nextSeat scans clockwise from cur+1 for an active seat with a legal move.
// It returns cur when none qualifies.
func nextSeat(players []Player, cur Seat, b *Board) Seat {
	for i := 1; i <= SeatCount; i++ {
		s := Seat((int(cur) + i) % SeatCount)
		if int(s) < len(players) && players[s].Active && HasAnyLegalMove(players, s, b) {
			return s
		}
	}
	return cur
}

// ApplyMove places a piece without re-validating it and returns the new
// snapshot. Legality is the caller's responsibility.
func ApplyMove(m *Match, s Seat, id PieceID, shape Shape, at Coord) *Match {
	next := m.Clone()
	next.Board.Stamp(s, shape, at)

	p := &next.Players[s]
	p.HasPlayed = true
	p.Remaining = removePiece(p.Remaining, id)
	p.Score = ScoreForRemaining(p.Remaining)

	next.History = append(next.History, PlacedPiece{
		PieceID: id,
		Player:  s,
		At:      at,
		Shape:   shape.Clone(),
	})
	next.Current = nextSeat(next.Players, s, &next.Board)

	if IsGameOver(next.Players, &next.Board) {
		next.WinnerIDs = Winners(next.Players)
	} else {
		next.WinnerIDs = nil
	}
	return next
}

func removePiece(remaining []PieceID, id PieceID) []PieceID {
	out := make([]PieceID, 0, len(remaining))
	for _, r := range remaining {
		if r != id {
			out = append(out, r)
		}
	}
	return out
}
