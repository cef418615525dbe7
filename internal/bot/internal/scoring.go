package internal

import "bloktris/internal/domain"

// Weights tune how a legal placement is scored.
type Weights struct {
	Mobility int
	Outward  int
	Size     int
}

// Mobility counts empty board cells diagonally adjacent to each filled cell
// of the placement, measured on the board before it is placed. A cell shared
// by several filled squares is counted once per square.
func Mobility(b *domain.Board, shape domain.Shape, at domain.Coord) int {
	count := 0
	for _, c := range shape.Cells() {
		gx, gy := at.X+c.X, at.Y+c.Y
		for _, d := range [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
			if b.Empty(gx+d[0], gy+d[1]) {
				count++
			}
		}
	}
	return count
}

// Outward is the raw coordinate sum of the anchor.
func Outward(at domain.Coord) int {
	return at.X + at.Y
}

// Score combines the placement features with w.
func Score(w Weights, b *domain.Board, shape domain.Shape, at domain.Coord, size int) int {
	return w.Mobility*Mobility(b, shape, at) + w.Outward*Outward(at) + w.Size*size
}
