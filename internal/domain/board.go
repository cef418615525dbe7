package domain

// Cell is a board square: zero when empty, otherwise the owning seat plus one.
type Cell uint8

// CellEmpty marks an unoccupied square.
const CellEmpty Cell = 0

// CellOf returns the cell value owned by seat s.
func CellOf(s Seat) Cell {
	return Cell(s + 1)
}

// Owner returns the owning seat and whether the cell is filled.
func (c Cell) Owner() (Seat, bool) {
	if c == CellEmpty {
		return 0, false
	}
	return Seat(c - 1), true
}

// Board is the fixed N×N grid. The zero value is an empty board and
// assignment copies it.
type Board [BoardSize][BoardSize]Cell

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < BoardSize && y < BoardSize
}

// At returns the owner of (x, y). Off-board coordinates read as empty.
func (b *Board) At(x, y int) (Seat, bool) {
	if !InBounds(x, y) {
		return 0, false
	}
	return b[y][x].Owner()
}

// Empty reports whether (x, y) is on the board and unoccupied.
func (b *Board) Empty(x, y int) bool {
	return InBounds(x, y) && b[y][x] == CellEmpty
}

// OwnedBy reports whether (x, y) is on the board and owned by s.
func (b *Board) OwnedBy(x, y int, s Seat) bool {
	return InBounds(x, y) && b[y][x] == CellOf(s)
}

// HasTiles reports whether any cell is filled.
func (b *Board) HasTiles() bool {
	for y := range b {
		for x := range b[y] {
			if b[y][x] != CellEmpty {
				return true
			}
		}
	}
	return false
}

// Stamp marks every filled cell of shape at the anchor as owned by s.
// Cells that fall off the board are skipped.
func (b *Board) Stamp(s Seat, shape Shape, at Coord) {
	for y, row := range shape {
		for x, v := range row {
			if v == 0 {
				continue
			}
			gx, gy := at.X+x, at.Y+y
			if InBounds(gx, gy) {
				b[gy][gx] = CellOf(s)
			}
		}
	}
}

// BoardFromHistory replays placements onto an empty board.
func BoardFromHistory(history []PlacedPiece) Board {
	var b Board
	for _, mv := range history {
		b.Stamp(mv.Player, mv.Shape, mv.At)
	}
	return b
}

// CountOwned returns the number of cells owned by s.
func (b *Board) CountOwned(s Seat) int {
	n := 0
	want := CellOf(s)
	for y := range b {
		for x := range b[y] {
			if b[y][x] == want {
				n++
			}
		}
	}
	return n
}

var (
	sideDirs = [4]Coord{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	diagDirs = [4]Coord{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)
