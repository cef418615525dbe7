package domain

import "strings"

// PieceID names a catalog piece.
type PieceID string

// Piece is an immutable catalog entry.
type Piece struct {
	ID    PieceID
	Size  int
	Cells []Coord
}

// rows builds a cell list from strings where '1' marks a filled square.
func rows(lines ...string) []Coord {
	var pts []Coord
	for y, line := range lines {
		for x, c := range line {
			if c == '1' {
				pts = append(pts, Coord{X: x, Y: y})
			}
		}
	}
	return pts
}

func piece(id PieceID, lines ...string) Piece {
	cells := rows(lines...)
	return Piece{ID: id, Size: len(cells), Cells: cells}
}

// catalog lists the 21 pieces in their fixed order.
var catalog = []Piece{
	piece("P1", "1"),
	piece("P2", "11"),

	piece("I3", "111"),
	piece("L3", "10", "11"),

	piece("I4", "1111"),
	piece("O4", "11", "11"),
	piece("L4", "100", "111"),
	piece("T4", "111", "010"),
	piece("S4", "011", "110"),

	piece("F5", "011", "110", "010"),
	piece("I5", "11111"),
	piece("L5", "1000", "1111"),
	piece("P5", "110", "110", "100"),
	piece("N5", "0111", "1100"),
	piece("T5", "111", "010", "010"),
	piece("U5", "101", "111"),
	piece("V5", "100", "100", "111"),
	piece("W5", "100", "110", "011"),
	piece("X5", "010", "111", "010"),
	piece("Y5", "0100", "1111"),
	piece("Z5", "001", "111", "100"),
}

var (
	pieceIndex   = make(map[PieceID]int, len(catalog))
	orientations = make(map[PieceID][]Shape, len(catalog))
	orientKeys   = make(map[PieceID]map[string]struct{}, len(catalog))
)

func init() {
	for i, p := range catalog {
		pieceIndex[p.ID] = i
		set := OrientationsOf(p)
		orientations[p.ID] = set
		keys := make(map[string]struct{}, len(set))
		for _, s := range set {
			keys[s.Key()] = struct{}{}
		}
		orientKeys[p.ID] = keys
	}
}

// AllPieceIDs returns a fresh slice of every catalog id in catalog order.
func AllPieceIDs() []PieceID {
	ids := make([]PieceID, len(catalog))
	for i, p := range catalog {
		ids[i] = p.ID
	}
	return ids
}

// Catalog returns a copy of the catalog in its fixed order.
func Catalog() []Piece {
	return append([]Piece(nil), catalog...)
}

// PieceByID looks up a catalog piece.
func PieceByID(id PieceID) (Piece, bool) {
	i, ok := pieceIndex[id]
	if !ok {
		return Piece{}, false
	}
	return catalog[i], true
}

// IsPieceID reports whether id names a catalog piece.
func IsPieceID(id PieceID) bool {
	_, ok := pieceIndex[id]
	return ok
}

// PieceSize returns the square count of a piece, or 0 for unknown ids.
func PieceSize(id PieceID) int {
	p, ok := PieceByID(id)
	if !ok {
		return 0
	}
	return p.Size
}

// ScoreForRemaining sums the sizes of the remaining pieces.
func ScoreForRemaining(remaining []PieceID) int {
	sum := 0
	for _, id := range remaining {
		sum += PieceSize(id)
	}
	return sum
}

// Orientations returns the precomputed orientations of a piece. The result
// is shared and must not be modified.
func Orientations(id PieceID) []Shape {
	return orientations[id]
}

// IsOrientationOf reports whether shape is one of the orientations of id.
func IsOrientationOf(id PieceID, shape Shape) bool {
	keys, ok := orientKeys[id]
	if !ok || !shape.wellFormed() {
		return false
	}
	_, ok = keys[shape.Key()]
	return ok
}

// OrientationsOf generates every distinct rotation and reflection of p in
// rotation-then-flip order.
func OrientationsOf(p Piece) []Shape {
	cur := normalize(shapeFromCells(p.Cells))
	seen := make(map[string]struct{}, 8)
	var out []Shape
	add := func(s Shape) {
		k := s.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	for r := 0; r < 4; r++ {
		rot := cur
		if r > 0 {
			rot = normalize(rotate90(cur))
		}
		add(rot)
		add(normalize(flipH(rot)))
		cur = rot
	}
	return out
}

// Shape is an occupancy matrix; 1 marks a filled square.
type Shape [][]int

// Key is the canonical string form used for de-duplication.
func (s Shape) Key() string {
	var sb strings.Builder
	for y, row := range s {
		if y > 0 {
			sb.WriteByte('/')
		}
		for _, v := range row {
			if v != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

// Width returns the column count of the bounding box.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the row count of the bounding box.
func (s Shape) Height() int {
	return len(s)
}

// Cells returns the offsets of the filled squares in row-major order.
func (s Shape) Cells() []Coord {
	var out []Coord
	for y, row := range s {
		for x, v := range row {
			if v != 0 {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for i, row := range s {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// wellFormed reports whether s is a non-empty rectangle.
func (s Shape) wellFormed() bool {
	if len(s) == 0 || len(s[0]) == 0 {
		return false
	}
	for _, row := range s {
		if len(row) != len(s[0]) {
			return false
		}
	}
	return true
}

func shapeFromCells(cells []Coord) Shape {
	maxX, maxY := 0, 0
	for _, c := range cells {
		maxX = max(maxX, c.X)
		maxY = max(maxY, c.Y)
	}
	m := make(Shape, maxY+1)
	for y := range m {
		m[y] = make([]int, maxX+1)
	}
	for _, c := range cells {
		m[c.Y][c.X] = 1
	}
	return m
}

func rotate90(m Shape) Shape {
	h, w := m.Height(), m.Width()
	out := make(Shape, w)
	for x := range out {
		out[x] = make([]int, h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[x][h-1-y] = m[y][x]
		}
	}
	return out
}

func flipH(m Shape) Shape {
	out := make(Shape, len(m))
	for y, row := range m {
		r := make([]int, len(row))
		for x, v := range row {
			r[len(row)-1-x] = v
		}
		out[y] = r
	}
	return out
}

// normalize trims empty border rows and columns. An all-empty matrix
// collapses to a single empty cell.
func normalize(m Shape) Shape {
	top, bottom := 0, m.Height()-1
	left, right := 0, m.Width()-1
	rowEmpty := func(y int) bool {
		for _, v := range m[y] {
			if v != 0 {
				return false
			}
		}
		return true
	}
	colEmpty := func(x int) bool {
		for _, row := range m {
			if row[x] != 0 {
				return false
			}
		}
		return true
	}
	for top <= bottom && rowEmpty(top) {
		top++
	}
	for bottom >= top && rowEmpty(bottom) {
		bottom--
	}
	for left <= right && colEmpty(left) {
		left++
	}
	for right >= left && colEmpty(right) {
		right--
	}
	if top > bottom || left > right {
		return Shape{{0}}
	}
	out := make(Shape, 0, bottom-top+1)
	for y := top; y <= bottom; y++ {
		out = append(out, append([]int(nil), m[y][left:right+1]...))
	}
	return out
}
