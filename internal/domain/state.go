package domain

// BoardSize is the fixed edge length of the square board.
const BoardSize = 20

// SeatCount is the number of play slots in every match.
const SeatCount = 4

// Seat identifies one of the four play slots (0..3).
type Seat int

// Valid reports whether s names one of the four seats.
func (s Seat) Valid() bool {
	return s >= 0 && s < SeatCount
}

// Color is the display color bound to a seat slot.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
)

// BaseColors lists the slot colors in seat order.
var BaseColors = [SeatCount]Color{ColorBlue, ColorYellow, ColorRed, ColorGreen}

// Coord is a board coordinate; X is the column and Y the row.
type Coord struct {
	X int
	Y int
}

// HomeCorner returns the board corner a seat's first placement must cover.
func HomeCorner(s Seat) Coord {
	switch s {
	case 1:
		return Coord{X: BoardSize - 1, Y: 0}
	case 2:
		return Coord{X: BoardSize - 1, Y: BoardSize - 1}
	case 3:
		return Coord{X: 0, Y: BoardSize - 1}
	default:
		return Coord{X: 0, Y: 0}
	}
}

// Player holds the per-seat state of a match.
type Player struct {
	ID        Seat
	Color     Color
	Remaining []PieceID
	HasPlayed bool
	IsBot     bool
	Score     int  // sum of remaining piece sizes, lower is better
	Active    bool // false once the seat can no longer move; never flips back
}

// PlacedPiece is one entry of the placement history.
type PlacedPiece struct {
	PieceID PieceID
	Player  Seat
	At      Coord
	Shape   Shape
}

// Roll is a seat's die value during turn-order resolution. Value is nil until rolled.
type Roll struct {
	ID    Seat
	Value *int
}

// ColorRoll is a resolved die value keyed by the final slot color.
type ColorRoll struct {
	Color Color
	Value int
}

// TieBreak records the first contested value and the latest re-roll of a seat.
type TieBreak struct {
	From int
	To   int
}

// Meta carries match identity and turn-order resolution progress.
type Meta struct {
	MatchID        string
	RNGSeed        string
	RollPending    bool
	RollQueue      []Seat
	Rolls          []Roll
	LastRoll       []ColorRoll
	TieBreaks      map[Seat]TieBreak
	ShowedRollOnce bool
	BotQueue       []Seat
	Hydrated       bool
}

// Match is an immutable snapshot of a game. Transitions return new snapshots.
type Match struct {
	Board     Board
	Players   []Player
	Current   Seat
	History   []PlacedPiece
	WinnerIDs []Seat // nil while the match is still running
	Meta      Meta
}

// NewMatch returns the empty pre-start state.
func NewMatch() *Match {
	return &Match{}
}

// Started reports whether the match has its four seats.
func (m *Match) Started() bool {
	return m != nil && len(m.Players) == SeatCount
}

// Ended reports whether a winner list has been recorded.
func (m *Match) Ended() bool {
	return m != nil && m.WinnerIDs != nil
}

// AwaitingRolls reports whether turn order is still being resolved.
func (m *Match) AwaitingRolls() bool {
	return m.Meta.RollPending || len(m.Meta.BotQueue) > 0
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	out := &Match{
		Board:   m.Board,
		Current: m.Current,
		Meta:    m.Meta.clone(),
	}
	if m.Players != nil {
		out.Players = make([]Player, len(m.Players))
		for i, p := range m.Players {
			p.Remaining = append([]PieceID(nil), p.Remaining...)
			out.Players[i] = p
		}
	}
	if m.History != nil {
		out.History = make([]PlacedPiece, len(m.History))
		for i, h := range m.History {
			h.Shape = h.Shape.Clone()
			out.History[i] = h
		}
	}
	if m.WinnerIDs != nil {
		out.WinnerIDs = append([]Seat{}, m.WinnerIDs...)
	}
	return out
}

func (m Meta) clone() Meta {
	out := m
	out.RollQueue = cloneSeats(m.RollQueue)
	out.BotQueue = cloneSeats(m.BotQueue)
	if m.Rolls != nil {
		out.Rolls = make([]Roll, len(m.Rolls))
		for i, r := range m.Rolls {
			if r.Value != nil {
				v := *r.Value
				r.Value = &v
			}
			out.Rolls[i] = r
		}
	}
	if m.LastRoll != nil {
		out.LastRoll = append([]ColorRoll{}, m.LastRoll...)
	}
	if m.TieBreaks != nil {
		out.TieBreaks = make(map[Seat]TieBreak, len(m.TieBreaks))
		for k, v := range m.TieBreaks {
			out.TieBreaks[k] = v
		}
	}
	return out
}

func cloneSeats(in []Seat) []Seat {
	if in == nil {
		return nil
	}
	return append([]Seat{}, in...)
}
