// Package codec owns the snapshot wire format shared by storage, RPC and the CLI.
package codec

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"bloktris/internal/domain"
)

// Snapshot is the JSON shape of a saved match. Board cells are null when
// empty, otherwise the owning seat id.
type Snapshot struct {
	Board     [][]*int `json:"board"`
	Players   []Player `json:"players"`
	Current   int      `json:"current"`
	History   []Move   `json:"history"`
	WinnerIDs []int    `json:"winnerIds"`
	Meta      Meta     `json:"meta"`
}

type Player struct {
	ID        int      `json:"id"`
	Color     string   `json:"color"`
	Remaining []string `json:"remaining"`
	HasPlayed bool     `json:"hasPlayed"`
	IsBot     bool     `json:"isBot"`
	Score     int      `json:"score"`
	Active    bool     `json:"active"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Move struct {
	PieceID string  `json:"pieceId"`
	Player  int     `json:"player"`
	At      Point   `json:"at"`
	Shape   [][]int `json:"shape"`
}

type Roll struct {
	ID    int  `json:"id"`
	Value *int `json:"value"`
}

type ColorRoll struct {
	Color string `json:"color"`
	Value int    `json:"value"`
}

type TieBreak struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type Meta struct {
	MatchID        string              `json:"matchId"`
	RNGSeed        string              `json:"rngSeed"`
	RollPending    bool                `json:"rollPending"`
	RollQueue      []int               `json:"rollQueue"`
	Rolls          []Roll              `json:"rolls"`
	LastRoll       []ColorRoll         `json:"lastRoll,omitempty"`
	TieBreaks      map[string]TieBreak `json:"tieBreaks,omitempty"`
	ShowedRollOnce bool                `json:"showedRollOnce"`
	BotQueue       []int               `json:"botQueue"`
	Hydrated       bool                `json:"hydrated,omitempty"`
}

// FromMatch converts a match into its wire shape.
func FromMatch(m *domain.Match) Snapshot {
	s := Snapshot{
		Board:   make([][]*int, domain.BoardSize),
		Players: make([]Player, 0, len(m.Players)),
		Current: int(m.Current),
		History: make([]Move, 0, len(m.History)),
		Meta:    fromMeta(m.Meta),
	}
	for y := 0; y < domain.BoardSize; y++ {
		row := make([]*int, domain.BoardSize)
		for x := 0; x < domain.BoardSize; x++ {
			if seat, ok := m.Board.At(x, y); ok {
				v := int(seat)
				row[x] = &v
			}
		}
		s.Board[y] = row
	}
	for _, p := range m.Players {
		remaining := make([]string, len(p.Remaining))
		for i, id := range p.Remaining {
			remaining[i] = string(id)
		}
		s.Players = append(s.Players, Player{
			ID:        int(p.ID),
			Color:     string(p.Color),
			Remaining: remaining,
			HasPlayed: p.HasPlayed,
			IsBot:     p.IsBot,
			Score:     p.Score,
			Active:    p.Active,
		})
	}
	for _, h := range m.History {
		s.History = append(s.History, Move{
			PieceID: string(h.PieceID),
			Player:  int(h.Player),
			At:      Point{X: h.At.X, Y: h.At.Y},
			Shape:   h.Shape.Clone(),
		})
	}
	if m.WinnerIDs != nil {
		s.WinnerIDs = seats(m.WinnerIDs)
	}
	return s
}

func fromMeta(m domain.Meta) Meta {
	out := Meta{
		MatchID:        m.MatchID,
		RNGSeed:        m.RNGSeed,
		RollPending:    m.RollPending,
		RollQueue:      seats(m.RollQueue),
		Rolls:          make([]Roll, 0, len(m.Rolls)),
		ShowedRollOnce: m.ShowedRollOnce,
		BotQueue:       seats(m.BotQueue),
		Hydrated:       m.Hydrated,
	}
	for _, r := range m.Rolls {
		roll := Roll{ID: int(r.ID)}
		if r.Value != nil {
			v := *r.Value
			roll.Value = &v
		}
		out.Rolls = append(out.Rolls, roll)
	}
	for _, r := range m.LastRoll {
		out.LastRoll = append(out.LastRoll, ColorRoll{Color: string(r.Color), Value: r.Value})
	}
	if len(m.TieBreaks) > 0 {
		out.TieBreaks = make(map[string]TieBreak, len(m.TieBreaks))
		for seat, tb := range m.TieBreaks {
			out.TieBreaks[strconv.Itoa(int(seat))] = TieBreak{From: tb.From, To: tb.To}
		}
	}
	return out
}

func seats(in []domain.Seat) []int {
	out := make([]int, len(in))
	for i, s := range in {
		out[i] = int(s)
	}
	return out
}

// Encode serializes a match snapshot.
func Encode(m *domain.Match) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode snapshot: nil match")
	}
	return sonic.Marshal(FromMatch(m))
}

// Raw decodes data into generic JSON values, the input HydrateRaw expects.
func Raw(data []byte) (any, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return raw, nil
}

// Decode parses and repairs a stored snapshot. A JSON syntax error is
// returned as an error; a structurally unusable snapshot comes back as a
// rejected HydrateResult.
func Decode(data []byte) (domain.HydrateResult, error) {
	raw, err := Raw(data)
	if err != nil {
		return domain.HydrateResult{}, err
	}
	return domain.HydrateRaw(raw), nil
}

// ToMap renders a match as generic JSON values, for structpb and logging.
func ToMap(m *domain.Match) (map[string]any, error) {
	data, err := Encode(m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot map: %w", err)
	}
	return out, nil
}
