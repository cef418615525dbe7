package domain

import (
	"reflect"
	"testing"
)

// playingMatch returns a match whose turn order is settled, with seat 0 to move.
func playingMatch() *Match {
	return &Match{
		Players: BuildPlayers(SeatCount),
		History: []PlacedPiece{},
		Meta:    Meta{MatchID: "test", RNGSeed: "test", ShowedRollOnce: true},
	}
}

var mono = Shape{{1}}

func TestFirstMoveLegality(t *testing.T) {
	m := playingMatch()
	for s := Seat(0); s < SeatCount; s++ {
		corner := HomeCorner(s)
		if !IsLegalMove(m, s, mono, corner) {
			t.Errorf("seat %d: monomino at home corner %v should be legal", s, corner)
		}
	}
	tests := []struct {
		name string
		at   Coord
	}{
		{"next to corner", Coord{X: 1, Y: 0}},
		{"center", Coord{X: 10, Y: 10}},
		{"other corner", HomeCorner(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsLegalMove(m, 0, mono, tt.at) {
				t.Fatalf("monomino at %v should be illegal for a first move", tt.at)
			}
		})
	}
}

func TestInsideBoardUsesBoundingBox(t *testing.T) {
	i3 := Shape{{1, 1, 1}}
	if !IsInsideBoard(i3, Coord{X: 17, Y: 0}) {
		t.Fatal("I3 at x=17 fits")
	}
	if IsInsideBoard(i3, Coord{X: 18, Y: 0}) {
		t.Fatal("I3 at x=18 overflows")
	}
	if IsInsideBoard(i3, Coord{X: -1, Y: 0}) {
		t.Fatal("negative anchor must be outside")
	}
}

func TestSideTouchRejected(t *testing.T) {
	m := playingMatch()
	m.Board.Stamp(0, mono, Coord{X: 0, Y: 0})
	m.Players[0].HasPlayed = true

	// (1,1) touches diagonally, (1,0) touches by side.
	if !IsLegalMove(m, 0, mono, Coord{X: 1, Y: 1}) {
		t.Fatal("diagonal placement should be legal")
	}
	// A domino over (1,0) and (1,1) has corner contact, but side contact wins.
	l := Shape{{1}, {1}}
	if IsLegalMove(m, 0, l, Coord{X: 1, Y: 0}) {
		t.Fatal("side touch must be illegal even with a diagonal contact")
	}
}

func TestCornerTouchRequired(t *testing.T) {
	m := playingMatch()
	m.Board.Stamp(0, mono, Coord{X: 0, Y: 0})
	m.Players[0].HasPlayed = true
	if IsLegalMove(m, 0, mono, Coord{X: 5, Y: 5}) {
		t.Fatal("detached placement must be illegal after the first move")
	}
	if IsLegalMove(m, 0, mono, Coord{X: 0, Y: 1}) {
		t.Fatal("orthogonal-only contact must be illegal")
	}
}

func TestOverlapRejected(t *testing.T) {
	m := playingMatch()
	m.Board.Stamp(1, mono, Coord{X: 0, Y: 0})
	if IsLegalMove(m, 0, mono, Coord{X: 0, Y: 0}) {
		t.Fatal("placing on an occupied corner must be illegal")
	}
}

func TestOpponentContactAllowed(t *testing.T) {
	m := playingMatch()
	m.Board.Stamp(0, mono, Coord{X: 0, Y: 0})
	m.Players[0].HasPlayed = true
	m.Board.Stamp(1, Shape{{1, 1}}, Coord{X: 2, Y: 1})
	if !IsLegalMove(m, 0, mono, Coord{X: 1, Y: 1}) {
		t.Fatal("touching another color by side is allowed")
	}
}

func TestHasAnyLegalMove(t *testing.T) {
	m := playingMatch()
	if !HasAnyLegalMove(m.Players, 0, &m.Board) {
		t.Fatal("fresh seat should have a move")
	}

	m.Board.Stamp(3, mono, HomeCorner(0))
	if HasAnyLegalMove(m.Players, 0, &m.Board) {
		t.Fatal("a seat whose corner is taken has no first move")
	}

	m.Players[1].Remaining = nil
	if HasAnyLegalMove(m.Players, 1, &m.Board) {
		t.Fatal("a seat without pieces has no move")
	}
}

// boxedInMatch leaves seat 0 with exactly one legal monomino placement and
// every other seat inactive.
func boxedInMatch() *Match {
	m := playingMatch()
	m.Board.Stamp(0, mono, Coord{X: 0, Y: 0})
	m.Players[0].HasPlayed = true
	m.Players[0].Remaining = []PieceID{"P1"}
	// Opponent cells beside (1,1) do not block it.
	m.Board.Stamp(1, mono, Coord{X: 2, Y: 1})
	m.Board.Stamp(1, mono, Coord{X: 1, Y: 2})
	for s := Seat(1); s < SeatCount; s++ {
		m.Players[s].Active = false
	}
	return m
}

func TestGameOverSoundness(t *testing.T) {
	m := boxedInMatch()
	if IsGameOver(m.Players, &m.Board) {
		t.Fatal("seat 0 still has one legal move")
	}
	m.Players[0].Active = false
	if !IsGameOver(m.Players, &m.Board) {
		t.Fatal("inactive seats are never re-examined")
	}
	m.Players[0].Active = true
	m.Board.Stamp(2, mono, Coord{X: 1, Y: 1})
	if !IsGameOver(m.Players, &m.Board) {
		t.Fatal("no active seat can move")
	}
}

func TestWinnersTies(t *testing.T) {
	players := []Player{{ID: 0, Score: 5}, {ID: 1, Score: 3}, {ID: 2, Score: 3}, {ID: 3, Score: 9}}
	if got := Winners(players); !reflect.DeepEqual(got, []Seat{1, 2}) {
		t.Fatalf("Winners() = %v", got)
	}
}

func TestApplyMove(t *testing.T) {
	m := playingMatch()
	next := ApplyMove(m, 0, "P1", mono, Coord{X: 0, Y: 0})

	if m.Board.HasTiles() || len(m.History) != 0 {
		t.Fatal("ApplyMove must not mutate its input")
	}
	if owner, ok := next.Board.At(0, 0); !ok || owner != 0 {
		t.Fatalf("corner owner = %v,%v", owner, ok)
	}
	p := next.Players[0]
	if !p.HasPlayed || len(p.Remaining) != 20 || p.Score != 88 {
		t.Fatalf("unexpected player after move: %+v", p)
	}
	if next.Current != 1 {
		t.Fatalf("current = %d, want 1", next.Current)
	}
	if len(next.History) != 1 || next.History[0].PieceID != "P1" {
		t.Fatalf("history = %+v", next.History)
	}
	if next.WinnerIDs != nil {
		t.Fatal("match should not be over")
	}
}

func TestApplyMoveSkipsStuckSeats(t *testing.T) {
	m := playingMatch()
	m.Players[1].Remaining = nil
	m.Players[2].Active = false
	next := ApplyMove(m, 0, "P1", mono, Coord{X: 0, Y: 0})
	if next.Current != 3 {
		t.Fatalf("current = %d, want 3", next.Current)
	}
}

func TestApplyMoveEndsMatch(t *testing.T) {
	m := boxedInMatch()
	next := ApplyMove(m, 0, "P1", mono, Coord{X: 1, Y: 1})
	if next.Current != 0 {
		t.Fatalf("current should stay on the mover when nobody can move, got %d", next.Current)
	}
	if !reflect.DeepEqual(next.WinnerIDs, []Seat{0}) {
		t.Fatalf("winners = %v, want [0]", next.WinnerIDs)
	}
}
