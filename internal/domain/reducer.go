package domain

import "time"

// CommandKind names a state machine command.
type CommandKind string

const (
	KindStart         CommandKind = "start"
	KindHumanRoll     CommandKind = "human_roll"
	KindBotRoll       CommandKind = "bot_roll"
	KindPlace         CommandKind = "place"
	KindPass          CommandKind = "pass"
	KindMarkRollShown CommandKind = "mark_roll_shown"
	KindHydrate       CommandKind = "hydrate"
)

// Command is an input to Reduce.
type Command interface {
	Kind() CommandKind
}

// Start begins a new match. HumanCount must be 1 or 4. Seed defaults to the
// match id, and MatchID defaults to a freshly generated one.
type Start struct {
	HumanCount int
	Seed       string
	MatchID    string
}

// HumanRoll rolls for the next human seat in the roll queue.
type HumanRoll struct{}

// BotRoll rolls for the automated seat at the head of the bot queue.
type BotRoll struct {
	Seat Seat
}

// Place puts a piece on the board for Seat.
type Place struct {
	Seat    Seat
	PieceID PieceID
	Shape   Shape
	At      Coord
}

// Pass retires Seat for the rest of the match.
type Pass struct {
	Seat Seat
}

// MarkRollShown records that the turn-order reveal has been dismissed.
type MarkRollShown struct{}

// Hydrate replaces the state with a repaired copy of untrusted input.
type Hydrate struct {
	Raw any
}

func (Start) Kind() CommandKind         { return KindStart }
func (HumanRoll) Kind() CommandKind     { return KindHumanRoll }
func (BotRoll) Kind() CommandKind       { return KindBotRoll }
func (Place) Kind() CommandKind         { return KindPlace }
func (Pass) Kind() CommandKind          { return KindPass }
func (MarkRollShown) Kind() CommandKind { return KindMarkRollShown }
func (Hydrate) Kind() CommandKind       { return KindHydrate }

// Reduce applies cmd to m and returns the resulting snapshot. m is never
// modified. A rejected command returns m itself, so callers can detect a
// no-op by pointer comparison.
func Reduce(m *Match, cmd Command) *Match {
	if m == nil {
		m = NewMatch()
	}
	switch c := cmd.(type) {
	case Start:
		return reduceStart(m, c)
	case HumanRoll:
		return reduceHumanRoll(m)
	case BotRoll:
		return reduceBotRoll(m, c)
	case Place:
		return reducePlace(m, c)
	case Pass:
		return reducePass(m, c)
	case MarkRollShown:
		if m.Meta.ShowedRollOnce {
			return m
		}
		next := m.Clone()
		next.Meta.ShowedRollOnce = true
		return next
	case Hydrate:
		res := HydrateRaw(c.Raw)
		if !res.Valid() {
			return m
		}
		return res.Match
	}
	return m
}

// BuildPlayers returns four fresh seats. With one human, seat 0 is human
// and the others are automated.
func BuildPlayers(humanCount int) []Player {
	players := make([]Player, SeatCount)
	for i := range players {
		remaining := AllPieceIDs()
		players[i] = Player{
			ID:        Seat(i),
			Color:     BaseColors[i],
			Remaining: remaining,
			IsBot:     humanCount == 1 && i != 0,
			Score:     ScoreForRemaining(remaining),
			Active:    true,
		}
	}
	return players
}

func reduceStart(m *Match, c Start) *Match {
	if c.HumanCount != 1 && c.HumanCount != SeatCount {
		return m
	}
	matchID := c.MatchID
	if matchID == "" {
		matchID = NewMatchID(time.Now())
	}
	seed := c.Seed
	if seed == "" {
		seed = matchID
	}

	players := BuildPlayers(c.HumanCount)
	rollQueue := []Seat{}
	rolls := make([]Roll, 0, SeatCount)
	for _, p := range players {
		if !p.IsBot {
			rollQueue = append(rollQueue, p.ID)
		}
		rolls = append(rolls, Roll{ID: p.ID})
	}

	return &Match{
		Players: players,
		Current: 0,
		History: []PlacedPiece{},
		Meta: Meta{
			MatchID:     matchID,
			RNGSeed:     seed,
			RollPending: true,
			RollQueue:   rollQueue,
			Rolls:       rolls,
			BotQueue:    []Seat{},
		},
	}
}

func setRoll(rolls []Roll, s Seat, v int) []Roll {
	for i := range rolls {
		if rolls[i].ID == s {
			rolls[i].Value = &v
			return rolls
		}
	}
	return append(rolls, Roll{ID: s, Value: &v})
}

func reduceHumanRoll(m *Match) *Match {
	if !m.Started() || !m.Meta.RollPending || len(m.Meta.RollQueue) == 0 {
		return m
	}
	next := m.Clone()
	roller := next.Meta.RollQueue[0]
	value := SeededDie(HumanRollKey(next.Meta.RNGSeed, roller))()
	next.Meta.Rolls = setRoll(next.Meta.Rolls, roller, value)
	next.Meta.RollQueue = next.Meta.RollQueue[1:]
	if len(next.Meta.RollQueue) > 0 {
		return next
	}

	next.Meta.RollPending = false
	next.Meta.BotQueue = []Seat{}
	for _, p := range next.Players {
		if p.IsBot {
			next.Meta.BotQueue = append(next.Meta.BotQueue, p.ID)
		}
	}
	if len(next.Meta.BotQueue) == 0 {
		return resolveOrder(next)
	}
	return next
}

func reduceBotRoll(m *Match, c BotRoll) *Match {
	if !m.Started() || len(m.Meta.BotQueue) == 0 || m.Meta.BotQueue[0] != c.Seat {
		return m
	}
	next := m.Clone()
	value := SeededDie(BotRollKey(next.Meta.RNGSeed, c.Seat))()
	next.Meta.Rolls = setRoll(next.Meta.Rolls, c.Seat, value)
	next.Meta.BotQueue = next.Meta.BotQueue[1:]
	if len(next.Meta.BotQueue) > 0 {
		return next
	}
	return resolveOrder(next)
}

// resolveOrder finalizes seating once every seat has a die value. It works
// on a snapshot the caller already owns.
func resolveOrder(next *Match) *Match {
	seed := next.Meta.RNGSeed
	rolls := make([]SeatRoll, 0, SeatCount)
	for _, p := range next.Players {
		var value int
		found := false
		for _, r := range next.Meta.Rolls {
			if r.ID == p.ID && r.Value != nil {
				value, found = *r.Value, true
				break
			}
		}
		if !found {
			key := HumanRollKey(seed, p.ID)
			if p.IsBot {
				key = BotRollKey(seed, p.ID)
			}
			value = SeededDie(key)()
		}
		rolls = append(rolls, SeatRoll{ID: p.ID, Value: value})
	}

	order := ResolveTurnOrder(seed, rolls)
	next.Players = RemapSeats(next.Players, order.Order())
	recomputeScores(next.Players)
	next.Board = Board{}
	next.History = []PlacedPiece{}
	next.WinnerIDs = nil
	next.Current = 0

	next.Meta.Rolls = make([]Roll, len(order.Rolls))
	next.Meta.LastRoll = make([]ColorRoll, len(order.Rolls))
	for i, r := range order.Rolls {
		v := r.Value
		next.Meta.Rolls[i] = Roll{ID: r.ID, Value: &v}
		next.Meta.LastRoll[i] = ColorRoll{Color: BaseColors[i], Value: r.Value}
	}
	next.Meta.TieBreaks = order.TieBreaks
	next.Meta.RollQueue = []Seat{}
	next.Meta.BotQueue = []Seat{}
	next.Meta.RollPending = false
	next.Meta.ShowedRollOnce = false
	return next
}

func hasPiece(remaining []PieceID, id PieceID) bool {
	for _, r := range remaining {
		if r == id {
			return true
		}
	}
	return false
}

func reducePlace(m *Match, c Place) *Match {
	if !m.Started() || m.Ended() || m.AwaitingRolls() {
		return m
	}
	if !c.Seat.Valid() || c.Seat != m.Current || !m.Players[c.Seat].Active {
		return m
	}
	if !hasPiece(m.Players[c.Seat].Remaining, c.PieceID) || !IsOrientationOf(c.PieceID, c.Shape) {
		return m
	}
	if !IsLegalMove(m, c.Seat, c.Shape, c.At) {
		return m
	}

	next := ApplyMove(m, c.Seat, c.PieceID, c.Shape, c.At)
	for i := range next.Players {
		p := &next.Players[i]
		p.Active = p.Active && HasAnyLegalMove(next.Players, p.ID, &next.Board)
	}
	recomputeScores(next.Players)
	if next.WinnerIDs == nil && IsGameOver(next.Players, &next.Board) {
		next.WinnerIDs = Winners(next.Players)
	}
	return next
}

// reducePass retires the current seat. Passing out of turn or during the
// roll phase is a no-op.
func reducePass(m *Match, c Pass) *Match {
	if !m.Started() || m.Ended() || m.AwaitingRolls() {
		return m
	}
	if !c.Seat.Valid() || c.Seat != m.Current {
		return m
	}
	next := m.Clone()
	next.Players[c.Seat].Active = false
	recomputeScores(next.Players)
	next.Current = Seat((int(next.Current) + 1) % SeatCount)
	if IsGameOver(next.Players, &next.Board) {
		next.WinnerIDs = Winners(next.Players)
	} else {
		next.WinnerIDs = nil
	}
	return next
}
