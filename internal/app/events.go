package app

import "bloktris/internal/domain"

// EventKind identifies emitted match events for host dispatch.
type EventKind string

const (
	EventMatchStarted  EventKind = "match_started"
	EventRollRecorded  EventKind = "roll_recorded"
	EventOrderResolved EventKind = "order_resolved"
	EventPiecePlaced   EventKind = "piece_placed"
	EventSeatPassed    EventKind = "seat_passed"
	EventGameEnded     EventKind = "game_ended"
	EventStateHydrated EventKind = "state_hydrated"
)

// Event is an app event derived from an accepted transition.
type Event struct {
	Kind    EventKind
	Payload any
}

type MatchStartedPayload struct {
	MatchID    string
	Seed       string
	HumanCount int
}

type RollRecordedPayload struct {
	Seat  domain.Seat
	Value int
	Bot   bool
}

type OrderResolvedPayload struct {
	Rolls     []domain.ColorRoll
	TieBreaks map[domain.Seat]domain.TieBreak
}

type PiecePlacedPayload struct {
	Seat     domain.Seat
	PieceID  domain.PieceID
	At       domain.Coord
	NextSeat domain.Seat
}

type SeatPassedPayload struct {
	Seat     domain.Seat
	NextSeat domain.Seat
}

type GameEndedPayload struct {
	Winners []domain.Seat
	Scores  []int
}

type StateHydratedPayload struct {
	MatchID string
}

// deriveEvents describes the transition prev -> next caused by cmd.
func deriveEvents(prev, next *domain.Match, cmd domain.Command) []Event {
	var events []Event
	switch c := cmd.(type) {
	case domain.Start:
		events = append(events, Event{
			Kind: EventMatchStarted,
			Payload: MatchStartedPayload{
				MatchID:    next.Meta.MatchID,
				Seed:       next.Meta.RNGSeed,
				HumanCount: c.HumanCount,
			},
		})
	case domain.HumanRoll:
		roller := prev.Meta.RollQueue[0]
		events = append(events, Event{
			Kind: EventRollRecorded,
			Payload: RollRecordedPayload{
				Seat:  roller,
				Value: domain.SeededDie(domain.HumanRollKey(prev.Meta.RNGSeed, roller))(),
			},
		})
		events = appendResolved(events, next)
	case domain.BotRoll:
		events = append(events, Event{
			Kind: EventRollRecorded,
			Payload: RollRecordedPayload{
				Seat:  c.Seat,
				Value: domain.SeededDie(domain.BotRollKey(prev.Meta.RNGSeed, c.Seat))(),
				Bot:   true,
			},
		})
		events = appendResolved(events, next)
	case domain.Place:
		events = append(events, Event{
			Kind:    EventPiecePlaced,
			Payload: PiecePlacedPayload{Seat: c.Seat, PieceID: c.PieceID, At: c.At, NextSeat: next.Current},
		})
	case domain.Pass:
		events = append(events, Event{
			Kind:    EventSeatPassed,
			Payload: SeatPassedPayload{Seat: c.Seat, NextSeat: next.Current},
		})
	case domain.Hydrate:
		return []Event{{Kind: EventStateHydrated, Payload: StateHydratedPayload{MatchID: next.Meta.MatchID}}}
	}

	if !prev.Ended() && next.Ended() {
		scores := make([]int, len(next.Players))
		for i, p := range next.Players {
			scores[i] = p.Score
		}
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Winners: append([]domain.Seat{}, next.WinnerIDs...), Scores: scores},
		})
	}
	return events
}

func appendResolved(events []Event, next *domain.Match) []Event {
	if next.AwaitingRolls() {
		return events
	}
	return append(events, Event{
		Kind: EventOrderResolved,
		Payload: OrderResolvedPayload{
			Rolls:     append([]domain.ColorRoll{}, next.Meta.LastRoll...),
			TieBreaks: next.Meta.TieBreaks,
		},
	})
}
