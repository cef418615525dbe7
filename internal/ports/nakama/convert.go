package nakama

import (
	"fmt"

	"github.com/bytedance/sonic"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"bloktris/internal/app"
	"bloktris/internal/bot"
	"bloktris/internal/codec"
	"bloktris/internal/domain"
)

type startRequest struct {
	Humans  int    `json:"humans"`
	Seed    string `json:"seed"`
	MatchID string `json:"match_id"`
	Ticket  string `json:"ticket"`
}

type seatRequest struct {
	Seat int `json:"seat"`
}

type placeRequest struct {
	Seat    int     `json:"seat"`
	PieceID string  `json:"piece_id"`
	Shape   [][]int `json:"shape"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
}

func (r placeRequest) command() domain.Place {
	return domain.Place{
		Seat:    domain.Seat(r.Seat),
		PieceID: domain.PieceID(r.PieceID),
		Shape:   domain.Shape(r.Shape),
		At:      domain.Coord{X: r.X, Y: r.Y},
	}
}

type stateResponse struct {
	Match    *codec.Snapshot  `json:"match"`
	Events   []map[string]any `json:"events,omitempty"`
	HasSaved bool             `json:"has_saved"`
}

type legalResponse struct {
	Legal bool `json:"legal"`
}

type botMoveResponse struct {
	Pass    bool    `json:"pass"`
	PieceID string  `json:"piece_id,omitempty"`
	Shape   [][]int `json:"shape,omitempty"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Score   int     `json:"score"`
}

type ticketResponse struct {
	Ticket string `json:"ticket"`
}

func decodePayload(payload string, out any) error {
	if payload == "" {
		return nil
	}
	if err := sonic.UnmarshalString(payload, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func encodeResponse(v any) (string, error) {
	out, err := sonic.MarshalString(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}

func newStateResponse(m *domain.Match, events []app.Event) stateResponse {
	resp := stateResponse{}
	if m != nil && m.Started() {
		snap := codec.FromMatch(m)
		resp.Match = &snap
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventFields(ev))
	}
	return resp
}

func seatList(seats []domain.Seat) []any {
	out := make([]any, len(seats))
	for i, s := range seats {
		out[i] = int(s)
	}
	return out
}

// eventFields flattens an app event into values structpb accepts.
func eventFields(ev app.Event) map[string]any {
	fields := map[string]any{"kind": string(ev.Kind)}
	switch p := ev.Payload.(type) {
	case app.MatchStartedPayload:
		fields["match_id"] = p.MatchID
		fields["seed"] = p.Seed
		fields["humans"] = p.HumanCount
	case app.RollRecordedPayload:
		fields["seat"] = int(p.Seat)
		fields["value"] = p.Value
		fields["bot"] = p.Bot
	case app.OrderResolvedPayload:
		rolls := make([]any, len(p.Rolls))
		for i, r := range p.Rolls {
			rolls[i] = map[string]any{"color": string(r.Color), "value": r.Value}
		}
		fields["rolls"] = rolls
		if len(p.TieBreaks) > 0 {
			tbs := make(map[string]any, len(p.TieBreaks))
			for seat, tb := range p.TieBreaks {
				tbs[fmt.Sprint(int(seat))] = map[string]any{"from": tb.From, "to": tb.To}
			}
			fields["tie_breaks"] = tbs
		}
	case app.PiecePlacedPayload:
		fields["seat"] = int(p.Seat)
		fields["piece_id"] = string(p.PieceID)
		fields["x"] = p.At.X
		fields["y"] = p.At.Y
		fields["next_seat"] = int(p.NextSeat)
	case app.SeatPassedPayload:
		fields["seat"] = int(p.Seat)
		fields["next_seat"] = int(p.NextSeat)
	case app.GameEndedPayload:
		fields["winners"] = seatList(p.Winners)
		scores := make([]any, len(p.Scores))
		for i, s := range p.Scores {
			scores[i] = s
		}
		fields["scores"] = scores
	case app.StateHydratedPayload:
		fields["match_id"] = p.MatchID
	}
	return fields
}

// encodeEvent renders an event as protojson for socket delivery.
func encodeEvent(ev app.Event) ([]byte, error) {
	st, err := structpb.NewStruct(eventFields(ev))
	if err != nil {
		return nil, fmt.Errorf("failed to build event %s: %w", ev.Kind, err)
	}
	return protojson.Marshal(st)
}

// matchPhase names the coarse phase shown in the match label.
func matchPhase(m *domain.Match) string {
	switch {
	case !m.Started():
		return "idle"
	case m.Ended():
		return "ended"
	case m.AwaitingRolls():
		return "rolling"
	default:
		return "playing"
	}
}

func encodeLabel(owner string, m *domain.Match) (string, error) {
	st, err := structpb.NewStruct(map[string]any{
		labelKeyOwner: owner,
		labelKeyState: matchPhase(m),
		labelKeyMode:  "solo",
	})
	if err != nil {
		return "", err
	}
	out, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func botMoveFrom(d bot.Decision) botMoveResponse {
	if d.Pass || d.Placement == nil {
		return botMoveResponse{Pass: true}
	}
	return botMoveResponse{
		PieceID: string(d.Placement.PieceID),
		Shape:   d.Placement.Shape,
		X:       d.Placement.At.X,
		Y:       d.Placement.At.Y,
		Score:   d.Placement.Score,
	}
}
