package nakama

import (
	"context"
	"database/sql"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"bloktris/internal/app"
	"bloktris/internal/bot"
	"bloktris/internal/codec"
	"bloktris/internal/domain"
)

type rpcFunc = func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// rpcHandlers binds the RPCs to the services they drive.
type rpcHandlers struct {
	app     *app.Service
	tickets *app.TicketService
}

// RegisterRPCs registers every bloktris RPC with the initializer.
func RegisterRPCs(initializer runtime.Initializer, svc *app.Service, tickets *app.TicketService) error {
	h := &rpcHandlers{app: svc, tickets: tickets}
	rpcs := map[string]rpcFunc{
		RpcCreateMatch:   RpcCreateSoloMatch,
		RpcStart:         h.command(h.decodeStart),
		RpcHumanRoll:     h.command(decodeHumanRoll),
		RpcBotRoll:       h.command(decodeBotRoll),
		RpcPlace:         h.command(decodePlace),
		RpcPass:          h.command(decodePass),
		RpcMarkRollShown: h.command(decodeMarkRollShown),
		RpcHydrate:       h.command(decodeHydrate),
		RpcState:         h.state,
		RpcIsLegal:       h.isLegal,
		RpcBotMove:       h.botMove,
		RpcClear:         h.clear,
		RpcReplayTicket:  h.replayTicket,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func userIDFrom(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}
	return userID, nil
}

// toRuntimeError maps app errors onto gRPC status codes.
func toRuntimeError(err error) error {
	switch {
	case errors.Is(err, app.ErrNoMatch), errors.Is(err, app.ErrRejectedSnapshot):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, app.ErrStaleMatch):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	case errors.Is(err, app.ErrCommandRejected), errors.Is(err, app.ErrBadTicket), errors.Is(err, app.ErrNotBotTurn):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	default:
		return runtime.NewError(err.Error(), codeInternal)
	}
}

type commandDecoder func(payload string) (domain.Command, error)

func (h *rpcHandlers) decodeStart(payload string) (domain.Command, error) {
	var req startRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	if req.Ticket != "" {
		ticket, err := h.tickets.Parse(req.Ticket)
		if err != nil {
			return nil, err
		}
		return ticket.Start(), nil
	}
	if req.Humans == 0 {
		req.Humans = app.SoloHumans
	}
	return domain.Start{HumanCount: req.Humans, Seed: req.Seed, MatchID: req.MatchID}, nil
}

func decodeHumanRoll(string) (domain.Command, error) { return domain.HumanRoll{}, nil }

func decodeMarkRollShown(string) (domain.Command, error) { return domain.MarkRollShown{}, nil }

func decodeBotRoll(payload string) (domain.Command, error) {
	var req seatRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	return domain.BotRoll{Seat: domain.Seat(req.Seat)}, nil
}

func decodePlace(payload string) (domain.Command, error) {
	var req placeRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	return req.command(), nil
}

func decodePass(payload string) (domain.Command, error) {
	var req seatRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	return domain.Pass{Seat: domain.Seat(req.Seat)}, nil
}

func decodeHydrate(payload string) (domain.Command, error) {
	raw, err := codec.Raw([]byte(payload))
	if err != nil {
		return nil, err
	}
	return domain.Hydrate{Raw: raw}, nil
}

// command wraps a decoder into an RPC that applies the command to the
// caller's match and returns the new state with its events.
func (h *rpcHandlers) command(decode commandDecoder) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, err := userIDFrom(ctx)
		if err != nil {
			return "", err
		}
		cmd, err := decode(payload)
		if err != nil {
			logger.Warn("RPC [User:%s]: bad payload: %v", userID, err)
			return "", runtime.NewError(err.Error(), codeInvalidArgument)
		}

		m, events, err := h.app.Execute(ctx, userID, cmd)
		if err != nil {
			logger.Debug("RPC %s [User:%s]: %v", cmd.Kind(), userID, err)
			return "", toRuntimeError(err)
		}
		resp := newStateResponse(m, events)
		resp.HasSaved = true
		return encodeResponse(resp)
	}
}

func (h *rpcHandlers) state(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	m, err := h.app.Current(ctx, userID)
	if err != nil && !errors.Is(err, app.ErrNoMatch) {
		logger.Warn("RpcState [User:%s]: %v", userID, err)
	}
	resp := newStateResponse(m, nil)
	resp.HasSaved = h.app.HasSaved(ctx, userID)
	return encodeResponse(resp)
}

func (h *rpcHandlers) isLegal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	var req placeRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	m, err := h.app.Current(ctx, userID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	cmd := req.command()
	legal := cmd.Seat.Valid() && int(cmd.Seat) < len(m.Players) &&
		domain.IsOrientationOf(cmd.PieceID, cmd.Shape) &&
		domain.IsLegalMove(m, cmd.Seat, cmd.Shape, cmd.At)
	return encodeResponse(legalResponse{Legal: legal})
}

func (h *rpcHandlers) botMove(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	m, err := h.app.Current(ctx, userID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	req := seatRequest{Seat: int(m.Current)}
	if err := decodePayload(payload, &req); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	brain, err := bot.NewBrain(bot.BotLevelHeuristic)
	if err != nil {
		return "", toRuntimeError(err)
	}
	decision, err := brain.CalculateMove(m, domain.Seat(req.Seat))
	if err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	return encodeResponse(botMoveFrom(decision))
}

func (h *rpcHandlers) clear(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	h.app.Clear(ctx, userID)
	return encodeResponse(stateResponse{})
}

func (h *rpcHandlers) replayTicket(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	m, err := h.app.Current(ctx, userID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	token, err := h.tickets.Issue(app.TicketFor(m))
	if err != nil {
		logger.Error("RpcReplayTicket [User:%s]: %v", userID, err)
		return "", runtime.NewError(err.Error(), codeInternal)
	}
	return encodeResponse(ticketResponse{Ticket: token})
}

// RpcCreateSoloMatch creates an authoritative solo match for the caller and
// returns its id.
func RpcCreateSoloMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return "", err
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameBloktris, map[string]interface{}{"owner": userID})
	if err != nil {
		logger.Error("RpcCreateSoloMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create match", codeInternal)
	}
	logger.Info("RpcCreateSoloMatch [User:%s]: Created match %s", userID, matchID)
	return matchID, nil
}
