package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"bloktris/internal/app"
	"bloktris/internal/config"
	"bloktris/internal/domain"
)

// MatchState holds the authoritative runtime state of a solo match. One
// human owns the match; automated seats are paced by the loop.
type MatchState struct {
	OwnerID       string           // user allowed to join and send commands
	Presence      runtime.Presence // owner's presence while connected
	Match         *domain.Match    // current snapshot
	Phase         string           // last phase written to the label
	Tick          int64
	TickRate      int
	BotMinDelayMs int
	BotMaxDelayMs int
	BotWaitUntil  int64 // tick at which the pending bot step fires, 0 when idle
}

// ticksFor converts a delay in milliseconds to whole ticks, rounding up.
func (ms *MatchState) ticksFor(delayMs int64) int64 {
	if ms.TickRate <= 0 {
		return 1
	}
	ticks := (delayMs*int64(ms.TickRate) + 999) / 1000
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

type matchHandler struct {
	app  *app.Service
	cmds *rpcHandlers
	cfg  config.GameConfig
}

func newMatchHandler(svc *app.Service, tickets *app.TicketService, cfg config.GameConfig) *matchHandler {
	return &matchHandler{
		app:  svc,
		cmds: &rpcHandlers{app: svc, tickets: tickets},
		cfg:  cfg,
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	owner, _ := params["owner"].(string)
	state := &MatchState{
		OwnerID:       owner,
		Match:         domain.NewMatch(),
		TickRate:      mh.cfg.TickRate,
		BotMinDelayMs: mh.cfg.BotMinDelayMs,
		BotMaxDelayMs: mh.cfg.BotMaxDelayMs,
	}
	state.Phase = matchPhase(state.Match)

	label, err := encodeLabel(owner, state.Match)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Debug("MatchInit: Solo match for owner %s.", owner)
	return state, state.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if matchState.OwnerID != "" && matchState.OwnerID != presence.GetUserId() {
		return state, false, "Match is private"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
		}
		if p.GetUserId() != matchState.OwnerID {
			continue
		}
		matchState.Presence = p

		if m, err := mh.app.Current(ctx, matchState.OwnerID); err == nil {
			matchState.Match = m
			logger.Info("MatchJoin: Resumed match %s for %s.", m.Meta.MatchID, matchState.OwnerID)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger, true)
	mh.broadcastState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave terminates the match once its owner leaves; the save survives.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	for _, p := range presences {
		if p.GetUserId() == matchState.OwnerID {
			logger.Info("MatchLeave: Owner %s left, terminating.", matchState.OwnerID)
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick
	mh.syncSession(matchState, dispatcher, logger)

	for _, msg := range messages {
		if msg.GetUserId() != matchState.OwnerID {
			logger.Warn("MatchLoop: Ignoring message from non-owner %s", msg.GetUserId())
			continue
		}
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	mh.processBots(ctx, matchState, dispatcher, logger)
	return matchState
}

// syncSession adopts the owner's live match when it was changed outside
// this loop, for example by an RPC or a clear.
func (mh *matchHandler) syncSession(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	live, ok := mh.app.Session(state.OwnerID)
	switch {
	case ok && live != state.Match:
		state.Match = live
	case !ok && state.OwnerID != "" && state.Match.Started():
		state.Match = domain.NewMatch()
	default:
		return
	}
	state.BotWaitUntil = 0
	logger.Debug("syncSession: Adopted live match for %s", state.OwnerID)
	mh.updateLabel(state, dispatcher, logger, false)
	mh.broadcastState(state, dispatcher, logger)
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	payload := string(msg.GetData())
	var (
		cmd domain.Command
		err error
	)
	switch msg.GetOpCode() {
	case OpStart:
		cmd, err = mh.cmds.decodeStart(payload)
	case OpHumanRoll:
		cmd, err = decodeHumanRoll(payload)
	case OpPlace:
		cmd, err = decodePlace(payload)
	case OpPass:
		cmd, err = decodePass(payload)
	case OpMarkRollShown:
		cmd, err = decodeMarkRollShown(payload)
	case OpResume:
		m, err := mh.app.Resume(ctx, state.OwnerID)
		if err != nil {
			mh.sendError(dispatcher, logger, codeNotFound, err.Error())
			return
		}
		state.Match = m
		state.BotWaitUntil = 0
		mh.updateLabel(state, dispatcher, logger, false)
		mh.broadcastState(state, dispatcher, logger)
		return
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}
	if err != nil {
		mh.sendError(dispatcher, logger, codeInvalidArgument, err.Error())
		return
	}
	mh.apply(ctx, state, dispatcher, logger, cmd)
}

func (mh *matchHandler) apply(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, cmd domain.Command) {
	next, events, err := mh.app.Apply(ctx, state.OwnerID, state.Match, cmd)
	if errors.Is(err, app.ErrStaleMatch) {
		logger.Warn("apply: %s on a stale match for %s, resyncing", cmd.Kind(), state.OwnerID)
		state.Match = next
		state.BotWaitUntil = 0
		mh.sendError(dispatcher, logger, codeFailedPrecondition, err.Error())
		mh.updateLabel(state, dispatcher, logger, false)
		mh.broadcastState(state, dispatcher, logger)
		return
	}
	if err != nil {
		logger.Debug("apply: %s rejected for %s: %v", cmd.Kind(), state.OwnerID, err)
		mh.sendError(dispatcher, logger, codeInvalidArgument, err.Error())
		return
	}
	state.Match = next
	for _, ev := range events {
		mh.broadcastEvent(dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger, false)
	mh.broadcastState(state, dispatcher, logger)
}

// processBots paces automated seats: a step is scheduled after a random
// delay and fires once the tick reaches it.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !app.BotPending(state.Match) {
		state.BotWaitUntil = 0
		return
	}
	if state.BotWaitUntil == 0 {
		delay := mh.app.BotDelay(state.BotMinDelayMs, state.BotMaxDelayMs)
		state.BotWaitUntil = state.Tick + state.ticksFor(delay.Milliseconds())
		logger.Debug("processBots: Bot step at tick %d (current %d)", state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	cmd, err := mh.app.NextBotCommand(state.Match)
	if err != nil {
		logger.Error("processBots: Failed to pick bot command: %v", err)
		return
	}
	mh.apply(ctx, state, dispatcher, logger, cmd)
}

func (mh *matchHandler) broadcastState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := encodeResponse(newStateResponse(state.Match, nil))
	if err != nil {
		logger.Error("broadcastState: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, []byte(data), nil, nil, true); err != nil {
		logger.Error("broadcastState: Failed to send: %v", err)
	}
}

func (mh *matchHandler) broadcastEvent(dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchEvent, data, nil, nil, true); err != nil {
		logger.Error("Failed to send event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) sendError(dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	st, err := structpb.NewStruct(map[string]any{"code": code, "message": message})
	if err != nil {
		logger.Error("Failed to build error event: %v", err)
		return
	}
	data, err := protojson.Marshal(st)
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchError, data, nil, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, force bool) {
	phase := matchPhase(state.Match)
	if !force && phase == state.Phase {
		return
	}
	state.Phase = phase
	label, err := encodeLabel(state.OwnerID, state.Match)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	return state, fmt.Sprintf("%s:%s", matchState.OwnerID, matchState.Phase)
}
