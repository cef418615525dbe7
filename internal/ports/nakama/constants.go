package nakama

const (
	// MatchNameBloktris is the authoritative match handler name registered with Nakama.
	MatchNameBloktris = "bloktris_match"
)

// RPC ids.
const (
	RpcCreateMatch   = "bloktris_create_match"
	RpcStart         = "bloktris_start"
	RpcHumanRoll     = "bloktris_human_roll"
	RpcBotRoll       = "bloktris_bot_roll"
	RpcPlace         = "bloktris_place"
	RpcPass          = "bloktris_pass"
	RpcMarkRollShown = "bloktris_mark_roll_shown"
	RpcHydrate       = "bloktris_hydrate"
	RpcState         = "bloktris_state"
	RpcIsLegal       = "bloktris_is_legal"
	RpcBotMove       = "bloktris_bot_move"
	RpcClear         = "bloktris_clear"
	RpcReplayTicket  = "bloktris_replay_ticket"
)

// Op codes for match messages.
const (
	// Client -> Server
	OpStart         int64 = 1
	OpHumanRoll     int64 = 2
	OpPlace         int64 = 3
	OpPass          int64 = 4
	OpMarkRollShown int64 = 5
	OpResume        int64 = 6

	// Server -> Client
	OpMatchState int64 = 101
	OpMatchEvent int64 = 102
	OpMatchError int64 = 103
)

// gRPC status codes used for runtime errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

const (
	labelKeyOwner = "owner"
	labelKeyState = "state"
	labelKeyMode  = "mode"
)
