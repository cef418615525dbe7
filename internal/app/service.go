package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bloktris/internal/bot"
	"bloktris/internal/codec"
	"bloktris/internal/domain"
	"bloktris/internal/ports"
)

var (
	ErrNoMatch          = errors.New("no saved match")
	ErrRejectedSnapshot = errors.New("saved snapshot rejected")
	ErrCommandRejected  = errors.New("command rejected")
	ErrNotBotTurn       = errors.New("no automated seat to act")
	ErrBadTicket        = errors.New("invalid replay ticket")
	ErrStaleMatch       = errors.New("match changed since it was read")
)

// Service contains the match use-cases: dispatching commands, persisting
// snapshots and driving automated seats. Live matches are cached per user;
// the store is only read to resume after a restart.
type Service struct {
	store  ports.MatchStore
	logger zerolog.Logger

	// opMu serializes read-reduce-write of matches.
	opMu     sync.Mutex
	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[string]*domain.Match
}

// NewService constructs a Service. store may be nil to run without
// persistence; rng may be nil to use a time-seeded default.
func NewService(store ports.MatchStore, logger *zerolog.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := log.With().Str("module", "app").Logger()
	if logger != nil {
		l = logger.With().Str("module", "app").Logger()
	}
	return &Service{store: store, logger: l, rng: rng, sessions: make(map[string]*domain.Match)}
}

// Apply reduces cmd against current and persists the result. A command the
// state machine ignores returns current unchanged with ErrCommandRejected.
// When the user's live match is not current, the live match is returned
// with ErrStaleMatch and nothing is applied.
func (s *Service) Apply(ctx context.Context, userID string, current *domain.Match, cmd domain.Command) (*domain.Match, []Event, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if live, ok := s.Session(userID); ok && live != current {
		s.logger.Debug().Str("user", userID).Str("command", string(cmd.Kind())).Msg("stale match")
		return live, nil, fmt.Errorf("%s: %w", cmd.Kind(), ErrStaleMatch)
	}
	return s.apply(ctx, userID, current, cmd)
}

// Execute applies cmd to the user's live match and saves the result.
// Start and Hydrate do not need an existing match.
func (s *Service) Execute(ctx context.Context, userID string, cmd domain.Command) (*domain.Match, []Event, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, err := s.Current(ctx, userID)
	if err != nil {
		switch cmd.(type) {
		case domain.Start, domain.Hydrate:
			current = domain.NewMatch()
		default:
			return nil, nil, err
		}
	}
	return s.apply(ctx, userID, current, cmd)
}

// apply must be called with opMu held.
func (s *Service) apply(ctx context.Context, userID string, current *domain.Match, cmd domain.Command) (*domain.Match, []Event, error) {
	if current == nil {
		current = domain.NewMatch()
	}
	next := domain.Reduce(current, cmd)
	if next == current {
		s.logger.Debug().Str("user", userID).Str("command", string(cmd.Kind())).Msg("command ignored")
		return current, nil, fmt.Errorf("%s: %w", cmd.Kind(), ErrCommandRejected)
	}

	events := deriveEvents(current, next, cmd)
	if userID != "" {
		s.mu.Lock()
		s.sessions[userID] = next
		s.mu.Unlock()
	}
	s.save(ctx, userID, next)
	for _, ev := range events {
		s.logger.Info().Str("user", userID).Str("match", next.Meta.MatchID).Str("event", string(ev.Kind)).Msg("match event")
	}
	return next, events, nil
}

// Session returns the cached live match without touching the store.
func (s *Service) Session(userID string) (*domain.Match, bool) {
	if userID == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sessions[userID]
	return m, ok
}

// Current returns the user's live match, resuming it from the store when
// it is not cached.
func (s *Service) Current(ctx context.Context, userID string) (*domain.Match, error) {
	if m, ok := s.Session(userID); ok {
		return m, nil
	}
	return s.Resume(ctx, userID)
}

// Resume reloads the user's match from the store, replacing any cached copy.
func (s *Service) Resume(ctx context.Context, userID string) (*domain.Match, error) {
	m, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[userID] = m
	s.mu.Unlock()
	return m, nil
}

// Load reads and repairs the user's saved match. Storage failures are
// logged and reported as ErrNoMatch.
func (s *Service) Load(ctx context.Context, userID string) (*domain.Match, error) {
	if s.store == nil {
		return nil, ErrNoMatch
	}
	data, err := s.store.Load(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("load failed")
		return nil, ErrNoMatch
	}
	if len(data) == 0 {
		return nil, ErrNoMatch
	}
	res, err := codec.Decode(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("saved snapshot unreadable")
		return nil, fmt.Errorf("%w: %v", ErrRejectedSnapshot, err)
	}
	if !res.Valid() {
		s.logger.Warn().Str("user", userID).Str("reason", res.Reason).Msg("saved snapshot rejected")
		return nil, fmt.Errorf("%w: %s", ErrRejectedSnapshot, res.Reason)
	}
	return res.Match, nil
}

// Clear drops the user's live match and save.
func (s *Service) Clear(ctx context.Context, userID string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("clear failed")
	}
}

// HasSaved reports whether the user has a save. Storage failures read as false.
func (s *Service) HasSaved(ctx context.Context, userID string) bool {
	if s.store == nil {
		return false
	}
	ok, err := s.store.HasSaved(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("saved lookup failed")
		return false
	}
	return ok
}

func (s *Service) save(ctx context.Context, userID string, m *domain.Match) {
	if s.store == nil || userID == "" {
		return
	}
	data, err := codec.Encode(m)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("encode failed")
		return
	}
	if err := s.store.Save(ctx, userID, data); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("save failed")
	}
}

// NextBotCommand returns what the automated side should do next: roll for
// the head of the bot queue during the roll showcase, or move for the
// current seat once play is live.
func (s *Service) NextBotCommand(m *domain.Match) (domain.Command, error) {
	if !BotPending(m) {
		return nil, ErrNotBotTurn
	}
	if len(m.Meta.BotQueue) > 0 {
		return domain.BotRoll{Seat: m.Meta.BotQueue[0]}, nil
	}

	agent, err := bot.NewAgent(m.Current)
	if err != nil {
		return nil, err
	}
	cmd, err := agent.Play(m)
	if err != nil {
		s.logger.Warn().Err(err).Str("bot", agent.Name).Msg("bot search failed, passing")
	}
	return cmd, nil
}

// BotPending reports whether an automated seat is due to act on m.
func BotPending(m *domain.Match) bool {
	if !m.Started() || m.Ended() {
		return false
	}
	if !m.Meta.RollPending && len(m.Meta.BotQueue) > 0 {
		return true
	}
	return !m.AwaitingRolls() && m.Meta.ShowedRollOnce && m.Players[m.Current].IsBot
}

// BotTurn applies one automated step to current.
func (s *Service) BotTurn(ctx context.Context, userID string, current *domain.Match) (*domain.Match, []Event, error) {
	cmd, err := s.NextBotCommand(current)
	if err != nil {
		return current, nil, err
	}
	return s.Apply(ctx, userID, current, cmd)
}

// BotDelay picks the pause before an automated step, uniform in [minMs, maxMs].
func (s *Service) BotDelay(minMs, maxMs int) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	s.mu.Lock()
	ms := minMs + s.rng.Intn(maxMs-minMs+1)
	s.mu.Unlock()
	return time.Duration(ms) * time.Millisecond
}
