package app

import (
	"context"
	"fmt"

	"bloktris/internal/bot"
	"bloktris/internal/domain"
)

// maxSelfPlaySteps bounds a self-play run; a full game needs far fewer.
const maxSelfPlaySteps = 512

// SelfPlay runs a seeded solo match to completion with the human seat also
// played by the heuristic. onEvent, if set, observes every event in order.
func (s *Service) SelfPlay(ctx context.Context, seed string, onEvent func(*domain.Match, Event)) (*domain.Match, error) {
	m, events, err := s.Apply(ctx, "", nil, domain.Start{HumanCount: SoloHumans, Seed: seed, MatchID: seedMatchID(seed)})
	if err != nil {
		return nil, err
	}
	emit := func(m *domain.Match, evs []Event) {
		if onEvent == nil {
			return
		}
		for _, ev := range evs {
			onEvent(m, ev)
		}
	}
	emit(m, events)

	for step := 0; !m.Ended(); step++ {
		if step >= maxSelfPlaySteps {
			return m, fmt.Errorf("self-play did not finish in %d steps", maxSelfPlaySteps)
		}
		if err := ctx.Err(); err != nil {
			return m, err
		}

		var cmd domain.Command
		switch {
		case m.Meta.RollPending:
			cmd = domain.HumanRoll{}
		case BotPending(m):
			cmd, err = s.NextBotCommand(m)
		case !m.Meta.ShowedRollOnce:
			cmd = domain.MarkRollShown{}
		default:
			var agent *bot.Agent
			agent, err = bot.NewAgent(m.Current)
			if err == nil {
				cmd, err = agent.Play(m)
			}
		}
		if err != nil {
			return m, err
		}

		m, events, err = s.Apply(ctx, "", m, cmd)
		if err != nil {
			return m, err
		}
		emit(m, events)
	}
	return m, nil
}

// seedMatchID keeps self-play output stable for a given seed.
func seedMatchID(seed string) string {
	return fmt.Sprintf("SELF-%08X", domain.StrToSeed(seed))
}
