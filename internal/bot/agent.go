package bot

import (
	"bloktris/internal/domain"
)

// Agent represents an autonomous player bound to a seat.
type Agent struct {
	Seat     domain.Seat
	Name     string
	Strategy Brain
}

// NewAgent creates a heuristic agent for seat with its display identity.
func NewAgent(seat domain.Seat) (*Agent, error) {
	brain, err := NewBrain(BotLevelHeuristic)
	if err != nil {
		return nil, err
	}
	return &Agent{
		Seat:     seat,
		Name:     GetBotIdentity(int(seat)).DisplayName,
		Strategy: brain,
	}, nil
}

// Play asks the agent for its next command. A failed search falls back to a pass.
func (a *Agent) Play(m *domain.Match) (domain.Command, error) {
	decision, err := a.Strategy.CalculateMove(m, a.Seat)
	if err != nil {
		return domain.Pass{Seat: a.Seat}, err
	}
	return decision.Command(a.Seat), nil
}
