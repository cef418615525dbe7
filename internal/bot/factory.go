package bot

import (
	"fmt"
)

// BotLevel selects a bot strategy.
type BotLevel int

const (
	BotLevelHeuristic BotLevel = iota
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelHeuristic:
		return &HeuristicBot{Weights: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
