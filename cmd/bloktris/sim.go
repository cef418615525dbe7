package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bloktris/internal/app"
	"bloktris/internal/codec"
	"bloktris/internal/domain"
)

var (
	simSeed   string
	simBoard  bool
	simOutput string
)

func init() {
	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a seeded self-play match",
		Long: `Run a solo match where every seat, the human one included, is played
by the heuristic bot. The same seed always produces the same game.

Examples:
  bloktris sim --seed T1
  bloktris sim --seed T1 --board -o final.json`,
		RunE: runSim,
	}
	simCmd.Flags().StringVarP(&simSeed, "seed", "s", "bloktris", "RNG seed")
	simCmd.Flags().BoolVar(&simBoard, "board", false, "Print the final board")
	simCmd.Flags().StringVarP(&simOutput, "output", "o", "", "Write the final snapshot to a file")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	logger := log.With().Str("module", "sim").Logger()
	svc := app.NewService(nil, &logger, nil)

	m, err := svc.SelfPlay(cmd.Context(), simSeed, func(m *domain.Match, ev app.Event) {
		switch p := ev.Payload.(type) {
		case app.RollRecordedPayload:
			logger.Debug().Int("seat", int(p.Seat)).Int("value", p.Value).Bool("bot", p.Bot).Msg("roll")
		case app.OrderResolvedPayload:
			for _, r := range p.Rolls {
				logger.Info().Str("color", string(r.Color)).Int("value", r.Value).Msg("seat order")
			}
		case app.PiecePlacedPayload:
			logger.Debug().Int("seat", int(p.Seat)).Str("piece", string(p.PieceID)).
				Int("x", p.At.X).Int("y", p.At.Y).Msg("placed")
		case app.SeatPassedPayload:
			logger.Info().Int("seat", int(p.Seat)).Int("placed", len(m.History)).Msg("passed")
		}
	})
	if err != nil {
		return fmt.Errorf("self-play: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "match %s seed %q: %d placements\n", m.Meta.MatchID, m.Meta.RNGSeed, len(m.History))
	for _, p := range m.Players {
		fmt.Fprintf(out, "  %-6s score %2d pieces left %2d\n", p.Color, p.Score, len(p.Remaining))
	}
	fmt.Fprintf(out, "winners: %v\n", m.WinnerIDs)
	if simBoard {
		fmt.Fprint(out, renderBoard(m))
	}

	if simOutput != "" {
		data, err := codec.Encode(m)
		if err != nil {
			return err
		}
		if err := os.WriteFile(simOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		logger.Info().Str("path", simOutput).Msg("snapshot written")
	}
	return nil
}
