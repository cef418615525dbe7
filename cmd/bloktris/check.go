package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bloktris/internal/codec"
	"bloktris/internal/domain"
)

func init() {
	checkCmd := &cobra.Command{
		Use:   "check <save.json>",
		Short: "Validate and repair a saved match",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read save: %w", err)
	}
	res, err := codec.Decode(data)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return fmt.Errorf("save rejected: %s", res.Reason)
	}

	m := res.Match
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "match %s seed %q, %d placements, current %s\n",
		m.Meta.MatchID, m.Meta.RNGSeed, len(m.History), m.Players[m.Current].Color)
	for _, p := range m.Players {
		fmt.Fprintf(out, "  %-6s bot=%-5t active=%-5t score %2d\n", p.Color, p.IsBot, p.Active, p.Score)
	}
	if m.Ended() {
		fmt.Fprintf(out, "ended, winners %v\n", m.WinnerIDs)
	} else if domain.IsGameOver(m.Players, &m.Board) {
		fmt.Fprintln(out, "no seat can move")
	}
	return nil
}
