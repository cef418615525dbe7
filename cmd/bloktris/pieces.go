package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bloktris/internal/domain"
)

var piecesShapes bool

func init() {
	piecesCmd := &cobra.Command{
		Use:   "pieces [id...]",
		Short: "List the piece catalog",
		RunE:  runPieces,
	}
	piecesCmd.Flags().BoolVar(&piecesShapes, "shapes", false, "Draw every orientation")
	rootCmd.AddCommand(piecesCmd)
}

func runPieces(cmd *cobra.Command, args []string) error {
	ids := domain.AllPieceIDs()
	if len(args) > 0 {
		ids = nil
		for _, a := range args {
			id := domain.PieceID(a)
			if !domain.IsPieceID(id) {
				return fmt.Errorf("unknown piece: %s", a)
			}
			ids = append(ids, id)
		}
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		orients := domain.Orientations(id)
		fmt.Fprintf(out, "%-3s size %d orientations %d\n", id, domain.PieceSize(id), len(orients))
		if !piecesShapes {
			continue
		}
		for i, s := range orients {
			fmt.Fprintf(out, "-- %d (%s)\n%s", i, s.Key(), renderShape(s))
		}
	}
	fmt.Fprintf(out, "total cells %d\n", domain.ScoreForRemaining(ids))
	return nil
}
