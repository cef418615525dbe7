package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bloktris/internal/app"
)

var (
	ticketSecret string
	ticketSeed   string
	ticketHumans int
	ticketTTL    time.Duration
)

func init() {
	ticketCmd := &cobra.Command{
		Use:   "ticket",
		Short: "Issue or inspect replay tickets",
	}
	ticketCmd.PersistentFlags().StringVar(&ticketSecret, "secret", os.Getenv("BLOKTRIS_TICKET_SECRET"), "Signing secret")

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a ticket for a seeded deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.NewTicketService(ticketSecret, ticketTTL).Issue(app.ReplayTicket{Seed: ticketSeed, Humans: ticketHumans})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issueCmd.Flags().StringVarP(&ticketSeed, "seed", "s", "", "RNG seed")
	issueCmd.Flags().IntVar(&ticketHumans, "humans", app.SoloHumans, "Human seats (1 or 4)")
	issueCmd.Flags().DurationVar(&ticketTTL, "ttl", 24*time.Hour, "Ticket lifetime")

	parseCmd := &cobra.Command{
		Use:   "parse <ticket>",
		Short: "Verify a ticket and print its deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.NewTicketService(ticketSecret, 0).Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed %q humans %d match %s\n", t.Seed, t.Humans, t.MatchID)
			return nil
		},
	}

	ticketCmd.AddCommand(issueCmd, parseCmd)
	rootCmd.AddCommand(ticketCmd)
}
