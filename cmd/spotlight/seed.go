package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/spotlight/internal/auth"
	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Print the demo data set",
	Long:  "Prints the signals the TUI starts with, newest first, with their creation time relative to now.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		now := time.Now()
		sigs, err := store.SeedSignals(now)
		if err != nil {
			return err
		}
		return printSeed(cmd.OutOrStdout(), sigs, now)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func printSeed(w io.Writer, sigs []signal.Signal, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tTITLE\tFROM\tTO\tCREATED")
	for _, s := range sigs {
		to := "-"
		if s.ReceiverID != "" {
			to = auth.Name(s.ReceiverID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Type, s.Status, s.Title,
			auth.Name(s.InitiatorID), to,
			humanize.RelTime(s.Created, now, "ago", "from now"))
		if len(s.Options) > 0 {
			fmt.Fprintf(tw, "\t\t\t  options: %s\n", strings.Join(s.Options, ", "))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d signals\n", len(sigs))
	return err
}
