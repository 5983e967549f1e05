package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled flash messages, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := historyDB(cmd)
		if err != nil {
			return err
		}
		if err := ensureFile(path); err != nil {
			return fmt.Errorf("history db problem: %w", err)
		}
		st, err := store.Open(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), entries)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max entries, 0 for all")
	rootCmd.AddCommand(historyCmd)
}

func writeHistory(w io.Writer, entries []store.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no flashes recorded")
		return err
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s  %-13s  %-20s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Message.Category, e.PackageID,
			feedback.PlainText(e.Message.Text))
		if err != nil {
			return err
		}
	}
	return nil
}
