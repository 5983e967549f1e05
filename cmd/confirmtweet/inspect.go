package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikequentel/confirmtweet/internal/snippet"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show what the dialog would submit for a saved edit_tweet.html snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := ensureFile(path); err != nil {
			return fmt.Errorf("snippet file problem: %w", err)
		}
		s, err := snippet.ParseFile(path)
		if err != nil {
			return err
		}
		log.Printf("inspect: %s (%d fields)", path, len(s.Names()))
		return writeSnippet(cmd.OutOrStdout(), s)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func writeSnippet(w io.Writer, s *snippet.Snippet) error {
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "title:  %s\n", title)
	fmt.Fprintf(w, "action: %s\n", s.Action)

	fields := s.Fields()
	for _, name := range s.Names() {
		flag := ""
		if s.ReadOnly(name) {
			flag = " (readonly)"
		}
		fmt.Fprintf(w, "field:  %s=%q%s\n", name, strings.Join(fields[name], ","), flag)
	}

	if s.HasSuppress {
		label := s.SuppressLabel
		if label == "" {
			label = "(no label)"
		}
		_, err := fmt.Fprintf(w, "suppress: %s\n", label)
		return err
	}
	_, err := fmt.Fprintln(w, "suppress: none")
	return err
}
