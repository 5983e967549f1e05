package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikequentel/confirmtweet/internal/ckan"
	"github.com/mikequentel/confirmtweet/internal/config"
	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/store"
	"github.com/mikequentel/confirmtweet/internal/tui"
	"github.com/mikequentel/confirmtweet/internal/widget"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the confirm-tweet dialog for a dataset",
	Example: `  confirmtweet run --base-url http://localhost:5000 --pkgid my-dataset
  confirmtweet run --pkgid my-dataset --disable-edit true --accessible`,
	Args: cobra.NoArgs,
	RunE: runDialog,
}

func init() {
	f := runCmd.Flags()
	f.String("base-url", "", "CKAN site root (default http://localhost:5000)")
	f.String("pkgid", "", "dataset id or name")
	f.String("disable-edit", "", "true to post the drafted tweet unchanged")
	f.String("template", "", "snippet name (default edit_tweet.html)")
	f.String("timeout", "", "per-request timeout, 0 disables (default 20s)")
	f.Bool("accessible", false, "line-oriented prompts instead of the full-screen modal")
	rootCmd.AddCommand(runCmd)
}

func runDialog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ckan.New(cfg.BaseURL, ckan.WithTimeout(cfg.Timeout), ckan.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	sinks := feedback.Multi{}
	if cfg.HistoryDB != "" {
		st, err := store.Open(ctx, cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, store.NewRecorder(st, cfg.Widget.PackageID, slog.Default()))
	}

	if cfg.Accessible {
		return runAccessible(ctx, cmd, cfg, client, sinks)
	}

	bridge := tui.NewBridge()
	w, err := newWidget(cfg, client, append(sinks, bridge), bridge)
	if err != nil {
		return err
	}
	if _, err := tui.Run(ctx, w, bridge); err != nil {
		return fmt.Errorf("dialog: %w", err)
	}
	return nil
}

func runAccessible(ctx context.Context, cmd *cobra.Command, cfg *config.Config, client *ckan.Client, sinks feedback.Multi) error {
	out := cmd.OutOrStdout()
	sinks = append(sinks, feedback.NewTerminal(out))
	w, err := newWidget(cfg, client, sinks, tui.LinePresenter{Out: out})
	if err != nil {
		return err
	}
	return tui.RunAccessible(ctx, w, cmd.InOrStdin(), out)
}

func newWidget(cfg *config.Config, client *ckan.Client, sink feedback.Sink, modal widget.Presenter) (*widget.Widget, error) {
	return widget.New(cfg.Widget, widget.Deps{
		Snippets: client,
		HTTP:     client,
		Feedback: sink,
		Modal:    modal,
	}, widget.WithTemplate(cfg.Template), widget.WithLogger(slog.Default()))
}
