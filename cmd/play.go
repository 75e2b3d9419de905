package cmd

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/app"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/hints"
	"github.com/abhisek/sleuth/internal/llm"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play [case-id]",
	Short: "Open the case files, optionally at a given case",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := ""
		if len(args) == 1 {
			start = args[0]
		}
		return runPlay(cmd, start)
	},
}

func init() {
	addLocalFlag(playCmd)
	addLocalFlag(rootCmd)
}

// runPlay opens the store, builds the backend and hint service, and
// launches the TUI.
func runPlay(cmd *cobra.Command, startCaseID string) error {
	ctx := cmd.Context()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	events := st.EventRepo()

	sessionID := uuid.NewString()
	logger := logger.With(zap.String("session_id", sessionID))

	b, err := openBackend(cmd, events, sessionID)
	if err != nil {
		return err
	}
	defer b.stop()

	sess := session.New(b, logger, session.WithReadiness(func(ctx context.Context) error {
		_, err := b.client.Handshake(ctx)
		return err
	}))

	// Rules answer when no model is configured.
	provider, err := llm.NewProvider(ctx, cfg.LLM(), events, logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		provider = nil
	case err != nil:
		warn("Hint model unavailable (%v); using built-in hints.", err)
		provider = nil
	}

	reg := cases.Default()
	env := &screens.Env{
		Registry: reg,
		Session:  sess,
		Tracker:  progress.NewTracker(reg, st.CompletionRepo()),
		Hints:    hints.New(provider, events, sessionID, cfg.HintService(), logger),
		Events:   events,
		Logger:   logger,
	}
	logger.Info("game started", zap.String("start_case", startCaseID), zap.Bool("model_hints", env.Hints.ModelBacked()))
	return app.Run(ctx, env, startCaseID)
}
