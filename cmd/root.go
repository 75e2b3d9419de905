package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/config"
	"github.com/abhisek/sleuth/internal/logging"
	"github.com/abhisek/sleuth/internal/store"
)

// consoleLog marks commands that also log to stderr.
const consoleLog = "console-log"

var (
	cfg      config.Config
	logger   = zap.NewNop()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "sleuth",
	Short: "SQL detective game for the terminal",
	Long: `Sleuth is a detective game played in SQL. Each case hands you a brief
and a few tables of evidence; query them until the answer falls out.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"api-url":   "api.base_url",
	"db":        "store.path",
	"log-level": "log.level",
	"log-file":  "log.file",
	"hints":     "hints.provider",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a sleuth.yaml config file")
	pf.String("api-url", "", "Base URL of the case backend (overrides SLEUTH_API_BASE_URL)")
	pf.String("db", "", "Path to the progress database (overrides SLEUTH_DB)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-file", "", "Log file path; empty disables file logging")
	pf.String("hints", "", "Hint provider: auto, anthropic, openai, gemini, openrouter or mock")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// overrides collects the persistent flags the user actually set.
func overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			out[key] = f.Value.String()
		}
	}
	return out
}

// setup loads the configuration and starts logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path, overrides(cmd))
	if err != nil {
		return err
	}
	cfg = loaded

	lc := cfg.Logging()
	if cmd.Annotations[consoleLog] == "true" {
		lc.Console = true
	}
	l, closer, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("start logging: %w", err)
	}
	logger, closeLog = l, closer
	logger.Debug("config loaded", zap.String("command", cmd.Name()), zap.String("api", cfg.API.BaseURL))
	return nil
}

// resolveDBPath returns store.path when set, else the default XDG path
// (SLEUTH_DB wins over XDG there).
func resolveDBPath() (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// openStore opens the progress database.
func openStore() (*store.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// warn prints a one-line notice for the player on stderr.
func warn(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
