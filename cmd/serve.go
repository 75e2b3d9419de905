package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/engine"
	"github.com/abhisek/sleuth/internal/server"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the case backend over HTTP",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{consoleLog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := engine.Open(ctx, cases.Default(), cfg.QueryEngine(), logger)
		if err != nil {
			return fmt.Errorf("open case engine: %w", err)
		}
		defer eng.Close()

		sc := cfg.HTTPServer()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			sc.Addr = addr
		}
		srv, err := server.New(eng, sc, logger)
		if err != nil {
			return err
		}
		logger.Info("serving cases", zap.String("addr", sc.Addr), zap.Int("cases", cases.Default().Len()))
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
