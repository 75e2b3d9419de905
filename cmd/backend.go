package cmd

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/engine"
	"github.com/abhisek/sleuth/internal/server"
	"github.com/abhisek/sleuth/internal/store"
)

// backend is the case backend a command talks to, with the raw client kept
// for the health handshake.
type backend struct {
	api.Backend
	client *api.Client
	stop   func()
}

// addLocalFlag registers --local on commands that can run without a server.
func addLocalFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("local", false, "Serve the cases in-process instead of using --api-url")
}

// openBackend builds the client stack: retries for transport failures and,
// when events is set, query recording. With --local the client points at an
// in-process server on a loopback port.
func openBackend(cmd *cobra.Command, events store.EventRepo, sessionID string) (*backend, error) {
	ac := cfg.APIClient()
	stop := func() {}
	if local, _ := cmd.Flags().GetBool("local"); local {
		url, stopLocal, err := startLocal(cmd.Context())
		if err != nil {
			return nil, err
		}
		ac.BaseURL, stop = url, stopLocal
	}
	if err := ac.Validate(); err != nil {
		stop()
		return nil, err
	}

	client := api.NewClient(ac, logger)
	var b api.Backend = api.WithRetry(client, ac.Retry)
	if events != nil {
		b = api.WithRecording(b, events, sessionID, logger)
	}
	return &backend{Backend: b, client: client, stop: stop}, nil
}

// startLocal opens the engine and serves it on 127.0.0.1 until the
// returned stop func is called.
func startLocal(ctx context.Context) (string, func(), error) {
	eng, err := engine.Open(ctx, cases.Default(), cfg.QueryEngine(), logger)
	if err != nil {
		return "", nil, fmt.Errorf("open case engine: %w", err)
	}
	sc := cfg.HTTPServer()
	sc.AllowedOrigins = nil
	srv, err := server.New(eng, sc, logger)
	if err != nil {
		eng.Close()
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		eng.Close()
		return "", nil, fmt.Errorf("listen: %w", err)
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(serveCtx, ln); err != nil {
			logger.Error("local server stopped", zap.Error(err))
		}
	}()

	stop := func() {
		cancel()
		<-done
		eng.Close()
	}
	return "http://" + ln.Addr().String(), stop, nil
}
