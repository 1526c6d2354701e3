package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/host"
	"github.com/papercomputeco/chatbridge/pkg/host/memhost"
	"github.com/papercomputeco/chatbridge/pkg/logger"
)

const hostLongDesc string = `chathost serves every chat procedure from memory.

Conversations are numbered from zero and are lost when the process exits.
Completions echo the last user message. Point chatctl at it with
--url http://localhost:6061.`

func main() {
	var (
		listenAddr string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "chathost",
		Short:         "In-memory chat host for local development",
		Long:          hostLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.NewLogger(debug)
			defer log.Sync()

			router := host.NewRouter()
			memhost.NewStore(nil).Register(router)

			srv := host.New(host.Config{ListenAddr: listenAddr}, router, log)

			go func() {
				<-cmd.Context().Done()
				if err := srv.Shutdown(); err != nil {
					log.Error("shutdown failed", zap.Error(err))
				}
			}()

			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":6061", "Address to listen on")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
