package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gilacc/finitegen/internal/headcmd"
	"go.llib.dev/frameless/pkg/cli"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := headcmd.Defaults()
	if err := headcmd.LoadConfig(&cmd); err != nil {
		logger.Error(ctx, "failed to load the configuration", logging.ErrField(err))
		cancel()
		os.Exit(cli.ExitCodeBadRequest)
	}

	uniq := cmd
	uniq.Unique = true

	var mux cli.Mux
	mux.Handle("head", cmd)
	mux.Handle("uniq", uniq)
	cli.Main(ctx, &mux)
}
