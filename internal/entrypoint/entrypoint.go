package entrypoint

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"

	"wikiscrap/internal/app"
	"wikiscrap/internal/cli"
	"wikiscrap/internal/logging"
	"wikiscrap/internal/tui"
)

// Interactive runs the form shown when the binary is started without arguments.
var Interactive = tui.Run

// Execute runs the program for os.Args style args and returns the exit code.
// SIGINT and SIGTERM cancel the running session.
func Execute(args []string) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ExecuteContext(ctx, args, cli.Env{})
}

func ExecuteContext(ctx context.Context, args []string, env cli.Env) (int, error) {
	if len(args) == 1 {
		return exitCode(runInteractive(ctx, env))
	}

	root := cli.NewRootCmd(env)
	root.SetArgs(args[1:])
	return exitCode(root.ExecuteContext(ctx))
}

func runInteractive(ctx context.Context, env cli.Env) error {
	res, err := Interactive()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	if !res.RunNow {
		return nil
	}

	newLogger := env.NewLogger
	if newLogger == nil {
		newLogger = logging.New
	}
	logger, err := newLogger(res.Config.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	run := env.Run
	if run == nil {
		run = app.Run
	}
	out := env.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = run(ctx, res.Config.Options(out, logger))
	return err
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Err
	}
	if errors.Is(err, app.ErrConfiguration) {
		return 2, err
	}
	return 1, err
}
