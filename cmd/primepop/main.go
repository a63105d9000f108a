// Command primepop prints every prime up to and including the first prime
// >= limit, each followed by the number of set bits in prime-1.
//
//	primepop <limit>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ib-77/primepop/pkg/limits"
	"github.com/ib-77/primepop/pkg/report"
	"github.com/ib-77/primepop/pkg/rop"
	"github.com/ib-77/primepop/pkg/rop/solo"
	"github.com/ib-77/primepop/pkg/sieve"
)

const usage = "usage: primepop <limit>"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	log := newLogger(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(log)
	// a nil slice makes cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	var err error
	if isCompletionRequest(args) {
		// cobra would hand these to its hidden completion command
		err = enumerate(ctx, log, stdout, args)
	} else {
		err = cmd.ExecuteContext(ctx)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, limits.ErrMissingArgument):
		fmt.Fprintln(stdout, usage)
	case rop.IsCancellationError(err):
		log.WithError(err).Warn("interrupted")
	default:
		log.WithError(err).Error("primepop failed")
	}
	return 1
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}

func newRootCommand(log logrus.FieldLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "primepop <limit>",
		Short: "Print primes up to a limit with the popcount of prime-1",
		// the limit is the only input; "-5" is a limit, not a flag
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return limits.ErrMissingArgument
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return enumerate(cmd.Context(), log, cmd.OutOrStdout(), args)
		},
	}
}

func isCompletionRequest(args []string) bool {
	return len(args) > 0 &&
		(args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd)
}

func enumerate(ctx context.Context, log logrus.FieldLogger, w io.Writer, args []string) error {
	_, err := report.Run(ctx, w,
		sieve.New(sieve.WithLogger(log)), limitFromArgs(ctx, log, args),
		report.WithLogger(log))
	return err
}

// limitFromArgs parses the limit, falling back to 0 when it is not a valid
// unsigned 64-bit decimal.
func limitFromArgs(ctx context.Context, log logrus.FieldLogger, args []string) uint64 {
	fallback := func(_ context.Context, err error) uint64 {
		log.WithError(err).Warn("invalid limit, using 0")
		return 0
	}

	return solo.Finally(ctx,
		solo.Try(ctx, solo.Succeed(args), func(_ context.Context, args []string) (uint64, error) {
			return limits.FromArgs(args)
		}),
		func(_ context.Context, limit uint64) uint64 { return limit },
		fallback,
		fallback)
}
