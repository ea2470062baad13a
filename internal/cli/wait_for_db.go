package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/store/sqlite"
)

// WaitForDBOptions holds flags for the wait-for-db command.
type WaitForDBOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// NewWaitForDBCommand creates the wait-for-db command.
func NewWaitForDBCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WaitForDBOptions{}

	cmd := &cobra.Command{
		Use:          "wait-for-db",
		Short:        "Block until the server has initialized the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWaitForDB(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "give up after this long")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "delay between attempts")

	return cmd
}

func runWaitForDB(rootOpts *RootOptions, opts *WaitForDBOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	log := newLogger(rootOpts, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	path := cfg.Data.DatabasePath()
	attempts, err := waitForDB(ctx, path, opts.Interval, func(attempt int, err error) {
		log.Debug("database unavailable", "path", path, "attempt", attempt, "error", err)
	})
	if err != nil {
		return fmt.Errorf("database %s unavailable after %d attempts: %w", path, attempts, err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "database available after %d attempt(s)\n", attempts)
	return err
}

// waitForDB opens the database at path read-only and pings it until it
// succeeds or ctx ends. It never creates the file. It returns the number of attempts made and, on failure, the last error.
func waitForDB(ctx context.Context, path string, interval time.Duration, onFailure func(int, error)) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := pingDB(ctx, path)
		if err == nil {
			return attempt, nil
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}

		select {
		case <-ctx.Done():
			return attempt, err
		case <-ticker.C:
		}
	}
}

func pingDB(ctx context.Context, path string) error {
	st, err := sqlite.OpenReadOnly(ctx, path, logger.Discard())
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Ping(ctx)
}
