// Package cli implements inkctl, the administration tool for an Inkpost data directory.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkpost/inkpost-server/internal/config"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/store/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataPath string
	EnvFile  string
	Verbose  bool
}

// NewRootCommand creates the root command for the inkctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inkctl",
		Short: "Inkpost administration",
		Long:  "Administrative commands that work directly on an Inkpost server's data directory.",

		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data-path", "", "data directory (default: $DATA_PATH or ~/Inkpost/data)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to .env file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewWaitForDBCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// loadConfig resolves the server configuration the same way cmd/api does,
// with the CLI's global flags standing in for the server's.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	args := []string{"-env-file", opts.EnvFile}
	if opts.DataPath != "" {
		args = append(args, "-data-path", opts.DataPath)
	}
	return config.Load(flag.NewFlagSet("inkctl", flag.ContinueOnError), args)
}

// newLogger writes to w, at debug level when verbose.
func newLogger(opts *RootOptions, w io.Writer) *logger.Logger {
	level := logger.ParseLevel("warn")
	if opts.Verbose {
		level = logger.ParseLevel("debug")
	}
	return logger.New(logger.Config{Level: level, Format: "pretty", Writer: w})
}

// openStore loads the configuration and opens its database.
func openStore(opts *RootOptions, cmd *cobra.Command) (*config.Config, *sqlite.Store, *logger.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	log := newLogger(opts, cmd.ErrOrStderr())

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := sqlite.Open(cfg.Data.DatabasePath(), log.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, st, log, nil
}

// describeError appends per-field validation details to a domain error's message.
func describeError(err error) error {
	var derr *domainerrors.Error
	if !errors.As(err, &derr) {
		return err
	}
	details, ok := derr.Details.(map[string]string)
	if !ok || len(details) == 0 {
		return err
	}

	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + " " + details[field]
	}
	return fmt.Errorf("%s (%s)", derr.Message, strings.Join(parts, "; "))
}
