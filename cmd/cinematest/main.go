// Command cinematest runs the pieces of the cinema acceptance harness on
// their own: the built-in cinema application, session and token capture and
// the database reset.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/networkteam/cinematest/config"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "cinematest",
		Short:        "Acceptance harness for the cinema booking application",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file, ignored if missing")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "also write JSON logs to this file")

	cmd.AddCommand(
		serveCmd(flags),
		captureCmd(flags),
		tokenCmd(flags),
		resetCmd(flags),
	)

	return cmd
}

// setup loads the configuration and installs the default logger. The returned
// closer flushes the log file, if any.
func (f *globalFlags) setup(stderr io.Writer) (config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(f.configPath, f.envFile)
	if err != nil {
		return cfg, nil, nil, err
	}

	logger, closeLog, err := newLogger(stderr, f.logLevel, f.logFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, closeLog, nil
}

// errNoBaseURL is returned by commands whose result is only useful against a
// running application. Without a base URL the harness would log in to a
// built-in application that is gone once the command exits.
var errNoBaseURL = errors.New("no application to log in to: set --base-url, CINEMA_BASE_URL or baseURL in the config file")

// targetApplication applies the --base-url flag and fails if no base URL is
// left. The API base URL follows the flag unless configured on its own.
func targetApplication(cfg *config.Config, baseURL string) error {
	if baseURL != "" {
		if cfg.APIBaseURL == "" || cfg.APIBaseURL == cfg.BaseURL {
			cfg.APIBaseURL = baseURL
		}
		cfg.BaseURL = baseURL
	}
	if cfg.BaseURL == "" {
		return errNoBaseURL
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// newLogger logs text to stderr and, with a log file, JSON at debug level to
// that file.
func newLogger(stderr io.Writer, levelName, logFile string) (*slog.Logger, func(), error) {
	level, err := parseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(textHandler), func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := slog.New(
		slogmulti.Fanout(
			textHandler,
			slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
		),
	)
	return logger, func() { _ = f.Close() }, nil
}
