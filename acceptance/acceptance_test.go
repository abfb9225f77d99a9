//go:build acceptance
// +build acceptance

package acceptance

import (
	"log/slog"
	"os"
	"testing"

	"github.com/networkteam/cinematest"
	"github.com/networkteam/cinematest/config"
)

// harness is created once by TestMain and only reached through the fixtures.
var harness *cinematest.Instance

// TestMain starts the harness (installing Playwright browsers if configured)
// before running tests and releases it afterwards.
//
// Without CINEMA_BASE_URL the built-in cinema application is used.
func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	envFile := os.Getenv("CINEMA_ENV_FILE")
	if envFile == "" {
		envFile = "../.env"
	}
	cfg, err := config.Load(os.Getenv("CINEMA_CONFIG"), envFile)
	if err != nil {
		slog.Error("Could not load configuration", slog.Any("err", err))
		return 1
	}

	inst, err := cinematest.New(cfg)
	if err != nil {
		slog.Error("Could not start harness", slog.Any("err", err))
		return 1
	}
	defer inst.Close()

	harness = inst

	return m.Run()
}
