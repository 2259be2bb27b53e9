package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/tempest/internal/config"
	"github.com/tomz197/tempest/internal/draw"
	"github.com/tomz197/tempest/internal/kv"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop"
	gamecfg "github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/loop/client"
	"github.com/tomz197/tempest/internal/persist"
)

const stateFileName = ".tempest_state"

func main() {
	logger, closeLog := newLogger(config.GetEnv("LOG_FILE", ""))
	defer closeLog()

	store := openState(config.GetEnv("STATE_FILE", defaultStatePath()), logger)
	prefs := persist.New(store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saved := prefs.Load(ctx)

	var lbClient *leaderboard.Client
	if url := config.GetEnv("LEADERBOARD_URL", ""); url != "" {
		lbClient = leaderboard.NewClient(url, config.GetEnvDuration("LEADERBOARD_TIMEOUT", gamecfg.LeaderboardTimeout))
	}
	bridge := leaderboard.NewBridge(lbClient, prefs, logger)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	draw.EnterAltScreen(os.Stdout)
	defer draw.ExitAltScreen(os.Stdout)

	c := client.NewClient(bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", "player"),
		Bridge:   bridge,
		Prefs:    prefs,
		Saved:    saved,
		Settings: loop.ParseSettings(
			config.GetEnv("GAME_DIFFICULTY", ""),
			config.GetEnv("GAME_SPEED", ""),
			config.GetEnv("GAME_WEB", ""),
			config.GetEnvInt("GAME_LIVES", gamecfg.InitialLives),
		),
		Logger: logger,
	})
	if err := c.Run(ctx); err != nil {
		logger.Error("game error", "err", err)
	}
}

// newLogger writes to path, or discards everything when path is empty: the
// terminal belongs to the game while it runs.
func newLogger(path string) (*log.Logger, func()) {
	if path == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{
		Prefix:          "game",
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
	return logger, func() { _ = f.Close() }
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return stateFileName
	}
	return filepath.Join(home, stateFileName)
}

// openState falls back to memory so the game still runs on a read-only home.
func openState(path string, logger *log.Logger) kv.Store {
	fs, err := kv.OpenFile(path)
	if err != nil {
		logger.Warn("local state unavailable, using memory", "path", path, "err", err)
		return kv.NewMemoryStore()
	}
	return fs
}
