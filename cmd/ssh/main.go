package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/tempest/internal/config"
	"github.com/tomz197/tempest/internal/draw"
	"github.com/tomz197/tempest/internal/kv"
	"github.com/tomz197/tempest/internal/leaderboard"
	lbserver "github.com/tomz197/tempest/internal/leaderboard/server"
	"github.com/tomz197/tempest/internal/loop"
	gamecfg "github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/loop/client"
	"github.com/tomz197/tempest/internal/loop/server"
	"github.com/tomz197/tempest/internal/persist"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultStateFile   = "ssh_state.db"
	defaultAPIAddr     = "127.0.0.1:8787"
	apiPath            = "/api/leaderboard"
)

// app holds everything shared by SSH sessions.
type app struct {
	hub      *server.Hub
	lbClient *leaderboard.Client
	state    kv.Store
	settings loop.Settings
	logger   *log.Logger
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "ssh",
		ReportTimestamp: true,
	})
	draw.ForceTrueColor()

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "workingDir", workingDir)

	state, err := kv.OpenFile(config.GetEnv("STATE_FILE", defaultStateFile))
	if err != nil {
		logger.Fatal("failed to open state file", "err", err)
	}
	defer state.Close()
	logger.Info("player state", "path", state.Path())

	// Without an external service the leaderboard API is served in-process.
	var api *http.Server
	lbURL := config.GetEnv("LEADERBOARD_URL", "")
	if lbURL == "" {
		addr := config.GetEnv("LEADERBOARD_ADDR", defaultAPIAddr)
		api, err = newAPIServer(addr, config.GetEnv("LEADERBOARD_DB", ""), logger)
		if err != nil {
			logger.Fatal("failed to open leaderboard db", "err", err)
		}
		lbURL = "http://" + addr + apiPath
	}

	a := &app{
		hub:      server.NewHub(logger.WithPrefix("hub")),
		lbClient: leaderboard.NewClient(lbURL, config.GetEnvDuration("LEADERBOARD_TIMEOUT", gamecfg.LeaderboardTimeout)),
		state:    state,
		settings: loop.ParseSettings(
			config.GetEnv("GAME_DIFFICULTY", ""),
			config.GetEnv("GAME_SPEED", ""),
			config.GetEnv("GAME_WEB", ""),
			config.GetEnvInt("GAME_LIVES", gamecfg.InitialLives),
		),
		logger: logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			a.gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting ssh server", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})
	if api != nil {
		g.Go(func() error {
			logger.Info("starting leaderboard api", "addr", api.Addr)
			if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("leaderboard api: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", "players", a.hub.Players())

		// Notify players and wait for them to disconnect
		a.hub.Shutdown(gamecfg.ShutdownGracePeriod)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		if api != nil {
			err = errors.Join(err, api.Shutdown(shutdownCtx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "err", err)
		_ = state.Close()
		os.Exit(1)
	}
}

// newAPIServer serves the leaderboard handler at apiPath, backed by dbPath
// or by memory when dbPath is empty.
func newAPIServer(addr, dbPath string, logger *log.Logger) (*http.Server, error) {
	var store kv.Store = kv.NewMemoryStore()
	if dbPath != "" {
		fs, err := kv.OpenFile(dbPath)
		if err != nil {
			return nil, err
		}
		store = fs
	}
	mux := http.NewServeMux()
	mux.Handle(apiPath, lbserver.New(store, logger.WithPrefix("leaderboard")))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

// gameMiddleware handles SSH sessions and runs the game client.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := a.logger.With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		ctx := sess.Context()
		prefs := persist.New(kv.Prefixed{Store: a.state, Prefix: "user:" + sess.User() + ":"}, logger)
		saved := prefs.Load(ctx)

		c := client.NewClient(bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Lobby:        a.hub,
			Bridge:       leaderboard.NewBridge(a.lbClient.ForPlayer(remoteHost(sess.RemoteAddr())), prefs, logger),
			Prefs:        prefs,
			Saved:        saved,
			Settings:     a.settings,
			Logger:       logger,
		})
		if err := c.Run(ctx); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// remoteHost is the player's address without the port, used to rate limit
// leaderboard submissions per player.
func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
