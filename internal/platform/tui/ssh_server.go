package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-islands/internal/bot"
	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/match"
	"github.com/vovakirdan/tui-islands/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2323").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.islands/host_key.
	HostKeyPath string

	// DBPath is the path to the match archive database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// MatchTTL is how long an untouched match may linger before the
	// directory sweeps it.
	MatchTTL time.Duration

	// SweepPeriod is how often the directory sweeper runs.
	SweepPeriod time.Duration

	// BotName is the display name of the computer opponent.
	BotName string

	// BotDelay is the pause the bot takes before each shot.
	BotDelay time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":2323",
		DBPath:      "~/.islands/matches.db",
		IdleTimeout: 30 * time.Minute,
		MatchTTL:    30 * time.Minute,
		SweepPeriod: time.Minute,
		BotName:     "Castaway",
		BotDelay:    400 * time.Millisecond,
	}
}

// SSHServer wraps a Wish SSH server hosting island duels. Every
// connection gets its own Bubble Tea program; the match directory is
// what the connections share.
type SSHServer struct {
	config    SSHServerConfig
	server    *ssh.Server
	store     *storage.Store
	directory *match.Directory
	logger    *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "islands-ssh",
	})

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open match database", "error", err)
		// Continue without storage
	}

	directory := match.NewDirectory(match.DirectoryConfig{
		IdleTTL:     cfg.MatchTTL,
		SweepPeriod: cfg.SweepPeriod,
	}, logger)
	if store != nil {
		directory.SetArchiver(store)
	}
	directory.Start()

	srv := &SSHServer{
		config:    cfg,
		store:     store,
		directory: directory,
		logger:    logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".islands", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Create Wish server options
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	// Create the server
	server, err := wish.NewServer(opts...)
	if err != nil {
		directory.Stop()
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s, sshSession.User(), pty.Window.Width, pty.Window.Height)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server, every live match included.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.directory.Stop()
	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Directory exposes the shared match directory.
func (s *SSHServer) Directory() *match.Directory {
	return s.directory
}

// sessionScreen names which child model owns the connection right now.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenLobby
	screenMatch
	screenHistory
)

// SessionModel manages one SSH connection's whole flow:
// menu -> lobby or bot duel -> match -> back to menu.
type SessionModel struct {
	server   *SSHServer
	username string
	width    int
	height   int

	screen  sessionScreen
	menu    MenuModel
	lobby   LobbyModel
	duel    MatchModel
	history HistoryModel

	// Live match resources, torn down when the player leaves it.
	session   *match.Session
	handle    *match.ChannelHandle
	seat      game.PlayerID
	botCancel context.CancelFunc

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(server *SSHServer, username string, width, height int) SessionModel {
	return SessionModel{
		server:   server,
		username: username,
		width:    width,
		height:   height,
		screen:   screenMenu,
		menu:     NewMenuModel(ServerMenuItems(), width, height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenLobby:
		return m.updateLobby(msg)
	case screenMatch:
		return m.updateMatch(msg)
	case screenHistory:
		return m.updateHistory(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	// Check if user quit
	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Check if a mode was selected
	if selected := m.menu.Selected(); selected != nil {
		switch selected.ID {
		case MenuItemBot:
			return m.startBotDuel()

		case MenuItemHost:
			m.lobby = NewLobbyModel(m.server.directory, m.username, true, m.width, m.height)
			m.screen = screenLobby
			return m, m.lobby.Init()

		case MenuItemJoin:
			m.lobby = NewLobbyModel(m.server.directory, m.username, false, m.width, m.height)
			m.screen = screenLobby
			return m, m.lobby.Init()

		case MenuItemHistory:
			m.history = NewHistoryModel(m.server.store, m.username, m.width, m.height)
			m.screen = screenHistory
			return m, m.history.Init()
		}
	}

	return m, cmd
}

// startBotDuel creates a session, seats a bot opposite the player, and
// jumps straight to the placement screen.
func (m SessionModel) startBotDuel() (tea.Model, tea.Cmd) {
	session, err := m.server.directory.Create(m.username)
	if err != nil {
		m.server.logger.Error("cannot create bot duel", "user", m.username, "error", err)
		m.menu = NewMenuModel(ServerMenuItems(), m.width, m.height)
		return m, m.menu.Init()
	}

	handle := match.NewChannelHandle("tui-"+m.username, 64)
	ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
	defer cancel()
	if err := session.Subscribe(ctx, handle); err != nil {
		m.server.directory.Remove(session.Code())
		m.server.logger.Error("cannot subscribe to bot duel", "user", m.username, "error", err)
		m.menu = NewMenuModel(ServerMenuItems(), m.width, m.height)
		return m, m.menu.Init()
	}

	botCtx, botCancel := context.WithCancel(context.Background())
	b := bot.New(bot.Config{
		Seat:  game.Player2,
		Seed:  time.Now().UnixNano(),
		Delay: m.server.config.BotDelay,
	}, m.server.logger)
	go func() {
		if err := b.Run(botCtx, session, m.server.config.BotName); err != nil {
			m.server.logger.Warn("bot stopped", "code", session.Code(), "error", err)
		}
	}()

	m.session = session
	m.handle = handle
	m.seat = game.Player1
	m.botCancel = botCancel
	m.duel = NewMatchModel(session, handle, game.Player1, m.username, m.width, m.height)
	m.screen = screenMatch
	return m, m.duel.Init()
}

// updateLobby handles updates while hosting or joining.
func (m SessionModel) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	newLobby, cmd := m.lobby.Update(msg)
	if lobbyModel, ok := newLobby.(LobbyModel); ok {
		m.lobby = lobbyModel
	}

	if m.lobby.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.lobby.WantsBack() {
		m.screen = screenMenu
		m.menu = NewMenuModel(ServerMenuItems(), m.width, m.height)
		return m, m.menu.Init()
	}

	if m.lobby.State() == LobbyStateDone {
		m.session = m.lobby.Session()
		m.handle = m.lobby.Handle()
		m.seat = m.lobby.Seat()
		m.duel = NewMatchModel(m.session, m.handle, m.seat, m.username, m.width, m.height)
		m.screen = screenMatch
		return m, m.duel.Init()
	}

	return m, cmd
}

// updateMatch handles updates during a match.
func (m SessionModel) updateMatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	newDuel, cmd := m.duel.Update(msg)
	if duelModel, ok := newDuel.(MatchModel); ok {
		m.duel = duelModel
	}

	if m.duel.IsQuitting() {
		m.teardownMatch()
		m.quitting = true
		return m, tea.Quit
	}

	if m.duel.BackToMenu() {
		m.teardownMatch()
		m.screen = screenMenu
		m.menu = NewMenuModel(ServerMenuItems(), m.width, m.height)
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateHistory handles updates on the archive screen.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newHistory, cmd := m.history.Update(msg)
	if historyModel, ok := newHistory.(HistoryModel); ok {
		m.history = historyModel
	}

	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.history.IsGoingBack() {
		m.screen = screenMenu
		m.menu = NewMenuModel(ServerMenuItems(), m.width, m.height)
		return m, m.menu.Init()
	}

	return m, cmd
}

// teardownMatch releases the live match. Stopping the session tells the
// rival the duel is over; a finished session stops idempotently.
func (m *SessionModel) teardownMatch() {
	if m.botCancel != nil {
		m.botCancel()
		m.botCancel = nil
	}
	if m.session != nil {
		m.server.directory.Remove(m.session.Code())
		m.session = nil
	}
	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenLobby:
		return m.lobby.View()
	case screenMatch:
		return m.duel.View()
	case screenHistory:
		return m.history.View()
	default:
		return m.menu.View()
	}
}
