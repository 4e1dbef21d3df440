package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/match"
)

// LobbyState represents the current state of the matchmaking flow.
type LobbyState int

const (
	LobbyStateCreating  LobbyState = iota // Host: creating the session
	LobbyStateWaiting                     // Host: waiting for a rival to join
	LobbyStateEnterCode                   // Join: entering the code
	LobbyStateJoining                     // Join: join request in flight
	LobbyStateDone                        // Session ready, both players seated
)

// hostReadyMsg reports the created and subscribed host session.
type hostReadyMsg struct {
	session *match.Session
	handle  *match.ChannelHandle
	err     error
}

// joinResultMsg reports the outcome of a join attempt.
type joinResultMsg struct {
	session *match.Session
	handle  *match.ChannelHandle
	err     error
}

// lobbyEventMsg wraps a session event received while waiting.
type lobbyEventMsg struct {
	evt match.Event
}

// LobbyModel handles the host/join matchmaking flow against a directory.
// When it reaches LobbyStateDone both seats are taken and Session,
// Handle and Seat describe the match to play.
type LobbyModel struct {
	directory *match.Directory
	name      string
	host      bool
	state     LobbyState

	session *match.Session
	handle  *match.ChannelHandle
	seat    game.PlayerID

	code         string // Host: code to share
	codeInput    string // Join: typed code
	joinError    string
	opponentName string

	width     int
	height    int
	ticks     int
	keyMapper *KeyMapper
	quitting  bool
	back      bool
}

// NewLobbyModel creates a lobby for hosting (host=true) or joining.
func NewLobbyModel(directory *match.Directory, name string, host bool, width, height int) LobbyModel {
	state := LobbyStateEnterCode
	seat := game.Player2
	if host {
		state = LobbyStateCreating
		seat = game.Player1
	}

	return LobbyModel{
		directory: directory,
		name:      name,
		host:      host,
		state:     state,
		seat:      seat,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init starts session creation for hosts.
func (m LobbyModel) Init() tea.Cmd {
	if m.host {
		return tea.Batch(hostCmd(m.directory, m.name), tickCmd(2))
	}
	return nil
}

// hostCmd creates a session and subscribes to it before any rival can
// join, so the lobby never misses the join event.
func hostCmd(directory *match.Directory, name string) tea.Cmd {
	return func() tea.Msg {
		session, err := directory.Create(name)
		if err != nil {
			return hostReadyMsg{err: err}
		}

		handle := match.NewChannelHandle("tui-"+name, 64)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Subscribe(ctx, handle); err != nil {
			directory.Remove(session.Code())
			return hostReadyMsg{err: err}
		}

		return hostReadyMsg{session: session, handle: handle}
	}
}

// joinCmd joins a hosted session by code and subscribes to it.
func joinCmd(directory *match.Directory, code, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		session, err := directory.Join(ctx, code, name)
		if err != nil {
			return joinResultMsg{err: err}
		}

		handle := match.NewChannelHandle("tui-"+name, 64)
		if err := session.Subscribe(ctx, handle); err != nil {
			return joinResultMsg{err: err}
		}

		return joinResultMsg{session: session, handle: handle}
	}
}

// waitForLobbyEvent waits for the next session event.
func (m LobbyModel) waitForLobbyEvent() tea.Cmd {
	events := m.handle.Events()
	done := m.session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return lobbyEventMsg{evt}
		case <-done:
			return lobbyEventMsg{evt: match.SessionClosedEvent{}}
		}
	}
}

// Update handles messages.
func (m LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.ticks++
		if m.state == LobbyStateCreating || m.state == LobbyStateWaiting || m.state == LobbyStateJoining {
			return m, tickCmd(2)
		}
		return m, nil

	case hostReadyMsg:
		if msg.err != nil {
			m.joinError = msg.err.Error()
			m.back = true
			return m, nil
		}
		m.session = msg.session
		m.handle = msg.handle
		m.code = msg.session.Code()
		m.state = LobbyStateWaiting
		return m, m.waitForLobbyEvent()

	case joinResultMsg:
		if msg.err != nil {
			m.joinError = friendlyJoinError(msg.err)
			m.state = LobbyStateEnterCode
			return m, nil
		}
		m.session = msg.session
		m.handle = msg.handle
		m.state = LobbyStateDone
		return m, tea.Quit

	case lobbyEventMsg:
		return m.handleLobbyEvent(msg.evt)
	}

	return m, nil
}

func (m LobbyModel) handleLobbyEvent(evt match.Event) (tea.Model, tea.Cmd) {
	switch evt := evt.(type) {
	case match.PlayerJoinedEvent:
		m.opponentName = evt.Name
		m.state = LobbyStateDone
		return m, tea.Quit
	case match.SessionClosedEvent:
		m.joinError = "the match was closed"
		m.back = true
		return m, tea.Quit
	}
	// Ignore anything else while waiting
	return m, m.waitForLobbyEvent()
}

func (m LobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.abandon()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case LobbyStateWaiting:
		switch key {
		case "esc", "b":
			m.abandon()
			m.back = true
			return m, tea.Quit
		case "q":
			m.abandon()
			m.quitting = true
			return m, tea.Quit
		}

	case LobbyStateEnterCode:
		// Join codes may contain any letter, so only esc leaves here.
		switch key {
		case "esc":
			m.back = true
			return m, tea.Quit
		case "enter":
			if m.codeInput != "" {
				m.state = LobbyStateJoining
				m.joinError = ""
				return m, tea.Batch(joinCmd(m.directory, m.codeInput, m.name), tickCmd(2))
			}
		case "backspace":
			if m.codeInput != "" {
				m.codeInput = m.codeInput[:len(m.codeInput)-1]
			}
		default:
			// Accept alphanumeric input for code
			if len(key) == 1 && len(m.codeInput) < 6 {
				c := strings.ToUpper(key)
				if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
					m.codeInput += c
				}
			}
		}
	}

	return m, nil
}

// abandon removes a hosted session that never got a second player.
func (m *LobbyModel) abandon() {
	if m.host && m.session != nil && m.state != LobbyStateDone {
		m.directory.Remove(m.session.Code())
		if m.handle != nil {
			m.handle.Close()
		}
		m.session = nil
		m.handle = nil
	}
}

// View renders the current state.
func (m LobbyModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case LobbyStateCreating:
		return m.viewCreating()
	case LobbyStateWaiting:
		return m.viewWaiting()
	case LobbyStateEnterCode:
		return m.viewEnterCode()
	case LobbyStateJoining:
		return m.viewJoining()
	}
	return ""
}

func (m LobbyModel) viewCreating() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("HOST A MATCH", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Opening your waters"+waitingDots(m.ticks), m.width))
	return b.String()
}

func (m LobbyModel) viewWaiting() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.OverlayTitle.Render(centerText("HOSTING A MATCH", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Share this code with your rival:", m.width))
	b.WriteString("\n\n")

	codeBox := theme.CodeBox.Render(m.code)
	for _, line := range strings.Split(codeBox, "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Waiting for a player to join"+waitingDots(m.ticks), m.width))
	b.WriteString("\n\n")
	b.WriteString(theme.HUDControls.Render(centerText("Esc: Cancel  |  Q: Quit", m.width)))

	return b.String()
}

func (m LobbyModel) viewEnterCode() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.OverlayTitle.Render(centerText("JOIN A MATCH", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter the join code:", m.width))
	b.WriteString("\n\n")

	// Display code input with cursor
	codeDisplay := m.codeInput
	if len(codeDisplay) < 6 {
		codeDisplay += "_"
		codeDisplay += strings.Repeat(" ", 5-len(m.codeInput))
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
	b.WriteString("\n")

	if m.joinError != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(centerText(m.joinError, m.width)))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HUDControls.Render(centerText("Enter: Connect  |  Esc: Back", m.width)))

	return b.String()
}

func (m LobbyModel) viewJoining() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("CONNECTING", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Joining match %s", m.codeInput), m.width))
	b.WriteString(waitingDots(m.ticks))
	return b.String()
}

// State returns the current lobby state.
func (m LobbyModel) State() LobbyState {
	return m.state
}

// Session returns the ready session once State is LobbyStateDone.
func (m LobbyModel) Session() *match.Session {
	return m.session
}

// Handle returns the event subscription for the ready session.
func (m LobbyModel) Handle() *match.ChannelHandle {
	return m.handle
}

// Seat returns which seat this player takes.
func (m LobbyModel) Seat() game.PlayerID {
	return m.seat
}

// WantsBack returns true if user backed out of the lobby.
func (m LobbyModel) WantsBack() bool {
	return m.back
}

// IsQuitting returns true if user wants to quit entirely.
func (m LobbyModel) IsQuitting() bool {
	return m.quitting
}

// friendlyJoinError maps join failures to a short message.
func friendlyJoinError(err error) string {
	var ruleErr *game.RuleViolationError
	switch {
	case errors.Is(err, match.ErrUnknownCode):
		return "no match with that code"
	case errors.Is(err, match.ErrSessionClosed):
		return "that match already ended"
	case errors.As(err, &ruleErr):
		return "that match is already full"
	case errors.Is(err, context.DeadlineExceeded):
		return "the match did not answer in time"
	default:
		return err.Error()
	}
}

// waitingDots animates a trailing ellipsis.
func waitingDots(ticks int) string {
	return strings.Repeat(".", ticks%4)
}
